// Package gitctx gathers diffs and commit data from a local git
// repository by shelling out to the git binary.
package gitctx
