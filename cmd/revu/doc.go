// Revu is a CLI for reviewing code changes with AI backends.
//
// It reviews unstaged, staged, commit, whole-file, and snippet content,
// composing prompts from layered templates and failing over between
// configured backends until one answers.
//
// Usage:
//
//	revu review diff                  # review working tree changes
//	revu review staged                # review staged changes
//	revu review commit <sha>          # review a specific commit
//	revu review files main.go util.go # review whole files
//	revu review code < snippet.go     # review code from stdin
//
// See https://github.com/revu-ai/revu for full documentation.
package main
