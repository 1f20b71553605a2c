// Package output renders review reports as terminal text, Markdown, or
// JSON, to stdout or a file.
package output
