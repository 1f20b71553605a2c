// Package redact scrubs credential material from text before it is sent
// to an AI backend, and withholds known-sensitive files entirely.
package redact
