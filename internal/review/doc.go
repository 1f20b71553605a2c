// Package review composes prompts from review requests and drives them
// through the backend orchestrator, with secret redaction and response
// caching along the way.
package review
