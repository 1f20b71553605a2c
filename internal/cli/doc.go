// Package cli wires together the Cobra command tree for the revu binary.
//
// It defines the root command and all subcommands (review, config, prompts,
// backends, cache, version), binds flags, builds the review pipeline, and
// returns deterministic exit codes for scripting.
package cli
