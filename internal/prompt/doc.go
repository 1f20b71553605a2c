// Package prompt resolves named instruction templates with layered fallback.
//
// A template key like "review_diff" is looked up as <key>.md in the project
// prompts directory (.revu/prompts), then the machine-wide prompts directory,
// then a built-in literal. The first source that has the file wins entirely;
// partial content is never merged across sources. Winners are cached per key
// until [Store.ClearCache].
//
// [Store.Build] assembles the final prompt: base role template, key template,
// response-language directive, then the reviewed content, always in that
// order. A custom override template replaces the resolved template and may
// carry a {content} placeholder.
package prompt
