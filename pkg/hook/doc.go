// Package hook decodes the JSON envelope an agent runtime writes to a hook
// process's stdin.
//
// Runtimes disagree on field names, so the envelope accepts the common
// spellings: tool_name or tool, tool_input or parameters, and the free
// text under prompt, message, free_text or input.message. Accessors return
// the first non-empty spelling.
package hook
