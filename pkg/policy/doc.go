// Package policy loads the sprintgate policy document.
//
// The document is YAML and optional. Without it the built-in tables from
// package classify apply; with it, each list present in the file replaces
// the corresponding built-in list:
//
//	protected_files: [".env", "config/prod.yaml"]
//	protected_patterns: [".ssh/", "secrets/"]
//	protected_globs: ["**/*.key"]
//	dangerous_commands: ["git push --force"]
//	allowed_tools: [Read, Write, Edit, Bash, Grep, Glob]
//	always_dangerous: [sudo, mkfs, "dd if="]
//	safe_commands: [ls, cat, "git status", "go test"]
//	max_file_size: 52428800
//
// Load returns compiled Rules. The manager subpackage keeps the current
// Rules and reloads them when the file changes.
package policy
