// sprintgate is a policy gate for autonomous coding agents.
//
// It runs as the agent's hook command. Before each tool call the agent pipes
// the proposed action to "sprintgate pre", which checks it against the
// shared project state and the policy document and answers with a verdict.
// After the call "sprintgate post" inspects the result and reports whether
// the workflow may continue.
//
// Usage:
//
//	# Pre-action gate (exit 0 allows, exit 2 denies)
//	echo '{"tool_name":"Bash","tool_input":{"command":"go test ./..."}}' | sprintgate pre
//
//	# Post-action feedback (exit 2 blocks the workflow)
//	sprintgate post < result.json
//
//	# Inspect the project state and effective policy
//	sprintgate state show
//	sprintgate policy show --format yaml
//
//	# Query the audit trail
//	sprintgate audit query --denied --since 24h
//
//	# Confine writes while fixing a regression, then check the workspace
//	sprintgate repair declare --scope src/auth/ --reason "token refresh"
//	sprintgate doctor
//
//	# Long-running mode: hot reload and scheduled audit pruning
//	sprintgate watch
package main

func main() {
	Execute()
}
