package classify

import "strings"

// ToolKind is the coarse class of a tool invocation.
type ToolKind string

const (
	ToolRead    ToolKind = "read"
	ToolWrite   ToolKind = "write"
	ToolExecute ToolKind = "execute"
	ToolOther   ToolKind = "other"
)

// DefaultToolKinds maps lower-cased tool identifiers to their kind.
var DefaultToolKinds = map[string]ToolKind{
	"read":         ToolRead,
	"grep":         ToolRead,
	"glob":         ToolRead,
	"ls":           ToolRead,
	"notebookread": ToolRead,
	"webfetch":     ToolRead,
	"websearch":    ToolRead,
	"view":         ToolRead,

	"write":          ToolWrite,
	"edit":           ToolWrite,
	"multiedit":      ToolWrite,
	"notebookedit":   ToolWrite,
	"create":         ToolWrite,
	"str_replace":    ToolWrite,
	"apply_patch":    ToolWrite,
	"edit_file":      ToolWrite,
	"write_file":     ToolWrite,
	"search_replace": ToolWrite,

	"bash":             ToolExecute,
	"shell":            ToolExecute,
	"run":              ToolExecute,
	"run_terminal_cmd": ToolExecute,
	"exec":             ToolExecute,
}

// KindOfTool resolves a tool identifier. Unknown tools are ToolOther.
func KindOfTool(tool string) ToolKind {
	if k, ok := DefaultToolKinds[strings.ToLower(strings.TrimSpace(tool))]; ok {
		return k
	}
	return ToolOther
}
