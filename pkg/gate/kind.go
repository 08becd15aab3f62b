package gate

import "keelson-hq/sprintgate/pkg/classify"

// ActionKind is the coarse class of an action, resolved once per request.
type ActionKind = classify.ToolKind

const (
	KindRead    = classify.ToolRead
	KindWrite   = classify.ToolWrite
	KindExecute = classify.ToolExecute
	KindOther   = classify.ToolOther
)

// KindOf resolves a tool identifier. Unknown tools are KindOther.
func KindOf(tool string) ActionKind {
	return classify.KindOfTool(tool)
}
