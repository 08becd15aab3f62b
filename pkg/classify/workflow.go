package classify

import "strings"

// WorkflowCommand is a logical workflow step named in free text.
type WorkflowCommand string

const (
	CommandNone            WorkflowCommand = ""
	CommandFoundationStart WorkflowCommand = "foundation_start"
	CommandPlanning        WorkflowCommand = "planning"
	CommandSprintStart     WorkflowCommand = "sprint_start"
	CommandSprintEnd       WorkflowCommand = "sprint_end"
	CommandAdvance         WorkflowCommand = "advance"
	CommandExecution       WorkflowCommand = "execution"
)

// DefaultWorkflowLexicon maps a normalized word to its command. Words are
// compared after lower-casing and removing '-', '_' and a leading '/'.
var DefaultWorkflowLexicon = map[string]WorkflowCommand{
	"startprojectplanning":    CommandFoundationStart,
	"startfoundation":         CommandFoundationStart,
	"foundationstart":         CommandFoundationStart,
	"initfoundation":          CommandFoundationStart,
	"plan":                    CommandPlanning,
	"planproject":             CommandPlanning,
	"startplanning":           CommandPlanning,
	"planningchecklist":       CommandPlanning,
	"validateplan":            CommandPlanning,
	"startsprintplanning":     CommandPlanning,
	"projectstatus":           CommandPlanning,
	"listsprints":             CommandPlanning,
	"deepselfassessment":      CommandPlanning,
	"status":                  CommandPlanning,
	"help":                    CommandPlanning,
	"startnewsprint":          CommandSprintStart,
	"startsprint":             CommandSprintStart,
	"newsprint":               CommandSprintStart,
	"endsprint":               CommandSprintEnd,
	"closesprint":             CommandSprintEnd,
	"completesprint":          CommandSprintEnd,
	"advancetoimplementation": CommandAdvance,
	"advanceimplementation":   CommandAdvance,
}

// DefaultExecutionCommands only count in their slash form; the bare words
// are ordinary English.
var DefaultExecutionCommands = []string{"/implement", "/execute", "/runtask"}

// WorkflowClassifier resolves workflow commands from free text.
type WorkflowClassifier struct {
	Lexicon           map[string]WorkflowCommand
	ExecutionCommands []string
}

// NewWorkflowClassifier returns a classifier with the built-in lexicon.
func NewWorkflowClassifier() WorkflowClassifier {
	return WorkflowClassifier{Lexicon: DefaultWorkflowLexicon, ExecutionCommands: DefaultExecutionCommands}
}

// Commands returns every workflow command named in text, in order of first
// appearance and without duplicates. Only whole words count.
func (c WorkflowClassifier) Commands(text string) []WorkflowCommand {
	var out []WorkflowCommand
	seen := map[WorkflowCommand]bool{}
	add := func(cmd WorkflowCommand) {
		if !seen[cmd] {
			seen[cmd] = true
			out = append(out, cmd)
		}
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '/')
	})
	exec := toSet(c.ExecutionCommands)

	for _, w := range words {
		if exec[w] {
			add(CommandExecution)
			continue
		}
		key := strings.NewReplacer("-", "", "_", "").Replace(strings.TrimLeft(w, "/"))
		if cmd, ok := c.Lexicon[key]; ok {
			add(cmd)
		}
	}
	return out
}
