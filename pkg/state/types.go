package state

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"
)

// Foundation phases.
const (
	PhaseProjectPlanning = "project_planning"
)

// Sprint phases.
const (
	SprintPhasePlanning  = "planning"
	SprintPhaseExecution = "execution"
)

// Planning gate statuses.
const (
	GatePassed  = "passed"
	GateFailed  = "failed"
	GatePending = "pending"
)

// TimestampFormat is the layout used for timestamps the gate writes.
const TimestampFormat = time.RFC3339Nano

// ProjectState is the shared project state document.
type ProjectState struct {
	Foundation        Foundation        `json:"foundation"`
	PlanningChecklist PlanningChecklist `json:"planning_checklist"`
	Sprints           Sprints           `json:"sprints"`

	// raw is the document as loaded. Keys without a typed field survive a
	// save because the typed view is merged on top of it.
	raw map[string]any
}

// Foundation tracks the project-setup phase.
type Foundation struct {
	Complete     bool   `json:"complete"`
	CurrentPhase string `json:"current_phase,omitempty"`
}

// PlanningChecklist tracks planning validation.
type PlanningChecklist struct {
	Completed        bool                  `json:"completed"`
	ValidationReport map[string]GateReport `json:"validation_report,omitempty"`
}

// GateReport is the result of one planning gate.
type GateReport struct {
	Status string `json:"status"`
}

// Sprints holds the sprint section. Only the active sprint is modelled.
type Sprints struct {
	Active *Sprint `json:"active,omitempty"`
}

// Sprint is a bounded unit of work with a locked file scope and an
// iteration budget.
type Sprint struct {
	ID               string           `json:"id"`
	Phase            string           `json:"phase,omitempty"`
	ManifestoLocked  bool             `json:"manifesto_locked"`
	LockedFiles      []string         `json:"locked_files,omitempty"`
	Iteration        int              `json:"iteration"`
	MaxIterations    int              `json:"max_iterations,omitempty"`
	LastUpdated      string           `json:"last_updated,omitempty"`
	ExecutionContext ExecutionContext `json:"execution_context"`
}

// ExecutionContext records the last gated action of a sprint.
type ExecutionContext struct {
	LastToolUsed       string `json:"last_tool_used,omitempty"`
	ExecutionTimestamp string `json:"execution_timestamp,omitempty"`

	// CheckpointAcknowledged is the last self-assessment checkpoint the
	// agent has already been stopped at.
	CheckpointAcknowledged int `json:"checkpoint_acknowledged,omitempty"`
}

// ActiveSprint returns the active sprint or nil.
func (s *ProjectState) ActiveSprint() *Sprint {
	if s == nil {
		return nil
	}
	return s.Sprints.Active
}

// IncompleteGates returns the sorted names of planning gates whose status
// is not passed.
func (s *ProjectState) IncompleteGates() []string {
	if s == nil {
		return nil
	}
	var names []string
	for name, report := range s.PlanningChecklist.ValidationReport {
		if report.Status != GatePassed {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Locked reports whether the sprint's file scope is in force.
func (sp *Sprint) Locked() bool {
	return sp != nil && sp.ManifestoLocked && len(sp.LockedFiles) > 0
}

// EffectiveMaxIterations returns the sprint's budget, or def when the
// document carries none.
func (sp *Sprint) EffectiveMaxIterations(def int) int {
	if sp == nil || sp.MaxIterations <= 0 {
		return def
	}
	return sp.MaxIterations
}

// Touch records a gated action on the sprint.
func (sp *Sprint) Touch(tool string, now time.Time) {
	ts := now.UTC().Format(TimestampFormat)
	sp.LastUpdated = ts
	sp.ExecutionContext.LastToolUsed = tool
	sp.ExecutionContext.ExecutionTimestamp = ts
}

// Clone returns a deep copy of the state.
func (s *ProjectState) Clone() *ProjectState {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		// Marshal of plain data cannot fail.
		panic(err)
	}
	var out ProjectState
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return &out
}

// projectStateFields has the same fields as ProjectState without its
// methods, so the custom codecs below can use the default encoding.
type projectStateFields ProjectState

// UnmarshalJSON decodes the document and remembers the raw key tree.
func (s *ProjectState) UnmarshalJSON(data []byte) error {
	var fields projectStateFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	*s = ProjectState(fields)
	s.raw = raw
	return nil
}

// MarshalJSON encodes the typed fields on top of the loaded document.
func (s ProjectState) MarshalJSON() ([]byte, error) {
	typed, err := json.Marshal(projectStateFields(s))
	if err != nil {
		return nil, err
	}
	if len(s.raw) == 0 {
		return typed, nil
	}

	dec := json.NewDecoder(bytes.NewReader(typed))
	dec.UseNumber()
	var overlay map[string]any
	if err := dec.Decode(&overlay); err != nil {
		return nil, err
	}
	return json.Marshal(mergeObjects(s.raw, overlay))
}

// mergeObjects returns base with overlay applied recursively. Nested
// objects merge key by key; any other overlay value replaces the base
// value. Neither input is modified.
func mergeObjects(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		bo, bok := out[k].(map[string]any)
		oo, ook := v.(map[string]any)
		if bok && ook {
			out[k] = mergeObjects(bo, oo)
			continue
		}
		out[k] = v
	}
	return out
}
