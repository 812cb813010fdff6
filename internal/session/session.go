// Package session holds the panel state and its pure update functions.
//
// State is a value: every update returns a new State and leaves the input
// untouched, so transitions can be tested without a renderer.
package session

import (
	"github.com/verte-zerg/nbeval/internal/model"
)

// Phase is the request lifecycle phase.
type Phase int

const (
	// PhaseIdle means no request is in flight.
	PhaseIdle Phase = iota
	// PhaseRequesting means at least one request is in flight.
	PhaseRequesting
)

func (p Phase) String() string {
	if p == PhaseRequesting {
		return "requesting"
	}
	return "idle"
}

// State is the whole panel state for one UI session.
type State struct {
	selection model.Selection
	result    *model.EvaluationResult
	lastErr   error
	latestID  uint64
	inFlight  int
}

// Ticket describes a submitted request. Selection is a snapshot taken when
// the ticket was issued.
type Ticket struct {
	ID        uint64
	Selection model.Selection
}

// Outcome is the completion of a ticket: either Result or Err is set.
type Outcome struct {
	ID     uint64
	Result model.EvaluationResult
	Err    error
}

// Resolution tells the caller what Resolve did with an outcome.
type Resolution int

const (
	// Applied means the outcome was the latest success and replaced the result.
	Applied Resolution = iota
	// Failed means the latest request failed; the result is unchanged.
	Failed
	// Stale means a newer request was issued; the outcome was dropped.
	Stale
)

func (r Resolution) String() string {
	switch r {
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	}
	return "stale"
}

// New returns the initial state with the given selection.
func New(sel model.Selection) State {
	return State{selection: sel}
}

// Selection returns the current selection.
func (s State) Selection() model.Selection {
	return s.selection
}

// Result returns the latest successful result, if any.
func (s State) Result() (model.EvaluationResult, bool) {
	if s.result == nil {
		return model.EvaluationResult{}, false
	}
	return *s.result, true
}

// LastError returns the failure of the most recent resolved request, or nil
// if it succeeded or nothing has resolved yet.
func (s State) LastError() error {
	return s.lastErr
}

// Phase returns the lifecycle phase.
func (s State) Phase() Phase {
	if s.inFlight > 0 {
		return PhaseRequesting
	}
	return PhaseIdle
}

// InFlight returns the number of unresolved requests.
func (s State) InFlight() int {
	return s.inFlight
}

// SelectDataset sets the dataset. Out-of-range values are rejected and the
// state is returned unchanged.
func SelectDataset(s State, d model.Dataset) (State, error) {
	if !d.Valid() {
		return s, model.ErrUnknownDataset
	}
	s.selection.Dataset = d
	return s, nil
}

// SelectValidation sets the validation type. Out-of-range values are
// rejected and the state is returned unchanged.
func SelectValidation(s State, v model.ValidationType) (State, error) {
	if !v.Valid() {
		return s, model.ErrUnknownValidationType
	}
	s.selection.Validation = v
	return s, nil
}

// Begin issues a ticket for the current selection. Request ids increase
// monotonically within a session.
func Begin(s State) (State, Ticket) {
	s.latestID++
	s.inFlight++
	return s, Ticket{ID: s.latestID, Selection: s.selection}
}

// Resolve applies a completed request. Only the most recently issued ticket
// may change the result or the error; older ones are dropped even if they
// resolve last.
func Resolve(s State, out Outcome) (State, Resolution) {
	if s.inFlight > 0 {
		s.inFlight--
	}
	if out.ID != s.latestID {
		return s, Stale
	}
	if out.Err != nil {
		s.lastErr = out.Err
		return s, Failed
	}
	res := out.Result
	s.result = &res
	s.lastErr = nil
	return s, Applied
}

// Choice is one selectable alternative and whether it is highlighted.
type Choice struct {
	Value    string
	Label    string
	Selected bool
}

// DatasetChoices returns every dataset with exactly one marked selected.
func DatasetChoices(s State) []Choice {
	choices := make([]Choice, len(model.Datasets))
	for i, d := range model.Datasets {
		choices[i] = Choice{Value: d.String(), Label: d.Label(), Selected: d == s.selection.Dataset}
	}
	return choices
}

// ValidationChoices returns every validation type with exactly one marked selected.
func ValidationChoices(s State) []Choice {
	choices := make([]Choice, len(model.ValidationTypes))
	for i, v := range model.ValidationTypes {
		choices[i] = Choice{Value: v.String(), Label: v.Label(), Selected: v == s.selection.Validation}
	}
	return choices
}
