// Package tui provides the Bubble Tea evaluation panel.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/nbeval/internal/evalclient"
	"github.com/verte-zerg/nbeval/internal/model"
	"github.com/verte-zerg/nbeval/internal/session"
)

// Submitter sends one evaluation request.
type Submitter interface {
	Submit(ctx context.Context, sel model.Selection) (model.EvaluationResult, error)
}

// Recorder persists successful runs. A nil Recorder disables history.
type Recorder interface {
	InsertRun(ctx context.Context, entry model.HistoryEntry) (int64, error)
}

type evaluationMsg struct {
	ticket  session.Ticket
	runID   string
	outcome session.Outcome
}

// Model implements the Bubble Tea evaluation panel.
type Model struct {
	ctx     context.Context
	state   session.State
	client  Submitter
	history Recorder
	log     logrus.FieldLogger

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model

	width  int
	height int
	ready  bool
}

// NewModel constructs an evaluation panel starting from sel.
func NewModel(ctx context.Context, sel model.Selection, client Submitter, history Recorder, log logrus.FieldLogger) *Model {
	m := &Model{
		ctx:     ctx,
		state:   session.New(sel),
		client:  client,
		history: history,
		log:     log,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
	}
	return m
}

// State returns the current panel state.
func (m *Model) State() session.State {
	return m.state
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case evaluationMsg:
		m.handleOutcome(msg)
		return m, nil
	case spinner.TickMsg:
		if m.state.Phase() != session.PhaseRequesting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Iris):
		m.selectDataset(model.DatasetIris)
	case key.Matches(msg, m.keys.Banknote):
		m.selectDataset(model.DatasetBanknote)
	case key.Matches(msg, m.keys.Standard):
		m.selectValidation(model.ValidationStandard)
	case key.Matches(msg, m.keys.CrossVal):
		m.selectValidation(model.ValidationCrossVal)
	case key.Matches(msg, m.keys.Predict):
		return m, m.submit()
	case key.Matches(msg, m.keys.Up, m.keys.Down):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) selectDataset(d model.Dataset) {
	next, err := session.SelectDataset(m.state, d)
	if err != nil {
		m.log.WithError(err).Warn("dataset selection rejected")
		return
	}
	m.state = next
}

func (m *Model) selectValidation(v model.ValidationType) {
	next, err := session.SelectValidation(m.state, v)
	if err != nil {
		m.log.WithError(err).Warn("validation selection rejected")
		return
	}
	m.state = next
}

// submit issues a new request for the current selection. Controls stay
// active while it is in flight.
func (m *Model) submit() tea.Cmd {
	wasIdle := m.state.Phase() == session.PhaseIdle
	var ticket session.Ticket
	m.state, ticket = session.Begin(m.state)
	runID := uuid.NewString()
	m.log.WithFields(logrus.Fields{
		"request_id": ticket.ID,
		"run_id":     runID,
		"dataset":    ticket.Selection.Dataset.String(),
		"validation": ticket.Selection.Validation.String(),
	}).Info("evaluation submitted")

	ctx := m.ctx
	client := m.client
	request := func() tea.Msg {
		res, err := client.Submit(ctx, ticket.Selection)
		return evaluationMsg{
			ticket:  ticket,
			runID:   runID,
			outcome: session.Outcome{ID: ticket.ID, Result: res, Err: err},
		}
	}
	if wasIdle {
		return tea.Batch(request, m.spinner.Tick)
	}
	return request
}

func (m *Model) handleOutcome(msg evaluationMsg) {
	var resolution session.Resolution
	m.state, resolution = session.Resolve(m.state, msg.outcome)
	log := m.log.WithFields(logrus.Fields{
		"request_id": msg.ticket.ID,
		"run_id":     msg.runID,
		"dataset":    msg.ticket.Selection.Dataset.String(),
		"validation": msg.ticket.Selection.Validation.String(),
		"resolution": resolution.String(),
		"phase":      m.state.Phase().String(),
	})

	if err := msg.outcome.Err; err != nil {
		fields := logrus.Fields{"kind": evalclient.Kind(err)}
		var httpErr *evalclient.HTTPError
		if errors.As(err, &httpErr) {
			fields["status"] = httpErr.StatusCode
		}
		log.WithFields(fields).WithError(err).Error("evaluation failed")
	}

	switch resolution {
	case session.Applied:
		log.WithField("accuracy", msg.outcome.Result.Accuracy).Info("evaluation result applied")
		m.record(msg)
		m.refreshContent()
		m.viewport.GotoTop()
	case session.Stale:
		log.Debug("superseded evaluation response dropped")
	}
}

func (m *Model) record(msg evaluationMsg) {
	if m.history == nil {
		return
	}
	entry := model.HistoryEntry{
		RunID:       msg.runID,
		CompletedAt: time.Now(),
		Selection:   msg.ticket.Selection,
		Result:      msg.outcome.Result,
	}
	if _, err := m.history.InsertRun(context.Background(), entry); err != nil {
		m.log.WithError(err).WithField("run_id", msg.runID).Warn("failed to record run")
	}
}
