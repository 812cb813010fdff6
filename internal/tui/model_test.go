package tui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/nbeval/internal/evalclient"
	"github.com/verte-zerg/nbeval/internal/model"
	"github.com/verte-zerg/nbeval/internal/render"
	"github.com/verte-zerg/nbeval/internal/session"
)

const irisResponse = `{"accuracy":0.95,"confusion_matrix":[[10,0],[1,9]],"evaluation_time":0.002,"training_time":0.01,"file":"iris.csv","number_of_attributes":4,"number_of_classes":2,"number_of_examples":20}`

type fakeSubmitter struct {
	mu    sync.Mutex
	sent  []model.Selection
	reply func(n int, sel model.Selection) (model.EvaluationResult, error)
}

func (f *fakeSubmitter) Submit(_ context.Context, sel model.Selection) (model.EvaluationResult, error) {
	f.mu.Lock()
	f.sent = append(f.sent, sel)
	n := len(f.sent)
	f.mu.Unlock()
	return f.reply(n, sel)
}

type fakeRecorder struct {
	entries []model.HistoryEntry
}

func (f *fakeRecorder) InsertRun(_ context.Context, entry model.HistoryEntry) (int64, error) {
	f.entries = append(f.entries, entry)
	return int64(len(f.entries)), nil
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var enterKey = tea.KeyMsg{Type: tea.KeyEnter}

func execCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, execCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func evaluation(t *testing.T, cmd tea.Cmd) evaluationMsg {
	t.Helper()
	for _, msg := range execCmd(cmd) {
		if ev, ok := msg.(evaluationMsg); ok {
			return ev
		}
	}
	t.Fatalf("command produced no evaluation message")
	return evaluationMsg{}
}

func newTestModel(client Submitter, history Recorder) (*Model, *logtest.Hook) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return NewModel(context.Background(), model.DefaultSelection(), client, history, log), hook
}

func press(m *Model, msg tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func TestSelectionKeys(t *testing.T) {
	m, _ := newTestModel(&fakeSubmitter{}, nil)

	press(m, keyRune('b'))
	press(m, keyRune('c'))
	sel := m.State().Selection()
	assert.Equal(t, model.DatasetBanknote, sel.Dataset)
	assert.Equal(t, model.ValidationCrossVal, sel.Validation)

	before := m.State()
	press(m, keyRune('b'))
	assert.Equal(t, before, m.State())

	press(m, keyRune('1'))
	press(m, keyRune('3'))
	assert.Equal(t, model.DefaultSelection(), m.State().Selection())

	view := m.View()
	for _, label := range []string{"Iris Dataset", "Banknote Dataset", "Standard Validation", "5-Fold Cross Validation"} {
		assert.Contains(t, view, label)
	}
}

func TestPredictRendersResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, irisResponse)
	}))
	t.Cleanup(srv.Close)
	client := evalclient.NewClient(srv.URL, srv.Client(), nil)
	m, hook := newTestModel(client, nil)

	assert.NotContains(t, m.View(), "Model Performance")

	cmd := press(m, enterKey)
	assert.Equal(t, session.PhaseRequesting, m.State().Phase())
	m.Update(evaluation(t, cmd))
	assert.Equal(t, session.PhaseIdle, m.State().Phase())

	view := m.View()
	for _, needle := range []string{
		"Model Performance",
		"95.00%",
		"0.002 seconds",
		"0.01 seconds",
		"Confusion Matrix",
		"Dataset Info",
		"iris.csv",
	} {
		assert.Contains(t, view, needle)
	}

	squashed := squash(view)
	for _, needle := range []string{
		"Number of Attributes: 4",
		"Number of Classes: 2",
		"Number of Examples: 20",
	} {
		assert.Contains(t, squashed, needle)
	}

	res, ok := m.State().Result()
	require.True(t, ok)
	matrix := squash(renderMatrix(render.ConfusionTable(res.Matrix())))
	for _, row := range []string{
		"│ │ 0 │ 1 │",
		"│ 0 │ 10 │ 0 │",
		"│ 1 │ 1 │ 9 │",
	} {
		assert.Contains(t, matrix, row)
		assert.Contains(t, squashed, row)
	}

	last := hook.LastEntry()
	assert.Equal(t, "evaluation result applied", last.Message)
	assert.Equal(t, "idle", last.Data["phase"])
}

// squash collapses runs of spaces in every line so assertions do not depend
// on column padding.
func squash(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}

func TestPredictServerErrorLeavesDisplay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	client := evalclient.NewClient(srv.URL, srv.Client(), nil)
	m, hook := newTestModel(client, nil)

	m.Update(evaluation(t, press(m, enterKey)))

	view := m.View()
	assert.NotContains(t, view, "Model Performance")
	assert.NotContains(t, view, "Confusion Matrix")
	assert.NotContains(t, view, "Dataset Info")
	_, ok := m.State().Result()
	assert.False(t, ok)

	var httpErr *evalclient.HTTPError
	require.True(t, errors.As(m.State().LastError(), &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)

	var logged *logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel {
			logged = entry
		}
	}
	require.NotNil(t, logged, "expected an error log entry")
	assert.Equal(t, http.StatusInternalServerError, logged.Data["status"])
	assert.Equal(t, "http", logged.Data["kind"])
}

func TestFailureKeepsPreviousResult(t *testing.T) {
	client := &fakeSubmitter{reply: func(n int, _ model.Selection) (model.EvaluationResult, error) {
		if n == 1 {
			return model.NewEvaluationResult(0.5, [][]int{{1}}, 0, 0, "first.csv", 1, 1, 1), nil
		}
		return model.EvaluationResult{}, &evalclient.ParseError{Err: errors.New("bad body")}
	}}
	m, _ := newTestModel(client, nil)

	m.Update(evaluation(t, press(m, enterKey)))
	m.Update(evaluation(t, press(m, enterKey)))

	res, ok := m.State().Result()
	require.True(t, ok)
	assert.Equal(t, "first.csv", res.File)
	assert.Contains(t, m.View(), "first.csv")
	assert.Error(t, m.State().LastError())
}

func TestLatestSubmissionWins(t *testing.T) {
	client := &fakeSubmitter{reply: func(_ int, sel model.Selection) (model.EvaluationResult, error) {
		return model.NewEvaluationResult(0.7, [][]int{{7}}, 0, 0, sel.Dataset.String()+".csv", 1, 1, 1), nil
	}}
	m, hook := newTestModel(client, nil)

	first := press(m, enterKey)
	press(m, keyRune('b'))
	second := press(m, enterKey)
	assert.Equal(t, 2, m.State().InFlight())

	m.Update(evaluation(t, second))
	assert.Equal(t, "requesting", hook.LastEntry().Data["phase"])
	m.Update(evaluation(t, first))

	res, ok := m.State().Result()
	require.True(t, ok)
	assert.Equal(t, "banknote.csv", res.File)
	assert.Equal(t, session.PhaseIdle, m.State().Phase())
	assert.Equal(t, "superseded evaluation response dropped", hook.LastEntry().Message)
}

func TestSubmitUsesSnapshot(t *testing.T) {
	client := &fakeSubmitter{reply: func(int, model.Selection) (model.EvaluationResult, error) {
		return model.NewEvaluationResult(1, nil, 0, 0, "", 0, 0, 0), nil
	}}
	m, _ := newTestModel(client, nil)

	cmd := press(m, enterKey)
	press(m, keyRune('b'))
	press(m, keyRune('c'))
	m.Update(evaluation(t, cmd))

	require.Len(t, client.sent, 1)
	assert.Equal(t, model.DefaultSelection(), client.sent[0])
}

func TestSuccessfulRunIsRecorded(t *testing.T) {
	client := &fakeSubmitter{reply: func(int, model.Selection) (model.EvaluationResult, error) {
		return model.NewEvaluationResult(0.9, [][]int{{9}}, 0, 0, "iris.csv", 4, 1, 9), nil
	}}
	rec := &fakeRecorder{}
	m, _ := newTestModel(client, rec)

	m.Update(evaluation(t, press(m, enterKey)))

	require.Len(t, rec.entries, 1)
	assert.NotEmpty(t, rec.entries[0].RunID)
	assert.Equal(t, model.DefaultSelection(), rec.entries[0].Selection)
	assert.Equal(t, "iris.csv", rec.entries[0].Result.File)
}

func TestViewportLayout(t *testing.T) {
	client := &fakeSubmitter{reply: func(int, model.Selection) (model.EvaluationResult, error) {
		return model.NewEvaluationResult(0.95, [][]int{{10, 0}, {1, 9}}, 0.002, 0.01, "iris.csv", 4, 2, 20), nil
	}}
	m, _ := newTestModel(client, nil)
	m.Update(tea.WindowSizeMsg{Width: 160, Height: 50})
	m.Update(evaluation(t, press(m, enterKey)))

	view := m.View()
	assert.Contains(t, view, "95.00%")
	assert.Contains(t, view, "iris.csv")
	assert.LessOrEqual(t, len(strings.Split(view, "\n")), 50)
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(&fakeSubmitter{}, nil)
	cmd := press(m, keyRune('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
