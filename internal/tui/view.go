package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/verte-zerg/nbeval/internal/render"
	"github.com/verte-zerg/nbeval/internal/session"
)

var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#52C41A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#3A6EA5"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cardStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			MarginRight(1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	matrixLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Padding(0, 1).Align(lipgloss.Right)
	matrixCellStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Padding(0, 1).Align(lipgloss.Right)
	tableMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// View implements tea.Model.
func (m *Model) View() string {
	header := m.renderHeader()
	footer := hintStyle.Render(m.help.View(m.keys))
	body := m.renderResults()
	if m.ready {
		body = m.viewport.View()
	}
	parts := []string{header}
	if body != "" {
		parts = append(parts, body)
	}
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	headerHeight := lipgloss.Height(m.renderHeader())
	footerHeight := lipgloss.Height(m.help.View(m.keys))
	bodyHeight := m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(m.width, bodyHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = bodyHeight
	}
	m.refreshContent()
}

func (m *Model) refreshContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderResults())
}

func (m *Model) renderHeader() string {
	title := titleStyle.Render("Naive Bayes Predictions")
	datasets := renderChoices(session.DatasetChoices(m.state))
	validations := renderChoices(session.ValidationChoices(m.state))
	predict := hintStyle.Render("enter: predict")
	if m.state.Phase() == session.PhaseRequesting {
		predict = m.spinner.View() + " " + hintStyle.Render("evaluating…")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, datasets, validations, predict, "")
}

func renderChoices(choices []session.Choice) string {
	buttons := make([]string, len(choices))
	for i, c := range choices {
		style := inactiveNavStyle
		if c.Selected {
			style = activeNavStyle
		}
		buttons[i] = style.Render(c.Label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
}

// renderResults draws the performance, matrix and dataset cards, or nothing
// before the first successful evaluation.
func (m *Model) renderResults() string {
	res, ok := m.state.Result()
	if !ok {
		return ""
	}
	cards := []string{
		renderCard("Model Performance", render.MetricsPanel(res)),
		cardStyle.Render(cardTitleStyle.Render("Confusion Matrix") + "\n" + renderMatrix(render.ConfusionTable(res.Matrix()))),
		renderCard("Dataset Info", render.DatasetPanel(res)),
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	if m.width > 0 && lipgloss.Width(row) > m.width {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
	return row
}

func renderCard(title string, fields []render.Field) string {
	lines := render.FieldLines(fields, func(v string) string { return cardValueStyle.Render(v) })
	return cardStyle.Render(cardTitleStyle.Render(title) + "\n" + strings.Join(lines, "\n"))
}

func renderMatrix(mt render.MatrixTable) string {
	if mt.Empty() {
		return tableMutedStyle.Render("(empty)")
	}
	header, rows := mt.Grid()
	for i, row := range rows {
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			rows[i] = padded
		}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableMutedStyle).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return matrixLabelStyle
			}
			return matrixCellStyle
		})
	return t.Render()
}
