package render

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/nbeval/internal/model"
)

// Field is one labeled value in a panel.
type Field struct {
	Label string
	Value string
}

var (
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Bold(true)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// FormatAccuracy renders a [0,1] accuracy as a percentage with two decimals.
func FormatAccuracy(acc float64) string {
	return fmt.Sprintf("%.2f%%", acc*100)
}

// FormatSeconds renders a duration in seconds as received.
func FormatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', -1, 64) + " seconds"
}

// MetricsPanel returns the model performance fields.
func MetricsPanel(r model.EvaluationResult) []Field {
	return []Field{
		{Label: "Accuracy", Value: FormatAccuracy(r.Accuracy)},
		{Label: "Evaluation Time", Value: FormatSeconds(r.EvaluationTime)},
		{Label: "Training Time", Value: FormatSeconds(r.TrainingTime)},
	}
}

// DatasetPanel returns the dataset statistics fields.
func DatasetPanel(r model.EvaluationResult) []Field {
	return []Field{
		{Label: "File", Value: r.File},
		{Label: "Number of Attributes", Value: strconv.Itoa(r.NumAttributes)},
		{Label: "Number of Classes", Value: strconv.Itoa(r.NumClasses)},
		{Label: "Number of Examples", Value: strconv.Itoa(r.NumExamples)},
	}
}

// FieldLines renders fields as "Label: value" lines with aligned values.
func FieldLines(fields []Field, styleValue func(string) string) []string {
	width := 0
	for _, f := range fields {
		if w := displayWidth(f.Label); w > width {
			width = w
		}
	}
	lines := make([]string, len(fields))
	for i, f := range fields {
		value := f.Value
		if styleValue != nil {
			value = styleValue(value)
		}
		lines[i] = padCell(f.Label+":", width+1, false) + " " + value
	}
	return lines
}

// Report writes the full plain-text result: selection, metrics, matrix and
// dataset panels.
func Report(w io.Writer, sel model.Selection, r model.EvaluationResult, color bool) error {
	title := func(s string) string { return s }
	value := func(s string) string { return s }
	if color {
		title = func(s string) string { return sectionStyle.Render(s) }
		value = func(s string) string { return valueStyle.Render(s) }
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title("Selection"))
	for _, line := range FieldLines([]Field{
		{Label: "Dataset", Value: sel.Dataset.Label()},
		{Label: "Validation", Value: sel.Validation.Label()},
	}, value) {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	fmt.Fprintf(&b, "\n%s\n", title("Model Performance"))
	for _, line := range FieldLines(MetricsPanel(r), value) {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	fmt.Fprintf(&b, "\n%s\n", title("Confusion Matrix"))
	matrix := ConfusionTable(r.Matrix()).Lines()
	if len(matrix) == 0 {
		b.WriteString("  (empty)\n")
	}
	for _, line := range matrix {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	fmt.Fprintf(&b, "\n%s\n", title("Dataset Info"))
	for _, line := range FieldLines(DatasetPanel(r), value) {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// ShouldUseColor reports whether styled output should be written to w.
func ShouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
