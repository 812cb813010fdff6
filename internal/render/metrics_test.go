package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/nbeval/internal/model"
)

func irisResult() model.EvaluationResult {
	return model.NewEvaluationResult(0.95, [][]int{{10, 0}, {1, 9}}, 0.002, 0.01, "iris.csv", 4, 2, 20)
}

func TestFormatAccuracy(t *testing.T) {
	cases := map[float64]string{
		0.95:    "95.00%",
		1:       "100.00%",
		0:       "0.00%",
		0.33333: "33.33%",
	}
	for in, want := range cases {
		if got := FormatAccuracy(in); got != want {
			t.Fatalf("FormatAccuracy(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := FormatSeconds(0.002); got != "0.002 seconds" {
		t.Fatalf("unexpected seconds: %q", got)
	}
}

func TestPanels(t *testing.T) {
	res := irisResult()
	metrics := MetricsPanel(res)
	if metrics[0].Value != "95.00%" {
		t.Fatalf("unexpected accuracy: %q", metrics[0].Value)
	}
	dataset := DatasetPanel(res)
	want := []string{"iris.csv", "4", "2", "20"}
	for i, f := range dataset {
		if f.Value != want[i] {
			t.Fatalf("dataset field %s: expected %q, got %q", f.Label, want[i], f.Value)
		}
	}
}

func TestReportPlain(t *testing.T) {
	var buf bytes.Buffer
	if err := Report(&buf, model.DefaultSelection(), irisResult(), false); err != nil {
		t.Fatalf("report: %v", err)
	}
	out := buf.String()
	for _, needle := range []string{
		"Iris Dataset",
		"Standard Validation",
		"95.00%",
		"0.002 seconds",
		"0.01 seconds",
		"   0 1",
		"0 10 0",
		"1  1 9",
		"iris.csv",
		"Number of Attributes: 4",
		"Number of Classes:    2",
		"Number of Examples:   20",
	} {
		if !strings.Contains(out, needle) {
			t.Fatalf("report missing %q:\n%s", needle, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("plain report contains escape codes")
	}
}

func TestReportEmptyMatrix(t *testing.T) {
	var buf bytes.Buffer
	res := model.NewEvaluationResult(1, [][]int{}, 0, 0, "f", 0, 0, 0)
	if err := Report(&buf, model.DefaultSelection(), res, false); err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(buf.String(), "(empty)") {
		t.Fatalf("expected empty matrix marker")
	}
}

func TestShouldUseColorNonFile(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	if ShouldUseColor(&bytes.Buffer{}, false) {
		t.Fatalf("buffer should not get color")
	}
	if !ShouldUseColor(&bytes.Buffer{}, true) {
		t.Fatalf("force should enable color")
	}
	t.Setenv("NO_COLOR", "1")
	if ShouldUseColor(&bytes.Buffer{}, true) {
		t.Fatalf("NO_COLOR should win")
	}
}
