package render

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Label", "Value", "Count"}
	rows := [][]string{
		{"a", "97.50%", "12"},
		{"longer", "8.00%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Label   Value Count" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "a      97.50%    12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "longer  8.00%     3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"名前", "n"}, [][]string{{"x", "1"}}, map[int]bool{1: true})
	if lines[0] != "名前 n" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "x    1" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := formatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected no lines, got %q", lines)
	}
}
