package render

import (
	"strconv"
	"time"

	"github.com/verte-zerg/nbeval/internal/model"
)

// HistoryLines renders recorded runs as an aligned table, oldest first.
func HistoryLines(entries []model.HistoryEntry) []string {
	headers := []string{"Completed", "Dataset", "Validation", "Accuracy", "Classes", "Examples", "Train (s)", "Eval (s)"}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			e.CompletedAt.Local().Format(time.DateTime),
			e.Selection.Dataset.String(),
			e.Selection.Validation.String(),
			FormatAccuracy(e.Result.Accuracy),
			strconv.Itoa(e.Result.NumClasses),
			strconv.Itoa(e.Result.NumExamples),
			strconv.FormatFloat(e.Result.TrainingTime, 'f', 4, 64),
			strconv.FormatFloat(e.Result.EvaluationTime, 'f', 4, 64),
		}
	}
	return formatTable(headers, rows, map[int]bool{3: true, 4: true, 5: true, 6: true, 7: true})
}
