// Package store handles SQLite persistence of evaluation history.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/verte-zerg/nbeval/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for recorded runs.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create history dir")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open history db")
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL UNIQUE,
			completed_at INTEGER NOT NULL,
			dataset TEXT NOT NULL,
			validation TEXT NOT NULL,
			accuracy REAL NOT NULL,
			confusion_matrix TEXT NOT NULL,
			evaluation_time REAL NOT NULL,
			training_time REAL NOT NULL,
			file TEXT NOT NULL,
			num_attributes INTEGER NOT NULL,
			num_classes INTEGER NOT NULL,
			num_examples INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_completed_at ON runs(completed_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(err, "failed to migrate history db")
		}
	}
	return nil
}

// InsertRun records a successful evaluation.
func (s *Store) InsertRun(ctx context.Context, entry model.HistoryEntry) (int64, error) {
	matrix, err := json.Marshal(entry.Result.Matrix())
	if err != nil {
		return 0, errors.Wrap(err, "failed to encode confusion matrix")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, completed_at, dataset, validation, accuracy, confusion_matrix,
			evaluation_time, training_time, file, num_attributes, num_classes, num_examples)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.CompletedAt.UnixNano(),
		entry.Selection.Dataset.String(),
		entry.Selection.Validation.String(),
		entry.Result.Accuracy,
		string(matrix),
		entry.Result.EvaluationTime,
		entry.Result.TrainingTime,
		entry.Result.File,
		entry.Result.NumAttributes,
		entry.Result.NumClasses,
		entry.Result.NumExamples,
	)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to insert run %s", entry.RunID)
	}
	return res.LastInsertId()
}

// ListRuns returns recorded runs in completion order, oldest first. With
// filter.Last set, only the most recent Last runs are returned.
func (s *Store) ListRuns(ctx context.Context, filter model.HistoryFilter) ([]model.HistoryEntry, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Dataset != nil {
		clauses = append(clauses, "dataset = ?")
		args = append(args, filter.Dataset.String())
	}
	limit := ""
	if filter.Last > 0 {
		limit = "LIMIT ?"
		args = append(args, filter.Last)
	}
	query := fmt.Sprintf(`SELECT id, run_id, completed_at, dataset, validation, accuracy, confusion_matrix,
			evaluation_time, training_time, file, num_attributes, num_classes, num_examples
		FROM runs
		WHERE %s
		ORDER BY completed_at DESC, id DESC
		%s`, strings.Join(clauses, " AND "), limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query runs")
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.HistoryEntry
	for rows.Next() {
		entry, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read runs")
	}
	slices.Reverse(entries)
	return entries, nil
}

func scanRun(rows *sql.Rows) (model.HistoryEntry, error) {
	var (
		entry                          model.HistoryEntry
		completedAt                    int64
		dataset, valType               string
		matrixJSON, file               string
		accuracy, evalTime, trainTime  float64
		numAttrs, numClasses, numExamp int
	)
	if err := rows.Scan(&entry.ID, &entry.RunID, &completedAt, &dataset, &valType, &accuracy, &matrixJSON,
		&evalTime, &trainTime, &file, &numAttrs, &numClasses, &numExamp); err != nil {
		return model.HistoryEntry{}, errors.Wrap(err, "failed to scan run")
	}
	var err error
	if entry.Selection.Dataset, err = model.ParseDataset(dataset); err != nil {
		return model.HistoryEntry{}, errors.Wrapf(err, "run %s", entry.RunID)
	}
	if entry.Selection.Validation, err = model.ParseValidationType(valType); err != nil {
		return model.HistoryEntry{}, errors.Wrapf(err, "run %s", entry.RunID)
	}
	var matrix [][]int
	if err := json.Unmarshal([]byte(matrixJSON), &matrix); err != nil {
		return model.HistoryEntry{}, errors.Wrapf(err, "run %s has bad confusion matrix", entry.RunID)
	}
	entry.CompletedAt = time.Unix(0, completedAt)
	entry.Result = model.NewEvaluationResult(accuracy, matrix, evalTime, trainTime, file, numAttrs, numClasses, numExamp)
	return entry, nil
}
