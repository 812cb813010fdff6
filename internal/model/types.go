// Package model defines shared data structures.
package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnknownDataset is returned for dataset names outside the known set.
	ErrUnknownDataset = errors.New("unknown dataset")
	// ErrUnknownValidationType is returned for validation names outside the known set.
	ErrUnknownValidationType = errors.New("unknown validation type")
)

// Dataset identifies a data source evaluated by the backend.
type Dataset int

// Known datasets. The zero value is the default.
const (
	DatasetIris Dataset = iota
	DatasetBanknote
)

// Datasets lists every dataset in display order.
var Datasets = []Dataset{DatasetIris, DatasetBanknote}

// ParseDataset converts a wire name into a Dataset.
func ParseDataset(name string) (Dataset, error) {
	switch name {
	case "iris":
		return DatasetIris, nil
	case "banknote":
		return DatasetBanknote, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
}

// Valid reports whether d is one of the known datasets.
func (d Dataset) Valid() bool {
	return d == DatasetIris || d == DatasetBanknote
}

// String returns the wire name.
func (d Dataset) String() string {
	switch d {
	case DatasetIris:
		return "iris"
	case DatasetBanknote:
		return "banknote"
	}
	return fmt.Sprintf("Dataset(%d)", int(d))
}

// Label returns the human-readable name shown on controls.
func (d Dataset) Label() string {
	switch d {
	case DatasetIris:
		return "Iris Dataset"
	case DatasetBanknote:
		return "Banknote Dataset"
	}
	return d.String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Dataset) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDataset, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Dataset) UnmarshalText(text []byte) error {
	parsed, err := ParseDataset(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ValidationType selects the evaluation protocol.
type ValidationType int

// Known validation types. The zero value is the default.
const (
	ValidationStandard ValidationType = iota
	ValidationCrossVal
)

// ValidationTypes lists every validation type in display order.
var ValidationTypes = []ValidationType{ValidationStandard, ValidationCrossVal}

// ParseValidationType converts a wire name into a ValidationType.
func ParseValidationType(name string) (ValidationType, error) {
	switch name {
	case "standard":
		return ValidationStandard, nil
	case "crossval":
		return ValidationCrossVal, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownValidationType, name)
}

// Valid reports whether v is one of the known validation types.
func (v ValidationType) Valid() bool {
	return v == ValidationStandard || v == ValidationCrossVal
}

// String returns the wire name.
func (v ValidationType) String() string {
	switch v {
	case ValidationStandard:
		return "standard"
	case ValidationCrossVal:
		return "crossval"
	}
	return fmt.Sprintf("ValidationType(%d)", int(v))
}

// Label returns the human-readable name shown on controls.
func (v ValidationType) Label() string {
	switch v {
	case ValidationStandard:
		return "Standard Validation"
	case ValidationCrossVal:
		return "5-Fold Cross Validation"
	}
	return v.String()
}

// MarshalText implements encoding.TextMarshaler.
func (v ValidationType) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownValidationType, int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *ValidationType) UnmarshalText(text []byte) error {
	parsed, err := ParseValidationType(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Selection holds the two user-chosen evaluation parameters.
// It is a plain value; copies are independent snapshots.
type Selection struct {
	Dataset    Dataset
	Validation ValidationType
}

// DefaultSelection returns the selection a new session starts with.
func DefaultSelection() Selection {
	return Selection{Dataset: DatasetIris, Validation: ValidationStandard}
}

// EvaluationResult is a completed evaluation returned by the backend.
type EvaluationResult struct {
	Accuracy        float64
	confusionMatrix [][]int
	EvaluationTime  float64
	TrainingTime    float64
	File            string
	NumAttributes   int
	NumClasses      int
	NumExamples     int
}

// NewEvaluationResult builds a result that owns its own copy of matrix.
func NewEvaluationResult(accuracy float64, matrix [][]int, evalTime, trainTime float64, file string, attrs, classes, examples int) EvaluationResult {
	return EvaluationResult{
		Accuracy:        accuracy,
		confusionMatrix: copyMatrix(matrix),
		EvaluationTime:  evalTime,
		TrainingTime:    trainTime,
		File:            file,
		NumAttributes:   attrs,
		NumClasses:      classes,
		NumExamples:     examples,
	}
}

// Matrix returns a copy of the confusion matrix as received.
// Rows may differ in length if the backend sent a malformed matrix.
func (r EvaluationResult) Matrix() [][]int {
	return copyMatrix(r.confusionMatrix)
}

func copyMatrix(m [][]int) [][]int {
	if m == nil {
		return nil
	}
	out := make([][]int, len(m))
	for i, row := range m {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// HistoryEntry is a successful evaluation recorded by the history store.
type HistoryEntry struct {
	ID          int64
	RunID       string
	CompletedAt time.Time
	Selection   Selection
	Result      EvaluationResult
}

// HistoryFilter narrows history listings.
type HistoryFilter struct {
	Dataset *Dataset
	Last    int
}
