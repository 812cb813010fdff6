// Package evalclient sends evaluation requests to the classification backend.
package evalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/nbeval/internal/logging"
	"github.com/verte-zerg/nbeval/internal/model"
)

// Endpoint is the fixed evaluation endpoint of the backend.
const Endpoint = "http://127.0.0.1:5000/predict"

// Client issues evaluation requests. It never retries and sets no timeout
// of its own.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        logrus.FieldLogger
}

type requestBody struct {
	Dataset        model.Dataset        `json:"dataset"`
	PredictionType model.ValidationType `json:"prediction_type"`
}

type responseBody struct {
	Accuracy           *float64 `json:"accuracy"`
	ConfusionMatrix    [][]int  `json:"confusion_matrix"`
	EvaluationTime     *float64 `json:"evaluation_time"`
	TrainingTime       *float64 `json:"training_time"`
	File               *string  `json:"file"`
	NumberOfAttributes *int     `json:"number_of_attributes"`
	NumberOfClasses    *int     `json:"number_of_classes"`
	NumberOfExamples   *int     `json:"number_of_examples"`
}

// New returns a client for the fixed backend endpoint.
func New(log logrus.FieldLogger) *Client {
	return NewClient(Endpoint, &http.Client{}, log)
}

// NewClient returns a client for an arbitrary endpoint.
func NewClient(endpoint string, httpClient *http.Client, log logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Client{endpoint: endpoint, httpClient: httpClient, log: log}
}

// Submit sends one evaluation request for sel and decodes the result.
// sel is taken by value, so later changes on the caller side do not affect
// the request body.
//
// Failures are *HTTPError, *NetworkError or *ParseError.
func (c *Client) Submit(ctx context.Context, sel model.Selection) (model.EvaluationResult, error) {
	if !sel.Dataset.Valid() || !sel.Validation.Valid() {
		return model.EvaluationResult{}, errors.Wrapf(ErrInvalidSelection, "%v/%v", sel.Dataset, sel.Validation)
	}
	payload, err := json.Marshal(requestBody{Dataset: sel.Dataset, PredictionType: sel.Validation})
	if err != nil {
		return model.EvaluationResult{}, errors.Wrap(err, "failed to encode request")
	}
	log := c.log.WithFields(logrus.Fields{
		"dataset":    sel.Dataset.String(),
		"validation": sel.Validation.String(),
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return model.EvaluationResult{}, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug("sending evaluation request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.EvaluationResult{}, &NetworkError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return model.EvaluationResult{}, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.EvaluationResult{}, &NetworkError{Err: errors.Wrap(err, "failed to read response")}
	}
	result, err := decodeResult(data)
	if err != nil {
		return model.EvaluationResult{}, &ParseError{Err: err}
	}
	log.WithField("accuracy", result.Accuracy).Debug("evaluation response decoded")
	return result, nil
}

func decodeResult(data []byte) (model.EvaluationResult, error) {
	var body responseBody
	if err := json.Unmarshal(data, &body); err != nil {
		return model.EvaluationResult{}, errors.Wrap(err, "invalid json")
	}
	missing := body.missingFields()
	if len(missing) > 0 {
		return model.EvaluationResult{}, errors.Errorf("missing fields %v", missing)
	}
	return model.NewEvaluationResult(
		*body.Accuracy,
		body.ConfusionMatrix,
		*body.EvaluationTime,
		*body.TrainingTime,
		*body.File,
		*body.NumberOfAttributes,
		*body.NumberOfClasses,
		*body.NumberOfExamples,
	), nil
}

func (b responseBody) missingFields() []string {
	var missing []string
	if b.Accuracy == nil {
		missing = append(missing, "accuracy")
	}
	if b.ConfusionMatrix == nil {
		missing = append(missing, "confusion_matrix")
	}
	if b.EvaluationTime == nil {
		missing = append(missing, "evaluation_time")
	}
	if b.TrainingTime == nil {
		missing = append(missing, "training_time")
	}
	if b.File == nil {
		missing = append(missing, "file")
	}
	if b.NumberOfAttributes == nil {
		missing = append(missing, "number_of_attributes")
	}
	if b.NumberOfClasses == nil {
		missing = append(missing, "number_of_classes")
	}
	if b.NumberOfExamples == nil {
		missing = append(missing, "number_of_examples")
	}
	return missing
}
