// Package report reads collection input files and writes ranked output
// reports.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput marks an input file that cannot drive a run.
var ErrInvalidInput = errors.New("invalid collection input")

// ChallengeInfo identifies the test case a collection belongs to.
type ChallengeInfo struct {
	ChallengeID  string `json:"challenge_id"`
	TestCaseName string `json:"test_case_name"`
	Description  string `json:"description,omitempty"`
}

// DocumentRef names one source document of a collection.
type DocumentRef struct {
	Filename string `json:"filename" validate:"required"`
	Title    string `json:"title"`
}

// Persona is the role the ranking is done for.
type Persona struct {
	Role string `json:"role" validate:"required"`
}

// Job is the task the persona needs done.
type Job struct {
	Task string `json:"task" validate:"required"`
}

// Input is the content of a collection's input file.
type Input struct {
	ChallengeInfo ChallengeInfo `json:"challenge_info"`
	Documents     []DocumentRef `json:"documents" validate:"dive"`
	Persona       Persona       `json:"persona"`
	JobToBeDone   Job           `json:"job_to_be_done"`
}

// ReadInput decodes and validates an input file.
func ReadInput(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", path, err)
	}
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidInput, path, err)
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &in, nil
}

// Validate checks required fields. Failures wrap ErrInvalidInput and a
// *ValidationError listing every offending field.
func (in *Input) Validate() error {
	err := validator.New().Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	ve := &ValidationError{Errors: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   fe.Namespace(),
			Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
		})
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, ve)
}

