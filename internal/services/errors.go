package services

import (
	"errors"
	"fmt"
)

var (
	// ErrFatalInput aborts a scoring request. Only errors matching it leave the pipeline.
	ErrFatalInput = errors.New("fatal input error")
	// ErrDegradedStage marks a stage whose failure was replaced by a default value.
	ErrDegradedStage = errors.New("degraded stage")
	ErrCacheIO       = errors.New("cache io error")

	ErrGeneration          = errors.New("generation failed")
	ErrParse               = errors.New("unparseable response")
	ErrEvaluation          = errors.New("candidate evaluation failed")
	ErrUnsupportedDocument = errors.New("unsupported document type")
	ErrEmptyDocument       = errors.New("no text content found in document")
	ErrVerificationFailed  = errors.New("all profile verifications failed")
)

type StageError struct {
	Stage string
	Fatal bool
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func (e *StageError) Is(target error) bool {
	if e.Fatal {
		return target == ErrFatalInput
	}
	return target == ErrDegradedStage
}
