package claim

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/zkens/go-ens-claim/command"
	"github.com/zkens/go-ens-claim/field"
	"github.com/zkens/go-ens-claim/inputs"
)

// Kinds of claim failures. Use errors.Is to tell them apart.
var (
	// ErrMalformedInput public input vector does not match the layout length
	ErrMalformedInput = inputs.ErrMalformedInput
	// ErrRange named field reaches past the end of the public inputs
	ErrRange = inputs.ErrRange
	// ErrEncoding field element can not be decoded
	ErrEncoding = field.ErrEncoding
	// ErrInvalidCommand command text does not follow the claim grammar
	ErrInvalidCommand = command.ErrInvalidCommand

	// ErrEmailMismatch email committed by the proof differs from the expected one
	ErrEmailMismatch = errors.New("email mismatch")
	// ErrCommandMismatch command committed by the proof differs from the expected one
	ErrCommandMismatch = errors.New("command mismatch")
	// ErrPubkeyHashMismatch DKIM public key hash differs from the expected one
	ErrPubkeyHashMismatch = errors.New("dkim public key hash mismatch")
	// ErrProofRejected proof was checked and is not valid
	ErrProofRejected = errors.New("proof rejected")
	// ErrVerification proof could not be checked
	ErrVerification = errors.New("proof verification failed")
)

// Error is returned by every failed claim validation.
type Error struct {
	// Kind is one of the Err* values of this package.
	Kind error
	// Stage is the last stage the pipeline completed before failing.
	Stage    Stage
	Field    string
	Expected string
	Actual   string
	Cause    error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Expected != "" || e.Actual != "" {
		msg += fmt.Sprintf(": expected %q, got %q", e.Expected, e.Actual)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// decodeError classifies a failure to read public inputs. Layout faults
// reported by the inputs package keep their cause, e.g. inputs.ErrFieldKind.
func decodeError(stage Stage, name string, err error) *Error {
	kind := ErrMalformedInput
	switch {
	case errors.Is(err, inputs.ErrRange):
		kind = ErrRange
	case errors.Is(err, field.ErrEncoding), errors.Is(err, field.ErrNotInField):
		kind = ErrEncoding
	}
	return &Error{Kind: kind, Stage: stage, Field: name, Cause: err}
}
