// Package claim checks that a zero-knowledge email proof authorizes an ENS
// name claim. The decoded public inputs are compared with the caller's
// expectations in a fixed order and only then the proof itself is verified.
package claim

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/zkens/go-ens-claim/command"
	"github.com/zkens/go-ens-claim/field"
	"github.com/zkens/go-ens-claim/inputs"
	"github.com/zkens/go-ens-claim/verification"
	"go.uber.org/zap"
)

// Stage of the validation pipeline.
type Stage int

const (
	StageStart Stage = iota
	StageEmailChecked
	StageCommandChecked
	StagePubkeyChecked
	StageProofVerified
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageEmailChecked:
		return "email_checked"
	case StageCommandChecked:
		return "command_checked"
	case StagePubkeyChecked:
		return "pubkey_checked"
	case StageProofVerified:
		return "proof_verified"
	default:
		return "unknown"
	}
}

// Validator validates claims. It holds no per-call state and is safe for
// concurrent use.
type Validator struct {
	verifier verification.Verifier
	log      *zap.Logger
	layout   *inputs.Layout
	policy   *field.NulPolicy
}

// Option configures a Validator.
type Option func(v *Validator)

// WithLogger sets the logger. Nothing is logged by default.
func WithLogger(l *zap.Logger) Option {
	return func(v *Validator) {
		v.log = l
	}
}

// WithVerifier replaces the groth16 verifier.
func WithVerifier(vf verification.Verifier) Option {
	return func(v *Validator) {
		v.verifier = vf
	}
}

// WithLayout decodes public inputs with l instead of the layout of the view.
func WithLayout(l inputs.Layout) Option {
	return func(v *Validator) {
		v.layout = &l
	}
}

// WithNulPolicy decodes text fields with p instead of the policy of the view.
func WithNulPolicy(p field.NulPolicy) Option {
	return func(v *Validator) {
		v.policy = &p
	}
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		verifier: verification.Groth16Verifier{},
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// check is one comparison of the pipeline. stage is reached when it passes.
type check struct {
	stage Stage
	run   func(view *inputs.View, from Stage) *Error
}

// ValidateDirect checks that the proof commits to email, to the claim of
// address with resolver and to the DKIM key with hash dkimPubkeyHash (lowercase
// hex), then verifies the proof.
func (v *Validator) ValidateDirect(ctx context.Context, vk *verification.VerifyingKey, proof *verification.Proof,
	view *inputs.View, email, address, resolver, dkimPubkeyHash string) error {

	log := v.log.With(zap.String("mode", "direct"))
	return v.run(ctx, log, vk, proof, view,
		emailCheck(email),
		commandCheck(command.Compose(address, resolver)),
		pubkeyHashCheck(dkimPubkeyHash),
	)
}

// ValidateFromCommand parses commandText and validates the claim it
// describes like ValidateDirect.
func (v *Validator) ValidateFromCommand(ctx context.Context, vk *verification.VerifyingKey, proof *verification.Proof,
	view *inputs.View, email, commandText, dkimPubkeyHash string) error {

	action, err := command.Parse(commandText)
	if err != nil {
		e := &Error{Kind: ErrInvalidCommand, Stage: StageStart, Field: inputs.FieldCommand, Actual: commandText, Cause: err}
		v.log.Warn("claim rejected", zap.String("mode", "command"), zap.Error(e))
		return e
	}

	log := v.log.With(zap.String("mode", "command"),
		zap.String("address", action.Address), zap.String("resolver", action.Resolver))
	return v.run(ctx, log, vk, proof, view,
		emailCheck(email),
		commandCheck(action.String()),
		pubkeyHashCheck(dkimPubkeyHash),
	)
}

// VerifyProof only verifies the proof against the public inputs.
func (v *Validator) VerifyProof(ctx context.Context, vk *verification.VerifyingKey, proof *verification.Proof,
	view *inputs.View) error {

	return v.run(ctx, v.log.With(zap.String("mode", "proof")), vk, proof, view)
}

func (v *Validator) run(ctx context.Context, log *zap.Logger, vk *verification.VerifyingKey,
	proof *verification.Proof, view *inputs.View, checks ...check) error {

	view, err := v.bind(view)
	if err != nil {
		return v.reject(log, decodeError(StageStart, "", err))
	}

	stage := StageStart
	for _, c := range checks {
		if e := c.run(view, stage); e != nil {
			return v.reject(log, e)
		}
		stage = c.stage
		log.Debug("claim check passed", zap.Stringer("stage", stage))
	}

	ok, err := v.verifier.Verify(ctx, vk, view.Signals(), proof)
	if err != nil {
		return v.reject(log, &Error{Kind: ErrVerification, Stage: stage, Cause: err})
	}
	if !ok {
		return v.reject(log, &Error{Kind: ErrProofRejected, Stage: stage})
	}

	log.Info("claim accepted", zap.Stringer("stage", StageProofVerified))
	return nil
}

func (v *Validator) reject(log *zap.Logger, e *Error) error {
	log.Warn("claim rejected", zap.Stringer("stage", e.Stage), zap.Error(e))
	return e
}

// bind applies the validator layout and padding policy to view. The layout
// is checked against the vector before any field is read.
func (v *Validator) bind(view *inputs.View) (*inputs.View, error) {
	if view == nil {
		return nil, errors.Wrap(inputs.ErrMalformedInput, "public inputs are nil")
	}
	if v.layout == nil && v.policy == nil {
		return view, nil
	}
	layout := view.Layout()
	if v.layout != nil {
		layout = *v.layout
	}
	policy := view.NulPolicy()
	if v.policy != nil {
		policy = *v.policy
	}
	return inputs.NewView(view.Signals(), layout, inputs.WithNulPolicy(policy))
}

func emailCheck(expected string) check {
	return check{stage: StageEmailChecked, run: func(view *inputs.View, from Stage) *Error {
		actual, err := view.Email()
		if err != nil {
			return decodeError(from, inputs.FieldEmail, err)
		}
		if actual != expected {
			return &Error{Kind: ErrEmailMismatch, Stage: from, Field: inputs.FieldEmail, Expected: expected, Actual: actual}
		}
		return nil
	}}
}

func commandCheck(expected string) check {
	return check{stage: StageCommandChecked, run: func(view *inputs.View, from Stage) *Error {
		actual, err := view.Command()
		if err != nil {
			return decodeError(from, inputs.FieldCommand, err)
		}
		if actual != expected {
			return &Error{Kind: ErrCommandMismatch, Stage: from, Field: inputs.FieldCommand, Expected: expected, Actual: actual}
		}
		return nil
	}}
}

func pubkeyHashCheck(expected string) check {
	return check{stage: StagePubkeyChecked, run: func(view *inputs.View, from Stage) *Error {
		b, err := view.PubkeyHash()
		if err != nil {
			return decodeError(from, inputs.FieldPubkeyHash, err)
		}
		if actual := common.Bytes2Hex(b); actual != expected {
			return &Error{Kind: ErrPubkeyHashMismatch, Stage: from, Field: inputs.FieldPubkeyHash, Expected: expected, Actual: actual}
		}
		return nil
	}}
}

// ValidateDirect validates a claim with a Validator built from opts.
func ValidateDirect(ctx context.Context, vk *verification.VerifyingKey, proof *verification.Proof,
	view *inputs.View, email, address, resolver, dkimPubkeyHash string, opts ...Option) error {
	return New(opts...).ValidateDirect(ctx, vk, proof, view, email, address, resolver, dkimPubkeyHash)
}

// ValidateFromCommand validates a claim command with a Validator built from opts.
func ValidateFromCommand(ctx context.Context, vk *verification.VerifyingKey, proof *verification.Proof,
	view *inputs.View, email, commandText, dkimPubkeyHash string, opts ...Option) error {
	return New(opts...).ValidateFromCommand(ctx, vk, proof, view, email, commandText, dkimPubkeyHash)
}

// VerifyProof verifies a proof with a Validator built from opts.
func VerifyProof(ctx context.Context, vk *verification.VerifyingKey, proof *verification.Proof,
	view *inputs.View, opts ...Option) error {
	return New(opts...).VerifyProof(ctx, vk, proof, view)
}
