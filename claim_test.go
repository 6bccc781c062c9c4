package claim_test

import (
	"context"
	"math"
	"math/big"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	claim "github.com/zkens/go-ens-claim"
	"github.com/zkens/go-ens-claim/field"
	"github.com/zkens/go-ens-claim/inputs"
	"github.com/zkens/go-ens-claim/loaders"
	"github.com/zkens/go-ens-claim/verification"
	mock_verification "github.com/zkens/go-ens-claim/verification/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	email      = "thezdev1@gmail.com"
	address    = "0xafBD210c60dD651892a61804A989eEF7bD63CBA0"
	resolver   = "resolver.eth"
	pubkeyHash = "0ea9c777dc7110e5a9e89b13f0cfc540e3845ba120b2b6dc24024d61488d4788"
	commandStr = "Claim ENS name for address 0xafBD210c60dD651892a61804A989eEF7bD63CBA0 with resolver resolver.eth"
)

func fixture(t *testing.T) *loaders.VerificationData {
	t.Helper()
	keys := loaders.NewCachedKeyLoader(loaders.WithKeyLoader(loaders.FSKeyLoader{Dir: "testdata"}))
	data, err := loaders.LoadVerificationData(keys, "vkey", "testdata/proof.json",
		"testdata/public.json", inputs.DefaultLayout())
	require.NoError(t, err)
	return data
}

// withSignals returns a copy of view with the elements starting at offset replaced.
func withSignals(t *testing.T, view *inputs.View, offset int, elements ...*big.Int) *inputs.View {
	t.Helper()
	signals := view.Signals()
	copy(signals[offset:], elements)
	v, err := inputs.NewView(signals, view.Layout())
	require.NoError(t, err)
	return v
}

func TestValidateDirect(t *testing.T) {
	data := fixture(t)
	ctx := context.Background()

	invalidProof, err := loaders.LoadProof("testdata/proof_invalid.json")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		address  string
		resolver string
		hash     string
		proof    *verification.Proof
		wantErr  error
		stage    claim.Stage
	}{
		{
			name:     "valid claim",
			email:    email,
			address:  address,
			resolver: resolver,
			hash:     pubkeyHash,
		},
		{
			name:     "other resolver",
			email:    email,
			address:  address,
			resolver: "resolver2.eth",
			hash:     pubkeyHash,
			wantErr:  claim.ErrCommandMismatch,
			stage:    claim.StageEmailChecked,
		},
		{
			name:     "other address",
			email:    email,
			address:  "0xafBD210c60dD651892a61804A989eEF7bD63CBA1",
			resolver: resolver,
			hash:     pubkeyHash,
			wantErr:  claim.ErrCommandMismatch,
			stage:    claim.StageEmailChecked,
		},
		{
			name:     "address case differs",
			email:    email,
			address:  "0xafbd210c60dd651892a61804a989eef7bd63cba0",
			resolver: resolver,
			hash:     pubkeyHash,
			wantErr:  claim.ErrCommandMismatch,
			stage:    claim.StageEmailChecked,
		},
		{
			name:     "other email",
			email:    "someone@gmail.com",
			address:  address,
			resolver: resolver,
			hash:     pubkeyHash,
			wantErr:  claim.ErrEmailMismatch,
			stage:    claim.StageStart,
		},
		{
			name:     "email and command differ",
			email:    "someone@gmail.com",
			address:  address,
			resolver: "resolver2.eth",
			hash:     pubkeyHash,
			wantErr:  claim.ErrEmailMismatch,
			stage:    claim.StageStart,
		},
		{
			name:     "other pubkey hash",
			email:    email,
			address:  address,
			resolver: resolver,
			hash:     "1ea9c777dc7110e5a9e89b13f0cfc540e3845ba120b2b6dc24024d61488d4788",
			wantErr:  claim.ErrPubkeyHashMismatch,
			stage:    claim.StageCommandChecked,
		},
		{
			name:     "pubkey hash in upper case",
			email:    email,
			address:  address,
			resolver: resolver,
			hash:     "0EA9C777DC7110E5A9E89B13F0CFC540E3845BA120B2B6DC24024D61488D4788",
			wantErr:  claim.ErrPubkeyHashMismatch,
			stage:    claim.StageCommandChecked,
		},
		{
			name:     "invalid proof",
			email:    email,
			address:  address,
			resolver: resolver,
			hash:     pubkeyHash,
			proof:    invalidProof,
			wantErr:  claim.ErrProofRejected,
			stage:    claim.StagePubkeyChecked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proof := data.Proof
			if tt.proof != nil {
				proof = tt.proof
			}
			err := claim.ValidateDirect(ctx, data.Key, proof, data.Inputs, tt.email, tt.address, tt.resolver, tt.hash)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)

			var cerr *claim.Error
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.stage, cerr.Stage)
		})
	}
}

func TestValidateDirectMismatchDetails(t *testing.T) {
	data := fixture(t)

	err := claim.ValidateDirect(context.Background(), data.Key, data.Proof, data.Inputs,
		email, address, "resolver2.eth", pubkeyHash)

	var cerr *claim.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, inputs.FieldCommand, cerr.Field)
	assert.Equal(t, "Claim ENS name for address 0xafBD210c60dD651892a61804A989eEF7bD63CBA0 with resolver resolver2.eth", cerr.Expected)
	assert.Equal(t, commandStr, cerr.Actual)
	assert.Nil(t, cerr.Cause)
}

func TestValidateFromCommand(t *testing.T) {
	data := fixture(t)
	ctx := context.Background()

	err := claim.ValidateFromCommand(ctx, data.Key, data.Proof, data.Inputs, email, commandStr, pubkeyHash)
	require.NoError(t, err)

	err = claim.ValidateFromCommand(ctx, data.Key, data.Proof, data.Inputs, email, "Some wrong command", pubkeyHash)
	require.ErrorIs(t, err, claim.ErrInvalidCommand)

	err = claim.ValidateFromCommand(ctx, data.Key, data.Proof, data.Inputs, email,
		"Claim ENS name for address 0xafBD210c60dD651892a61804A989eEF7bD63CBA0 with resolver resolver2.eth", pubkeyHash)
	require.ErrorIs(t, err, claim.ErrCommandMismatch)

	err = claim.ValidateFromCommand(ctx, data.Key, data.Proof, data.Inputs, "x@gmail.com", commandStr, pubkeyHash)
	require.ErrorIs(t, err, claim.ErrEmailMismatch)
}

func TestInvalidCommandSkipsPipeline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	data := fixture(t)
	verifier := mock_verification.NewMockVerifier(ctrl)
	verifier.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	v := claim.New(claim.WithVerifier(verifier))
	err := v.ValidateFromCommand(context.Background(), data.Key, data.Proof, data.Inputs,
		email, commandStr+" ", pubkeyHash)
	require.ErrorIs(t, err, claim.ErrInvalidCommand)
}

func TestVerifierIsCalledLast(t *testing.T) {
	data := fixture(t)
	ctx := context.Background()

	t.Run("not called on mismatch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		verifier := mock_verification.NewMockVerifier(ctrl)
		verifier.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		v := claim.New(claim.WithVerifier(verifier))
		for _, hash := range []string{"", "00", pubkeyHash[1:]} {
			err := v.ValidateDirect(ctx, data.Key, data.Proof, data.Inputs, email, address, resolver, hash)
			require.ErrorIs(t, err, claim.ErrPubkeyHashMismatch)
		}
	})

	t.Run("called with the public inputs", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		verifier := mock_verification.NewMockVerifier(ctrl)
		verifier.EXPECT().
			Verify(gomock.Any(), data.Key, data.Inputs.Signals(), data.Proof).
			Return(true, nil).
			Times(1)

		v := claim.New(claim.WithVerifier(verifier))
		require.NoError(t, v.ValidateDirect(ctx, data.Key, data.Proof, data.Inputs, email, address, resolver, pubkeyHash))
	})

	t.Run("verifier failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		cause := errors.New("pairing exploded")
		verifier := mock_verification.NewMockVerifier(ctrl)
		verifier.EXPECT().
			Verify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(false, cause)

		v := claim.New(claim.WithVerifier(verifier))
		err := v.ValidateDirect(ctx, data.Key, data.Proof, data.Inputs, email, address, resolver, pubkeyHash)
		require.ErrorIs(t, err, claim.ErrVerification)
		require.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, claim.ErrProofRejected)
	})
}

func TestVerifyProof(t *testing.T) {
	data := fixture(t)
	ctx := context.Background()

	require.NoError(t, claim.VerifyProof(ctx, data.Key, data.Proof, data.Inputs))

	invalidProof, err := loaders.LoadProof("testdata/proof_invalid.json")
	require.NoError(t, err)
	err = claim.VerifyProof(ctx, data.Key, invalidProof, data.Inputs)
	require.ErrorIs(t, err, claim.ErrProofRejected)

	// a changed timestamp is not covered by the proof
	tampered := withSignals(t, data.Inputs, 11, big.NewInt(1718000001))
	err = claim.VerifyProof(ctx, data.Key, data.Proof, tampered)
	require.ErrorIs(t, err, claim.ErrProofRejected)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	err = claim.VerifyProof(canceled, data.Key, data.Proof, data.Inputs)
	require.ErrorIs(t, err, claim.ErrVerification)
	require.ErrorIs(t, err, context.Canceled)
}

func TestIdempotence(t *testing.T) {
	data := fixture(t)
	v := claim.New()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, v.ValidateDirect(ctx, data.Key, data.Proof, data.Inputs, email, address, resolver, pubkeyHash))
		err := v.ValidateDirect(ctx, data.Key, data.Proof, data.Inputs, email, address, "resolver2.eth", pubkeyHash)
		require.ErrorIs(t, err, claim.ErrCommandMismatch)
	}
}

func TestDecodeFailures(t *testing.T) {
	data := fixture(t)
	ctx := context.Background()

	t.Run("layout outside of vector", func(t *testing.T) {
		layout := inputs.DefaultLayout()
		layout.Version = "shifted"
		layout.Fields[inputs.FieldEmail] = inputs.FieldSpec{Offset: 55, Count: 9, Kind: inputs.KindText}

		err := claim.ValidateDirect(ctx, data.Key, data.Proof, data.Inputs, email, address, resolver, pubkeyHash,
			claim.WithLayout(layout))
		require.ErrorIs(t, err, claim.ErrRange)
	})

	t.Run("field range overflows", func(t *testing.T) {
		for _, spec := range []inputs.FieldSpec{
			{Offset: 51, Count: math.MaxInt, Kind: inputs.KindText},
			{Offset: math.MaxInt, Count: 9, Kind: inputs.KindText},
		} {
			layout := inputs.DefaultLayout()
			layout.Fields[inputs.FieldEmail] = spec

			err := claim.ValidateDirect(ctx, data.Key, data.Proof, data.Inputs, email, address, resolver, pubkeyHash,
				claim.WithLayout(layout))
			require.ErrorIs(t, err, claim.ErrRange)

			var cerr *claim.Error
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, claim.StageStart, cerr.Stage)
		}
	})

	t.Run("field read with wrong kind", func(t *testing.T) {
		layout := inputs.DefaultLayout()
		layout.Fields[inputs.FieldEmail] = inputs.FieldSpec{Offset: 51, Count: 1, Kind: inputs.KindBytes, Width: 32}

		err := claim.ValidateDirect(ctx, data.Key, data.Proof, data.Inputs, email, address, resolver, pubkeyHash,
			claim.WithLayout(layout))
		require.ErrorIs(t, err, claim.ErrMalformedInput)
		require.ErrorIs(t, err, inputs.ErrFieldKind)
	})

	t.Run("layout of other length", func(t *testing.T) {
		layout := inputs.DefaultLayout()
		layout.Length = 61

		err := claim.ValidateDirect(ctx, data.Key, data.Proof, data.Inputs, email, address, resolver, pubkeyHash,
			claim.WithLayout(layout))
		require.ErrorIs(t, err, claim.ErrMalformedInput)
	})

	t.Run("nil inputs", func(t *testing.T) {
		err := claim.VerifyProof(ctx, data.Key, data.Proof, nil)
		require.ErrorIs(t, err, claim.ErrMalformedInput)
	})

	t.Run("email element wider than 31 bytes", func(t *testing.T) {
		wide := new(big.Int).Lsh(big.NewInt(1), 250)
		view := withSignals(t, data.Inputs, 51, wide)

		err := claim.ValidateDirect(ctx, data.Key, data.Proof, view, email, address, resolver, pubkeyHash)
		require.ErrorIs(t, err, claim.ErrEncoding)
	})

	t.Run("email is not utf-8", func(t *testing.T) {
		view := withSignals(t, data.Inputs, 51, big.NewInt(0xff))

		err := claim.ValidateDirect(ctx, data.Key, data.Proof, view, email, address, resolver, pubkeyHash)
		require.ErrorIs(t, err, claim.ErrEncoding)
	})
}

func TestNulPolicy(t *testing.T) {
	data := fixture(t)
	ctx := context.Background()

	elements, err := field.EncodeTextFields([]byte("thezdev1@\x00gmail.com"), 9)
	require.NoError(t, err)
	view := withSignals(t, data.Inputs, 51, elements...)

	err = claim.ValidateDirect(ctx, data.Key, data.Proof, view, email, address, resolver, pubkeyHash)
	require.ErrorIs(t, err, claim.ErrEmailMismatch)

	// the email passes once every NUL is removed, the proof no longer matches the inputs
	err = claim.ValidateDirect(ctx, data.Key, data.Proof, view, email, address, resolver, pubkeyHash,
		claim.WithNulPolicy(field.StripAllNul))
	require.ErrorIs(t, err, claim.ErrProofRejected)
}

func TestLogging(t *testing.T) {
	data := fixture(t)
	core, logs := observer.New(zap.DebugLevel)
	v := claim.New(claim.WithLogger(zap.New(core)))
	ctx := context.Background()

	require.NoError(t, v.ValidateDirect(ctx, data.Key, data.Proof, data.Inputs, email, address, resolver, pubkeyHash))
	assert.Equal(t, 3, logs.FilterMessage("claim check passed").Len())
	assert.Equal(t, 1, logs.FilterMessage("claim accepted").Len())

	err := v.ValidateDirect(ctx, data.Key, data.Proof, data.Inputs, "a@b.c", address, resolver, pubkeyHash)
	require.Error(t, err)
	rejected := logs.FilterMessage("claim rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, "start", rejected[0].ContextMap()["stage"])
	assert.Equal(t, "direct", rejected[0].ContextMap()["mode"])
}
