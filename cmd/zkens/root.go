package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	claim "github.com/zkens/go-ens-claim"
	"github.com/zkens/go-ens-claim/field"
	"github.com/zkens/go-ens-claim/inputs"
	"github.com/zkens/go-ens-claim/internal/logging"
	"github.com/zkens/go-ens-claim/loaders"
	"go.uber.org/zap"
)

// app holds the state shared by all subcommands of one invocation.
type app struct {
	logLevel  string
	logFormat string
	layout    string
	nulPolicy string

	log  *zap.Logger
	keys *loaders.CachedKeyLoader
}

// artifactFlags are the paths of the snarkjs files of a proof.
type artifactFlags struct {
	verificationKey string
	proof           string
	inputs          string
}

func (f *artifactFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.verificationKey, "verification-key", "v", "", "path of the verification key json file")
	cmd.Flags().StringVarP(&f.proof, "proof", "p", "", "path of the proof json file")
	cmd.Flags().StringVarP(&f.inputs, "inp", "i", "", "path of the public inputs json file")
	_ = cmd.MarkFlagRequired("verification-key")
	_ = cmd.MarkFlagRequired("proof")
	_ = cmd.MarkFlagRequired("inp")
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "zkens",
		Short:         "CLI for verifying zk email proofs of ENS name claims",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(a.logLevel, a.logFormat)
			if err != nil {
				return err
			}
			a.log = log.With(zap.String("request_id", uuid.NewString()), zap.String("cmd", cmd.Name()))
			a.keys = loaders.NewCachedKeyLoader()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", logging.EncodingConsole, "log encoding (console, json)")
	rootCmd.PersistentFlags().StringVar(&a.layout, "layout", inputs.ENSClaimV1, "public inputs layout version")
	rootCmd.PersistentFlags().StringVar(&a.nulPolicy, "nul-policy", field.TrimTrailingNul.String(),
		"padding removal for text fields (trim-trailing, strip-all)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(newVerifyCmd(a), newClaimCmd(a), newCommandCmd(a))
	return rootCmd
}

// load reads the artifacts named by f.
func (a *app) load(f *artifactFlags) (*loaders.VerificationData, error) {
	layout, err := inputs.GetLayout(a.layout)
	if err != nil {
		return nil, err
	}
	policy, err := field.ParseNulPolicy(a.nulPolicy)
	if err != nil {
		return nil, err
	}
	data, err := loaders.LoadVerificationData(a.keys, f.verificationKey, f.proof, f.inputs,
		layout, inputs.WithNulPolicy(policy))
	if err != nil {
		return nil, err
	}
	a.log.Debug("artifacts loaded",
		zap.String("verification_key", f.verificationKey),
		zap.String("proof", f.proof),
		zap.String("inputs", f.inputs),
		zap.Int("public_inputs", data.Inputs.Len()))
	return data, nil
}

func (a *app) validator() *claim.Validator {
	return claim.New(claim.WithLogger(a.log))
}

// Exit statuses per failure kind.
const (
	exitOK = iota
	exitFailure
	exitMalformedInput
	exitRange
	exitEncoding
	exitInvalidCommand
	exitEmailMismatch
	exitCommandMismatch
	exitPubkeyHashMismatch
	exitProofRejected
	exitVerification
)

var exitCodes = []struct {
	kind error
	code int
}{
	{claim.ErrEmailMismatch, exitEmailMismatch},
	{claim.ErrCommandMismatch, exitCommandMismatch},
	{claim.ErrPubkeyHashMismatch, exitPubkeyHashMismatch},
	{claim.ErrProofRejected, exitProofRejected},
	{claim.ErrVerification, exitVerification},
	{claim.ErrInvalidCommand, exitInvalidCommand},
	{claim.ErrRange, exitRange},
	{claim.ErrEncoding, exitEncoding},
	{field.ErrNotInField, exitMalformedInput},
	{claim.ErrMalformedInput, exitMalformedInput},
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	for _, c := range exitCodes {
		if errors.Is(err, c.kind) {
			return c.code
		}
	}
	return exitFailure
}

func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(&app{})
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}
