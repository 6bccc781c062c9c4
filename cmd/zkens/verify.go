package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVerifyCmd(a *app) *cobra.Command {
	var f artifactFlags
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a proof against its public inputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.load(&f)
			if err != nil {
				return err
			}
			if err := a.validator().VerifyProof(cmd.Context(), data.Key, data.Proof, data.Inputs); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Proof is valid")
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
