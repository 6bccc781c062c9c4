package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zkens/go-ens-claim/command"
)

func newCommandCmd(a *app) *cobra.Command {
	var (
		f      artifactFlags
		dkimPk string
	)
	cmd := &cobra.Command{
		Use:   "command <email> <command>",
		Short: "Check that a proof authorizes the claim described by a command text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := command.Parse(args[1])
			if err != nil {
				return err
			}
			data, err := a.load(&f)
			if err != nil {
				return err
			}
			err = a.validator().ValidateFromCommand(cmd.Context(), data.Key, data.Proof, data.Inputs,
				args[0], args[1], dkimPk)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Claim is valid: %s for %s with resolver %s\n",
				action.HexAddress().Hex(), args[0], action.Resolver)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&dkimPk, "dkim-pk", "d", "", "hex encoded hash of the DKIM public key")
	_ = cmd.MarkFlagRequired("dkim-pk")
	return cmd
}
