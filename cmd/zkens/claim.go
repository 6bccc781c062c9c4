package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClaimCmd(a *app) *cobra.Command {
	var (
		f        artifactFlags
		dkimPk   string
		address  string
		resolver string
	)
	cmd := &cobra.Command{
		Use:   "claim <email>",
		Short: "Check that a proof authorizes claiming an ENS name for address with resolver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.load(&f)
			if err != nil {
				return err
			}
			err = a.validator().ValidateDirect(cmd.Context(), data.Key, data.Proof, data.Inputs,
				args[0], address, resolver, dkimPk)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Claim is valid")
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&dkimPk, "dkim-pk", "d", "", "hex encoded hash of the DKIM public key")
	cmd.Flags().StringVarP(&address, "address", "a", "", "address the name is claimed for")
	cmd.Flags().StringVarP(&resolver, "resolver", "r", "", "resolver of the name")
	_ = cmd.MarkFlagRequired("dkim-pk")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("resolver")
	return cmd
}
