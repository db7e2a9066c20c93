package cmd

import (
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/spf13/cobra"
)

func newGenSecretCmd() *cobra.Command {
	var size int

	c := &cobra.Command{
		Use:   "gen-secret",
		Short: "Print a random hex secret suitable for JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if size < 16 {
				return fmt.Errorf("secret must be at least 16 bytes, got %d", size)
			}
			s, err := common.MakeRandHexString(size)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	c.Flags().IntVarP(&size, "bytes", "n", 32, "number of random bytes")

	return c
}
