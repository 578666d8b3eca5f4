package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/sgw-sniper/internal/shopgoodwill"
)

func newEncryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt VALUE",
		Short: "Print the site-encrypted form of a credential, for encrypted_username/encrypted_password config fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(os.Stdout, shopgoodwill.EncryptLoginValue(args[0]))
			return nil
		},
	}
}
