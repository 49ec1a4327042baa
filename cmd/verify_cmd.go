package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kebairia/repobak/internal/backup"
	"github.com/kebairia/repobak/internal/operations"
	"github.com/kebairia/repobak/internal/storage"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the archives recorded in a backup directory",
	Long: `verify reads metadata.json from a backup directory and checks that every
archive recorded as backed up exists, has the recorded size and opens as
a valid zip.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Backup.OutputDirectory
		if dir == "" {
			if cfg.Account == "" {
				return fmt.Errorf("either --directory or --username is required")
			}
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			dir = backup.ResolveDestination("", cfg.Account, cwd)
		}

		summary, err := operations.VerifyAll(storage.NewOS(), dir, log)
		if err != nil {
			return err
		}
		printVerify(cmd.OutOrStdout(), summary)

		if summary.Problems > 0 {
			return fmt.Errorf("%d archives failed verification", summary.Problems)
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringP("username", "u", "", "account the backup belongs to")
	verifyCmd.Flags().StringP("directory", "d", "", "backup directory (default ./GitRepoBackups-<username>)")
}
