package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kebairia/repobak/internal/operations"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Download an archive of every selected repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		om, err := operations.NewOperationManager(cmd.Context(), cfg, operations.WithLogger(log))
		if err != nil {
			return err
		}

		report, err := om.BackupAll(cmd.Context())
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), report)

		if cfg.Backup.FailOnError && report.Failed > 0 {
			return fmt.Errorf("%d of %d repositories failed: %w", report.Failed, report.TotalFiltered, report.Err())
		}
		return nil
	},
}

func init() {
	addAccountFlags(backupCmd)
	backupCmd.Flags().StringP("directory", "d", "", "destination directory (default ./GitRepoBackups-<username>)")
	backupCmd.Flags().IntP("concurrent", "c", 10, "maximum simultaneous downloads (1-10)")
	backupCmd.Flags().Bool("compress", false, "compress each archive with zstd after download")
	backupCmd.Flags().Bool("fail-on-error", false, "exit non-zero when any repository fails")
}
