package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/kebairia/repobak/internal/operations"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the account's repositories and which ones a backup would select",
	RunE: func(cmd *cobra.Command, args []string) error {
		om, err := operations.NewOperationManager(cmd.Context(), cfg, operations.WithLogger(log))
		if err != nil {
			return err
		}

		repos, summary, err := om.ListRepositories(cmd.Context())
		if err != nil {
			return err
		}

		if listJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(repos)
		}
		printRepositories(cmd.OutOrStdout(), repos, summary)
		return nil
	},
}

func init() {
	addAccountFlags(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}
