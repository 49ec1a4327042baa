package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kebairia/repobak/internal/config"
	"github.com/kebairia/repobak/internal/logger"
)

var (
	// ConfigFile is the path to the optional YAML configuration.
	ConfigFile string

	// cfg is loaded once per invocation by the root pre-run hook.
	cfg config.Config
	log logger.Logger = logger.Nop()

	// rootCmd is the base command for repobak.
	rootCmd = &cobra.Command{
		Use:   "repobak",
		Short: "Back up every repository of a hosting account as zip archives",
		Long: `repobak lists the repositories an account owns on a code hosting site,
filters them and downloads a zip archive of each default branch, several
at a time.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(*cobra.Command, []string) { logger.Cleanup() },
	}
)

// Execute runs the root command. Interrupts cancel the running operation;
// downloads already in flight are abandoned and the rest never start.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := cfg.Load(ConfigFile, cmd.Flags()); err != nil {
		return err
	}
	l, err := logger.Init(cfg.LogLevel)
	if err != nil {
		return err
	}
	log = l
	return nil
}

// addAccountFlags registers the flags every subcommand talking to the
// hosting site shares.
func addAccountFlags(c *cobra.Command) {
	c.Flags().StringP("username", "u", "", "account whose repositories are backed up (required)")
	c.Flags().StringP("site", "s", "github", "code hosting site")
	c.Flags().StringP("token", "t", "", "access token; private repositories need one")
	c.Flags().BoolP("private-only", "p", false, "only select private repositories")
	c.Flags().BoolP("include-archived", "a", true, "also select archived repositories")
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&ConfigFile, "config", "f", "", "path to YAML config file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(verifyCmd)
}
