package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dsimansk/syndesis-rest/pkg/log"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "gitpublish",
	Short: "Publish generated project files to git repositories",
	Long: `gitpublish materializes a directory of generated project files as a
commit on a remote git repository and force-pushes it.

Two modes are available:

  create  initializes an empty repository from the files and pushes it,
          overwriting any history on the remote ref
  update  clones the existing remote first, so files not named in the
          source directory are carried along unchanged

Pushes are always forced: the last writer wins and no conflict
detection is performed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return log.Init(log.Config{Level: log.Level(logLevel), Format: logFormat})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console",
		"Log format (console, json)")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
