package main

import (
	"cleanfiles/internal/config"
	"cleanfiles/internal/log"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cleanfiles",
		Short: "A rule-driven directory cleanup tool",
		Long: `Cleanfiles classifies the files of one or more target directories against
an ordered rule list (extension globs, age, size, emptiness, temp suffixes,
duplicate content) and applies the first matching rule's action: delete,
move, rename, chmod, or skip.

Rules are read from an ini or YAML configuration file (default:
./clean_files.ini) and evaluated in configuration order; the first matching
rule wins and no later rule is considered for that file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetDebug(verbose)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./clean_files.ini)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")

	rootCmd.AddCommand(NewCleanCmd())
	rootCmd.AddCommand(NewRulesCmd())
	rootCmd.AddCommand(NewWatchCmd())

	return rootCmd
}

// loadConfig loads the configuration from --config or the default path.
// A missing or malformed configuration is fatal: the run aborts before any
// file is touched.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath
	}
	return config.LoadConfigFile(path)
}
