package main

import (
	"fmt"

	"cleanfiles/internal/confirm"
	"cleanfiles/internal/engine"
	"cleanfiles/pkg/types"

	"github.com/spf13/cobra"
)

// NewCleanCmd creates the clean command, the main cleanup run.
func NewCleanCmd() *cobra.Command {
	var (
		dryRun    bool
		yes       bool
		recursive bool
	)

	cmd := &cobra.Command{
		Use:   "clean <directory> [directory...]",
		Short: "Classify and clean up files in the target directories",
		Long: `Clean evaluates every file of the target directories against the
configured rules in order and applies the first matching rule's action.
Files matching no rule are left untouched. A target directory that cannot
be read is reported and skipped; the remaining directories are still
processed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if recursive {
				for i := range cfg.Rules {
					cfg.Rules[i].Recursive = true
				}
			}

			eng, err := engine.NewWithConfig(cfg)
			if err != nil {
				return err
			}
			if dryRun {
				eng.SetDryRun(true)
			}
			if yes {
				eng.SetConfirmProvider(confirm.Auto(true))
			} else {
				eng.SetConfirmProvider(confirm.NewTerminal())
			}

			results, errs := eng.CleanAll(args)
			for _, dirErr := range errs {
				fmt.Println(warningText(fmt.Sprintf("Skipped %v", dirErr)))
			}
			if len(errs) == len(args) {
				return fmt.Errorf("no target directory could be processed")
			}

			printResults(results, eng.IsDryRun())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would be done without making changes")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "answer yes to all confirmation prompts")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "apply every rule to subdirectories as well")

	return cmd
}

// printResults prints per-file outcomes and the run summary.
func printResults(results []types.CleanResult, dryRun bool) {
	for _, r := range results {
		switch {
		case r.Error != nil:
			fmt.Println(errorText(fmt.Sprintf("  %s: %v", r.SourcePath, r.Error)))
		case r.Applied && r.DestinationPath != "":
			fmt.Printf("  %s -> %s (%s)\n", r.SourcePath, r.DestinationPath, r.Action)
		case r.Applied:
			fmt.Printf("  %s (%s)\n", r.SourcePath, r.Action)
		case r.Action != "" && dryRun:
			fmt.Println(infoText(fmt.Sprintf("  %s would get %s", r.SourcePath, r.Action)))
		}
	}

	summary := types.Summarize(results)
	line := fmt.Sprintf("Scanned %d files, matched %d, applied %d, failed %d",
		summary.Scanned, summary.Matched, summary.Applied, summary.Failed)
	if summary.Failed > 0 {
		fmt.Println(warningText(line))
	} else {
		fmt.Println(successText(line))
	}
}
