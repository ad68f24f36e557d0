package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cleanfiles/internal/confirm"
	"cleanfiles/internal/engine"
	"cleanfiles/internal/watch"

	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command, which keeps the target directories
// clean as new files appear.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <directory> [directory...]",
		Short: "Watch directories and clean up new files as they appear",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// Watch mode cannot block on a terminal prompt.
			cfg.Settings.RequireConfirmation = false

			eng, err := engine.NewWithConfig(cfg)
			if err != nil {
				return err
			}
			eng.SetConfirmProvider(confirm.Auto(true))

			watcher, err := watch.New(eng)
			if err != nil {
				return err
			}

			added := 0
			for _, dir := range args {
				if err := watcher.AddDirectory(dir); err != nil {
					fmt.Println(warningText(fmt.Sprintf("Skipped %s: %v", dir, err)))
					continue
				}
				added++
			}
			if added == 0 {
				return fmt.Errorf("no directory could be watched")
			}

			if err := watcher.Start(); err != nil {
				return err
			}
			defer watcher.Stop()

			fmt.Println(infoText("Watching for new files, press Ctrl+C to stop"))

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			for {
				select {
				case result := <-watcher.Results():
					if result.Error != nil {
						fmt.Println(errorText(fmt.Sprintf("  %s: %v", result.SourcePath, result.Error)))
					} else if result.Applied {
						fmt.Printf("  %s (%s)\n", result.SourcePath, result.Action)
					}
				case <-sigChan:
					fmt.Println(infoText("Stopping watcher"))
					return nil
				}
			}
		},
	}

	return cmd
}
