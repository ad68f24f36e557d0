package main

import (
	"fmt"
	"strings"

	"cleanfiles/pkg/types"

	"github.com/spf13/cobra"
)

// NewRulesCmd creates the rules command, which prints the parsed rule list
// in evaluation order.
func NewRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Show the configured rules in evaluation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if len(cfg.Rules) == 0 {
				fmt.Println(warningText("No rules configured"))
				return nil
			}

			fmt.Println(emphasisText("Rules (first match wins):"))
			for i, rule := range cfg.Rules {
				fmt.Printf("  %d. %s: %s -> %s\n", i+1, rule.Name, describePredicates(rule), describeAction(rule))
			}
			return nil
		},
	}
}

func describePredicates(rule types.Rule) string {
	var parts []string
	if rule.Pattern != "" {
		parts = append(parts, fmt.Sprintf("pattern %s", rule.Pattern))
	}
	if rule.OlderThan > 0 {
		parts = append(parts, fmt.Sprintf("older than %s", rule.OlderThan))
	}
	if rule.MinSize > 0 {
		parts = append(parts, fmt.Sprintf("at least %d bytes", rule.MinSize))
	}
	if rule.MaxSize > 0 {
		parts = append(parts, fmt.Sprintf("at most %d bytes", rule.MaxSize))
	}
	if rule.Empty {
		parts = append(parts, "empty")
	}
	if rule.Temp {
		parts = append(parts, "temp suffix")
	}
	if rule.Duplicate {
		parts = append(parts, "duplicate content")
	}
	if rule.Recursive {
		parts = append(parts, "recursive")
	}
	if len(parts) == 0 {
		return "any file"
	}
	return strings.Join(parts, ", ")
}

func describeAction(rule types.Rule) string {
	if rule.Action == types.ActionMove {
		return fmt.Sprintf("%s %s", rule.Action, rule.Target)
	}
	return string(rule.Action)
}
