package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/mindtide/mindtide/internal/config"
	"github.com/mindtide/mindtide/internal/database"
	"github.com/mindtide/mindtide/internal/models"
	"github.com/mindtide/mindtide/internal/nudge"
	"github.com/spf13/cobra"
)

// NewNudgesCmd creates the nudges command with validate, set and show subcommands.
func NewNudgesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nudges",
		Short: "Manage nudge rules",
		Long:  "Validate a YAML nudge rules file or manage the rules document stored in the database.",
	}
	cmd.AddCommand(newNudgesValidateCmd())
	cmd.AddCommand(newNudgesSetCmd())
	cmd.AddCommand(newNudgesShowCmd())
	return cmd
}

func newNudgesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <rules-file>",
		Short: "Validate a nudge rules file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := nudge.LoadRules(args[0])
			if err != nil {
				return fmt.Errorf("rules file is invalid: %w", err)
			}
			fmt.Printf("Rules file is valid: %d rule(s)\n", len(rules))
			printRules(rules)
			return nil
		},
	}
}

func newNudgesSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <rules-file>",
		Short: "Validate and store a nudge rules file in the database",
		Long:  "Workers prefer the database-stored document over NUDGE_RULES_PATH and pick up changes on restart.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read rules file: %w", err)
			}
			rules, err := nudge.ParseRules(raw)
			if err != nil {
				return fmt.Errorf("rules file is invalid: %w", err)
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() {
				_ = db.Close()
			}()
			repo := database.NewNudgeConfigRepository(db)
			if err := repo.Set(context.Background(), string(raw)); err != nil {
				return fmt.Errorf("set nudge config: %w", err)
			}
			fmt.Printf("Stored %d nudge rule(s). Workers pick up the change on restart.\n", len(rules))
			return nil
		},
	}
}

func newNudgesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the nudge rules stored in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() {
				_ = db.Close()
			}()
			repo := database.NewNudgeConfigRepository(db)
			stored, err := repo.Get(context.Background())
			if err != nil {
				return fmt.Errorf("get nudge config: %w", err)
			}
			if stored == nil {
				fmt.Println("No nudge rules in database. Use 'nudges set' to add some.")
				return nil
			}
			rules, err := nudge.ParseRules([]byte(stored.RulesYAML))
			if err != nil {
				return fmt.Errorf("stored rules are invalid: %w", err)
			}
			fmt.Printf("Stored nudge rules (updated %s): %d rule(s)\n", stored.UpdatedAt.Format("2006-01-02 15:04:05"), len(rules))
			printRules(rules)
			return nil
		},
	}
}

func printRules(rules []models.NudgeRule) {
	for _, rule := range rules {
		fmt.Printf("  - %s\n", rule.Name)
		fmt.Printf("    Min stress level: %d\n", rule.MinStressLevel)
		fmt.Printf("    Max per day: %d\n", rule.MaxPerDay)
		if rule.QuietStartHour != rule.QuietEndHour {
			fmt.Printf("    Quiet hours: %02d:00-%02d:00\n", rule.QuietStartHour, rule.QuietEndHour)
		}
	}
}
