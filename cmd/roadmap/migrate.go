package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/gminsights/roadmap-api/internal/database"
	"github.com/gminsights/roadmap-api/internal/reconciler"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		if err := database.Migrate(a.db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		fmt.Println(color.GreenString("✓ schema up to date"))
		return nil
	},
}

var migrateNotesAuthor string

var migrateNotesCmd = &cobra.Command{
	Use:   "migrate-notes",
	Short: "Move legacy embedded milestone notes into the notes table",
	Long: `Move legacy embedded milestone notes into the notes table.

Each milestone whose legacy notes field holds a key/text object gets one note
per entry and the field is cleared. Running it again is safe.`,
	RunE: runMigrateNotes,
}

func init() {
	migrateNotesCmd.Flags().StringVar(&migrateNotesAuthor, "author", "", "profile id recorded as the notes' creator")
}

func runMigrateNotes(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	author := uuid.Nil
	if migrateNotesAuthor != "" {
		if author, err = uuid.Parse(migrateNotesAuthor); err != nil {
			return fmt.Errorf("invalid --author: %w", err)
		}
	}

	report, err := reconciler.MigrateLegacyNotes(context.Background(), a.store, author, a.log)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("%s\n", cyan("Legacy note migration"))
	fmt.Printf("  milestones scanned:  %d\n", report.Scanned)
	fmt.Printf("  milestones migrated: %s\n", green(report.Milestones))
	fmt.Printf("  notes created:       %s\n", green(report.Notes))
	fmt.Printf("  skipped:             %s\n", gray(report.Skipped))
	return nil
}
