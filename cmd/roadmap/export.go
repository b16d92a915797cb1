package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/gminsights/roadmap-api/internal/catalog"
	"github.com/gminsights/roadmap-api/internal/export"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	exportProject string
	exportOutput  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a project roadmap to PDF",
	Long: `Render a project roadmap to PDF.

Examples:
  roadmap export --project 6f1c... 
  roadmap export --project 6f1c... -o q3.pdf`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportProject, "project", "", "project id")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (defaults to <name>-roadmap.pdf)")
	_ = exportCmd.MarkFlagRequired("project")
}

func runExport(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(exportProject)
	if err != nil {
		return fmt.Errorf("invalid --project: %w", err)
	}

	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()
	ctx := context.Background()

	projects, err := a.store.Projects.Select(ctx, store.Query{
		Filter: store.Filter{"id": id},
		Limit:  1,
	})
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		return fmt.Errorf("project %s not found", id)
	}
	project := projects[0]

	updates, err := a.store.StatusUpdates.Select(ctx, store.Query{
		Filter: store.Filter{"project_id": id},
		Order:  "created_at DESC",
	})
	if err != nil {
		return err
	}
	milestones, err := a.store.Milestones.Select(ctx, store.Query{
		Filter: store.Filter{"project_id": id},
		Nested: []string{"Notes"},
		Order:  "position ASC, created_at ASC",
	})
	if err != nil {
		return err
	}
	project.Milestones = milestones

	goals, err := catalog.Load(a.cfg.GoalsFile)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	err = export.Render(&buf, export.Report{
		Project:       project,
		StatusUpdates: updates,
		Goals:         goals,
		GeneratedAt:   time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}

	out := exportOutput
	if out == "" {
		out = export.Filename(project.Name)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	fmt.Printf("%s %s\n", color.GreenString("✓ exported"), out)
	return nil
}
