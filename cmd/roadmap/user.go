package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gminsights/roadmap-api/internal/auth"
	"github.com/gminsights/roadmap-api/internal/database"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/spf13/cobra"
)

var (
	userEmail    string
	userPassword string
	userName     string
	userRole     string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a profile, or change the role of an existing one",
	Long: `Create a profile, or change the role of an existing one.

Examples:
  roadmap create-user --email lead@gminsights.com --password s3cret! --role editor
  roadmap create-user --email analyst@gminsights.com --role editor   # promote`,
	RunE: runCreateUser,
}

func init() {
	createUserCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	createUserCmd.Flags().StringVar(&userPassword, "password", "", "password (required for new profiles)")
	createUserCmd.Flags().StringVar(&userName, "name", "", "display name")
	createUserCmd.Flags().StringVar(&userRole, "role", models.RoleViewer, "editor or viewer")
	_ = createUserCmd.MarkFlagRequired("email")
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()
	ctx := context.Background()

	if err := database.Migrate(a.db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if userRole != models.RoleEditor && userRole != models.RoleViewer {
		return fmt.Errorf("invalid --role %q: must be editor or viewer", userRole)
	}

	if userPassword == "" {
		email := strings.ToLower(strings.TrimSpace(userEmail))
		err := a.store.Profiles.Update(ctx, map[string]any{"role": userRole}, store.Filter{"email": email})
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", userEmail, err)
		}
		fmt.Printf("%s %s is now %s\n", color.GreenString("✓"), userEmail, color.CyanString(userRole))
		return nil
	}

	svc := auth.NewService(a.store.Profiles, a.cfg.JWTSecret, a.log)
	profile, err := svc.SignUp(ctx, userEmail, userPassword, userName, userRole)
	if err != nil {
		return err
	}
	fmt.Printf("%s created %s (%s) id=%s\n", color.GreenString("✓"), profile.Email, color.CyanString(profile.Role), profile.ID)
	return nil
}
