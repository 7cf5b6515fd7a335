package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/boxforge/internal/config"
	"github.com/example/boxforge/internal/ports/primary"
	"github.com/example/boxforge/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var framework, language, uiLibrary string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a boxforge project in the current directory",
		Long: `Initialize a boxforge project: creates .boxforge/ with config.yaml and the
project database, and records the target framework in the project context.

Examples:
  boxforge init
  boxforge init --framework vue --language javascript --ui-library none`,
		Annotations: map[string]string{skipInit: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			if _, err := os.Stat(filepath.Join(cwd, config.DirName, config.FileName)); errors.Is(err, os.ErrNotExist) {
				if err := config.SaveConfig(cwd, config.Default()); err != nil {
					return err
				}
				fmt.Printf("✓ Created %s\n", filepath.Join(config.DirName, config.FileName))
			} else {
				fmt.Printf("ℹ️  %s already exists, keeping it\n", filepath.Join(config.DirName, config.FileName))
			}

			if err := wire.Init(); err != nil {
				return err
			}
			fmt.Printf("✓ Project database ready at %s\n", config.DBPath(wire.ProjectDir()))

			req := primary.UpdateContextRequest{}
			if cmd.Flags().Changed("framework") {
				req.Framework = &framework
			}
			if cmd.Flags().Changed("language") {
				req.Language = &language
			}
			if cmd.Flags().Changed("ui-library") {
				req.UILibrary = &uiLibrary
			}
			if req.Framework != nil || req.Language != nil || req.UILibrary != nil {
				if _, err := wire.WorkspaceService().UpdateContext(cmd.Context(), req); err != nil {
					return err
				}
				fmt.Println("✓ Project context updated")
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  boxforge page add Home --route /")
			fmt.Println("  boxforge config key openai")
			return nil
		},
	}

	cmd.Flags().StringVar(&framework, "framework", "react", "Target framework (react, vue, svelte)")
	cmd.Flags().StringVar(&language, "language", "typescript", "Target language")
	cmd.Flags().StringVar(&uiLibrary, "ui-library", "tailwind", "UI library, or none")

	return cmd
}
