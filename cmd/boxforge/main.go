package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/boxforge/internal/cli"
	"github.com/example/boxforge/internal/version"
	"github.com/example/boxforge/internal/wire"
)

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "boxforge",
		Short:   "Boxforge - sketch UI layouts as boxes and generate components with AI",
		Version: version.String(),
		Long: `Boxforge is a CLI for sketching pages as nested boxes, describing what each
box should do, and generating component code from that description with an
AI provider. Generated code is versioned per box.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			wire.SetVerbose(verbose)
			if !cli.NeedsProject(cmd) {
				return nil
			}
			return wire.Init()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")

	// Project setup
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.ConfigCmd())
	rootCmd.AddCommand(cli.ContextCmd())

	// Layout editing
	rootCmd.AddCommand(cli.PageCmd())
	rootCmd.AddCommand(cli.BoxCmd())
	rootCmd.AddCommand(cli.TreeCmd())
	rootCmd.AddCommand(cli.SharedCmd())

	// Generation
	rootCmd.AddCommand(cli.PromptCmd())
	rootCmd.AddCommand(cli.GenerateCmd())
	rootCmd.AddCommand(cli.VersionsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	wire.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
