package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/wire"
)

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the AI provider configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show the AI configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ConfigAdapter().Show(cmd.Context())
		},
	})
	cmd.AddCommand(configSetCmd())
	cmd.AddCommand(configKeyCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "providers",
		Short: "List providers and whether a key is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ConfigAdapter().Providers(cmd.Context())
		},
	})

	return cmd
}

func configSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change provider, model or sampling parameters",
		Long: `Change the AI configuration. Unset flags keep their current value.

Examples:
  boxforge config set --provider anthropic --model claude-sonnet-4-20250514
  boxforge config set --temperature 0.4 --max-tokens 8192`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := wire.ConfigService().GetAIConfig(cmd.Context())
			if err != nil {
				return err
			}
			cfg := models.AIConfig{
				Provider:    current.Provider,
				Model:       current.Model,
				Temperature: current.Temperature,
				MaxTokens:   current.MaxTokens,
			}
			if v := changedString(cmd, "provider"); v != nil {
				cfg.Provider = *v
			}
			if v := changedString(cmd, "model"); v != nil {
				cfg.Model = *v
			}
			if v := changedFloat(cmd, "temperature"); v != nil {
				cfg.Temperature = *v
			}
			if cmd.Flags().Changed("max-tokens") {
				cfg.MaxTokens, _ = cmd.Flags().GetInt("max-tokens")
			}
			return wire.ConfigAdapter().Set(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("provider", "", "Provider ID (see 'boxforge config providers')")
	cmd.Flags().String("model", "", "Model name")
	cmd.Flags().Float64("temperature", 0, "Sampling temperature")
	cmd.Flags().Int("max-tokens", 0, "Maximum output tokens")

	return cmd
}

func configKeyCmd() *cobra.Command {
	var del bool

	cmd := &cobra.Command{
		Use:   "key [provider]",
		Short: "Store or delete a provider's API key",
		Long: `Store a provider's API key, read from stdin so it never appears in shell
history. Keys are encrypted with a per-user key and never shown again.

Examples:
  boxforge config key openai
  pbpaste | boxforge config key anthropic
  boxforge config key openai --delete`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter := wire.ConfigAdapter()
			if del {
				return adapter.DeleteKey(cmd.Context(), args[0])
			}

			if info, err := os.Stdin.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
				fmt.Fprintf(os.Stderr, "API key for %s: ", args[0])
			}
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read key from stdin: %w", err)
			}
			return adapter.SetKey(cmd.Context(), args[0], strings.TrimSpace(line))
		},
	}
	cmd.Flags().BoolVar(&del, "delete", false, "Delete the stored key")

	return cmd
}
