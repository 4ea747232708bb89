package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/infofact/internal/llm"
	"github.com/ppiankov/infofact/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage infofact configuration",
	Long: `Manage infofact configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (INFOFACT_*, e.g. INFOFACT_LLM_MODEL)
3. Config file (~/.infofact/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Long:  `Display the configuration after merging defaults, the config file, environment variables and flags. API keys are never printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, string(yamlData))
		fmt.Fprintln(out)
		fmt.Fprintf(out, "# Credentials (from environment):\n")
		if env := llm.APIKeyEnv(cfg.LLM.Provider); env != "" {
			fmt.Fprintf(out, "#   %s: %s\n", env, keyStatus(cfg.LLM.APIKey != "" || envSet(env)))
		}
		fmt.Fprintf(out, "#   FACTCHECK_API_KEY: %s\n", keyStatus(cfg.FactCheck.APIKey != "" || envSet(factCheckKeyEnvs...)))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.infofact/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configDir := filepath.Join(home, ".infofact")
		configPath := filepath.Join(configDir, "config.yaml")

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'infofact config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		if err := writeDefaultConfig(configPath); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s\n  review it with: infofact config show\n", configPath)
		return nil
	},
}

const configHeader = `# infofact configuration file
#
# Priority, highest first: CLI flags, INFOFACT_* environment variables,
# this file, built-in defaults.

`

const configFooter = `
# API keys are read from the environment:
#   export OPENAI_API_KEY=sk-...          (llm.provider: openai)
#   export ANTHROPIC_API_KEY=sk-ant-...   (llm.provider: anthropic)
#   export OLLAMA_BASE_URL=http://localhost:11434
#   export FACTCHECK_API_KEY=...          (Google Fact Check Tools)
`

// writeDefaultConfig writes DefaultConfig as commented YAML
func writeDefaultConfig(path string) error {
	body, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data := make([]byte, 0, len(configHeader)+len(body)+len(configFooter))
	data = append(data, configHeader...)
	data = append(data, body...)
	data = append(data, configFooter...)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify credentials against the configured LLM provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := resolveCredentials(cfg); err != nil {
			return err
		}
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if err := provider.Ping(ctx); err != nil {
			return fmt.Errorf("%s unreachable: %w", provider.Name(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s reachable (model %s)\n", provider.Name(), cfg.LLM.Model)
		return nil
	},
}

func envSet(names ...string) bool {
	for _, n := range names {
		if os.Getenv(n) != "" {
			return true
		}
	}
	return false
}

func keyStatus(set bool) string {
	if set {
		return "set"
	}
	return "missing"
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configCheckCmd)
}
