package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/infofact/internal/model"
)

// Version is set at build time via -ldflags
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "infofact",
	Short: "Infofact - article credibility analysis with LLM agents",
	Long: `Infofact runs a news article through a set of analysis agents:

  factual_consistency_agent   extracts claims, checks them with a language
                              model and published fact-checks, and scores
                              the article's trustworthiness
  metadata_agent              finds cited URLs and named people and rates
                              their reliability
  sentiment_analysis_agent    describes tone, bias and emotional framing

Agents can be run from the command line or behind an HTTP endpoint.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "infofact %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.infofact/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(model.DefaultConfig())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.infofact")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// INFOFACT_LLM_MODEL overrides llm.model, and so on
	viper.SetEnvPrefix("INFOFACT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so env overrides reach Unmarshal
func setDefaults(cfg *model.Config) {
	viper.SetDefault("server.address", cfg.Server.Address)
	viper.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	viper.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)

	viper.SetDefault("llm.provider", cfg.LLM.Provider)
	viper.SetDefault("llm.model", cfg.LLM.Model)
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.base_url", cfg.LLM.BaseURL)
	viper.SetDefault("llm.timeout", cfg.LLM.Timeout)
	viper.SetDefault("llm.max_tokens", cfg.LLM.MaxTokens)
	viper.SetDefault("llm.temperature", cfg.LLM.Temperature)
	viper.SetDefault("llm.structured_output", cfg.LLM.StructuredOutput)
	viper.SetDefault("llm.http_proxy", "")
	viper.SetDefault("llm.https_proxy", "")
	viper.SetDefault("llm.no_proxy", "")

	viper.SetDefault("agents.models", cfg.Agents.Models)
	viper.SetDefault("agents.verify_overview", cfg.Agents.VerifyOverview)

	viper.SetDefault("factcheck.api_key", "")
	viper.SetDefault("factcheck.base_url", cfg.FactCheck.BaseURL)
	viper.SetDefault("factcheck.language_code", cfg.FactCheck.LanguageCode)
	viper.SetDefault("factcheck.page_size", cfg.FactCheck.PageSize)
	viper.SetDefault("factcheck.timeout", cfg.FactCheck.Timeout)
	viper.SetDefault("factcheck.requests_per_second", cfg.FactCheck.RequestsPerSecond)
	viper.SetDefault("factcheck.burst", cfg.FactCheck.Burst)
	viper.SetDefault("factcheck.http_proxy", "")
	viper.SetDefault("factcheck.https_proxy", "")
	viper.SetDefault("factcheck.no_proxy", "")

	viper.SetDefault("scoring.false_penalty", cfg.Scoring.FalsePenalty)
	viper.SetDefault("scoring.evidence_penalty", cfg.Scoring.EvidencePenalty)

	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	viper.SetDefault("cache.dir", cfg.Cache.Dir)
	viper.SetDefault("cache.disk_ttl", cfg.Cache.DiskTTL)

	viper.SetDefault("http.timeout", cfg.HTTP.Timeout)
	viper.SetDefault("http.user_agent", cfg.HTTP.UserAgent)
	viper.SetDefault("http.max_body_bytes", cfg.HTTP.MaxBodyBytes)
	viper.SetDefault("http.respect_robots", cfg.HTTP.RespectRobots)
	viper.SetDefault("http.readability", cfg.HTTP.Readability)
	viper.SetDefault("http.http_proxy", "")
	viper.SetDefault("http.https_proxy", "")
	viper.SetDefault("http.no_proxy", "")

	viper.SetDefault("dispatch.parallel", cfg.Dispatch.Parallel)
	viper.SetDefault("dispatch.workers", cfg.Dispatch.Workers)

	viper.SetDefault("authority.primary_domains", cfg.Authority.PrimaryDomains)
	viper.SetDefault("authority.secondary_domains", cfg.Authority.SecondaryDomains)
	viper.SetDefault("authority.domain_map", map[string]string{})

	viper.SetDefault("output.verbose", cfg.Output.Verbose)
}

// loadConfig merges defaults, config file, INFOFACT_* env and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	return cfg, nil
}
