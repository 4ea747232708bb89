package model

import "time"

// Config is the complete infofact configuration.
// Field tags serve both viper (mapstructure) and `config show|init` (yaml).
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Agents    AgentsConfig    `yaml:"agents" mapstructure:"agents"`
	FactCheck FactCheckConfig `yaml:"factcheck" mapstructure:"factcheck"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	Dispatch  DispatchConfig  `yaml:"dispatch" mapstructure:"dispatch"`
	Authority AuthorityConfig `yaml:"authority" mapstructure:"authority"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Address      string        `yaml:"address" mapstructure:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// LLMConfig holds chat-completion provider settings
type LLMConfig struct {
	Provider         string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model            string  `yaml:"model" mapstructure:"model"`
	APIKey           string  `yaml:"-" mapstructure:"api_key"` // Never written to disk
	BaseURL          string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout          int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens        int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature      float32 `yaml:"temperature" mapstructure:"temperature"`
	StructuredOutput bool    `yaml:"structured_output" mapstructure:"structured_output"`
	HTTPProxy        string  `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy       string  `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy          string  `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// AgentsConfig holds per-agent overrides
type AgentsConfig struct {
	// Models maps agent name to model name; empty falls back to llm.model
	Models map[string]string `yaml:"models,omitempty" mapstructure:"models"`

	// VerifyOverview adds a free-form accuracy overview to the factual report
	VerifyOverview bool `yaml:"verify_overview" mapstructure:"verify_overview"`
}

// FactCheckConfig holds claim-search service settings
type FactCheckConfig struct {
	APIKey            string  `yaml:"-" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	LanguageCode      string  `yaml:"language_code" mapstructure:"language_code"`
	PageSize          int     `yaml:"page_size" mapstructure:"page_size"`
	Timeout           int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`

	// Proxy overrides; empty fields inherit the http section
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ScoringConfig holds the trustworthiness penalties
type ScoringConfig struct {
	FalsePenalty    int `yaml:"false_penalty" mapstructure:"false_penalty"`
	EvidencePenalty int `yaml:"evidence_penalty" mapstructure:"evidence_penalty"`
}

// CacheConfig controls caching of fact-check search results
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	Dir       string        `yaml:"dir,omitempty" mapstructure:"dir"` // empty = memory only
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// HTTPConfig controls article fetching for `analyze --url`
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	Readability   bool          `yaml:"readability" mapstructure:"readability"` // Main-content extraction
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// DispatchConfig controls how selected agents are run
type DispatchConfig struct {
	Parallel bool `yaml:"parallel" mapstructure:"parallel"` // Sequential when false
	Workers  int  `yaml:"workers" mapstructure:"workers"`
}

// AuthorityConfig feeds the local URL authority classifier
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
}

// OutputConfig controls CLI output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      ":5000",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
		},
		LLM: LLMConfig{
			Provider:         "openai",
			Model:            "gpt-4o-mini",
			Timeout:          60,
			MaxTokens:        1500,
			Temperature:      0.2,
			StructuredOutput: true,
		},
		Agents: AgentsConfig{
			Models: map[string]string{},
		},
		FactCheck: FactCheckConfig{
			BaseURL:           "https://factchecktools.googleapis.com/v1alpha1",
			LanguageCode:      "en-US",
			PageSize:          5,
			Timeout:           15,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Scoring: ScoringConfig{
			FalsePenalty:    10,
			EvidencePenalty: 5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: time.Hour,
			DiskTTL:   24 * time.Hour,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "infofact/0.1 (+https://github.com/ppiankov/infofact)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
			Readability:   true,
		},
		Dispatch: DispatchConfig{
			Parallel: false,
			Workers:  4,
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"gov", "gov.uk", "europa.eu", "un.org", "who.int",
				"worldbank.org", "imf.org", "oecd.org", "nih.gov",
			},
			SecondaryDomains: []string{
				"reuters.com", "apnews.com", "bbc.co.uk", "bbc.com",
				"nytimes.com", "theguardian.com", "washingtonpost.com",
				"nature.com", "britannica.com", "wikipedia.org",
			},
		},
	}
}
