package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Generative GenerativeConfig
	Structurer StructurerConfig
	ICD        ICDConfig
	CORS       CORSConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GenerativeProviderConfig holds settings for a single LLM provider.
type GenerativeProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// GenerativeConfig holds LLM settings with multi-provider support. An empty
// provider everywhere disables the generative path entirely.
type GenerativeConfig struct {
	// Legacy flat fields
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Multi-provider fields
	Primary   GenerativeProviderConfig `mapstructure:"primary"`
	Secondary GenerativeProviderConfig `mapstructure:"secondary"`
	Tertiary  GenerativeProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
// It returns nil if neither is configured.
func (g *GenerativeConfig) PrimaryConfig() *GenerativeProviderConfig {
	if g.Primary.Provider != "" {
		return &g.Primary
	}
	if g.Provider == "" {
		return nil
	}
	return &GenerativeProviderConfig{
		Provider:     g.Provider,
		APIKey:       g.APIKey,
		DefaultModel: g.DefaultModel,
		MaxRetries:   g.MaxRetries,
		TimeoutSecs:  g.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (g *GenerativeConfig) SecondaryConfig() *GenerativeProviderConfig {
	if g.Secondary.Provider != "" {
		return &g.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (g *GenerativeConfig) TertiaryConfig() *GenerativeProviderConfig {
	if g.Tertiary.Provider != "" {
		return &g.Tertiary
	}
	return nil
}

// ProviderConfigs returns the configured providers in fallback order.
func (g *GenerativeConfig) ProviderConfigs() []*GenerativeProviderConfig {
	var out []*GenerativeProviderConfig
	for _, c := range []*GenerativeProviderConfig{g.PrimaryConfig(), g.SecondaryConfig(), g.TertiaryConfig()} {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// StructurerConfig holds per-stage timeouts and defaults of the structuring pipeline.
type StructurerConfig struct {
	GenerativeTimeoutSecs int    `mapstructure:"generative_timeout_secs"`
	EnhancedTimeoutSecs   int    `mapstructure:"enhanced_timeout_secs"`
	CodingTimeoutSecs     int    `mapstructure:"coding_timeout_secs"`
	DefaultLanguage       string `mapstructure:"default_language"`
	EnhancedFindings      bool   `mapstructure:"enhanced_findings"`
}

// GenerativeTimeout returns the generative stage timeout.
func (s StructurerConfig) GenerativeTimeout() time.Duration {
	return time.Duration(s.GenerativeTimeoutSecs) * time.Second
}

// EnhancedTimeout returns the enhanced findings stage timeout.
func (s StructurerConfig) EnhancedTimeout() time.Duration {
	return time.Duration(s.EnhancedTimeoutSecs) * time.Second
}

// CodingTimeout returns the diagnostic code stage timeout.
func (s StructurerConfig) CodingTimeout() time.Duration {
	return time.Duration(s.CodingTimeoutSecs) * time.Second
}

// ICDConfig holds diagnostic code service settings.
type ICDConfig struct {
	CatalogPath   string  `mapstructure:"catalog_path"`
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	MaxTextBytes int           `mapstructure:"max_text_bytes"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the MEDREPORT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEDREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_text_bytes", 200000)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Generative defaults (legacy flat); empty provider disables the generative path
	v.SetDefault("generative.provider", "")
	v.SetDefault("generative.api_key", "")
	v.SetDefault("generative.default_model", "")
	v.SetDefault("generative.max_retries", 2)
	v.SetDefault("generative.timeout_secs", 60)

	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("generative."+tier+".provider", "")
		v.SetDefault("generative."+tier+".api_key", "")
		v.SetDefault("generative."+tier+".default_model", "")
		v.SetDefault("generative."+tier+".max_retries", 2)
		v.SetDefault("generative."+tier+".timeout_secs", 60)
	}

	// Structurer defaults
	v.SetDefault("structurer.generative_timeout_secs", 45)
	v.SetDefault("structurer.enhanced_timeout_secs", 30)
	v.SetDefault("structurer.coding_timeout_secs", 30)
	v.SetDefault("structurer.default_language", "de")
	v.SetDefault("structurer.enhanced_findings", true)

	// ICD defaults
	v.SetDefault("icd.catalog_path", "")
	v.SetDefault("icd.min_confidence", 0.3)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                        "MEDREPORT_SERVER_PORT",
		"server.read_timeout":                "MEDREPORT_SERVER_READ_TIMEOUT",
		"server.write_timeout":               "MEDREPORT_SERVER_WRITE_TIMEOUT",
		"server.environment":                 "MEDREPORT_SERVER_ENVIRONMENT",
		"server.max_text_bytes":              "MEDREPORT_SERVER_MAX_TEXT_BYTES",
		"log.level":                          "MEDREPORT_LOG_LEVEL",
		"log.format":                         "MEDREPORT_LOG_FORMAT",
		"cors.allowed_origins":               "MEDREPORT_CORS_ALLOWED_ORIGINS",
		"generative.provider":                "MEDREPORT_GENERATIVE_PROVIDER",
		"generative.api_key":                 "MEDREPORT_GENERATIVE_API_KEY",
		"generative.default_model":           "MEDREPORT_GENERATIVE_DEFAULT_MODEL",
		"generative.max_retries":             "MEDREPORT_GENERATIVE_MAX_RETRIES",
		"generative.timeout_secs":            "MEDREPORT_GENERATIVE_TIMEOUT_SECS",
		"structurer.generative_timeout_secs": "MEDREPORT_STRUCTURER_GENERATIVE_TIMEOUT_SECS",
		"structurer.enhanced_timeout_secs":   "MEDREPORT_STRUCTURER_ENHANCED_TIMEOUT_SECS",
		"structurer.coding_timeout_secs":     "MEDREPORT_STRUCTURER_CODING_TIMEOUT_SECS",
		"structurer.default_language":        "MEDREPORT_STRUCTURER_DEFAULT_LANGUAGE",
		"structurer.enhanced_findings":       "MEDREPORT_STRUCTURER_ENHANCED_FINDINGS",
		"icd.catalog_path":                   "MEDREPORT_ICD_CATALOG_PATH",
		"icd.min_confidence":                 "MEDREPORT_ICD_MIN_CONFIDENCE",
	}
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		for _, field := range []string{"provider", "api_key", "default_model", "max_retries", "timeout_secs"} {
			key := "generative." + tier + "." + field
			envBindings[key] = "MEDREPORT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Container platforms set a PORT env var. Use it if MEDREPORT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("MEDREPORT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		MaxTextBytes: v.GetInt("server.max_text_bytes"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	providerConfig := func(prefix string) GenerativeProviderConfig {
		return GenerativeProviderConfig{
			Provider:     v.GetString(prefix + ".provider"),
			APIKey:       v.GetString(prefix + ".api_key"),
			DefaultModel: v.GetString(prefix + ".default_model"),
			MaxRetries:   v.GetInt(prefix + ".max_retries"),
			TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
		}
	}
	cfg.Generative = GenerativeConfig{
		Provider:     v.GetString("generative.provider"),
		APIKey:       v.GetString("generative.api_key"),
		DefaultModel: v.GetString("generative.default_model"),
		MaxRetries:   v.GetInt("generative.max_retries"),
		TimeoutSecs:  v.GetInt("generative.timeout_secs"),
		Primary:      providerConfig("generative.primary"),
		Secondary:    providerConfig("generative.secondary"),
		Tertiary:     providerConfig("generative.tertiary"),
	}

	cfg.Structurer = StructurerConfig{
		GenerativeTimeoutSecs: v.GetInt("structurer.generative_timeout_secs"),
		EnhancedTimeoutSecs:   v.GetInt("structurer.enhanced_timeout_secs"),
		CodingTimeoutSecs:     v.GetInt("structurer.coding_timeout_secs"),
		DefaultLanguage:       v.GetString("structurer.default_language"),
		EnhancedFindings:      v.GetBool("structurer.enhanced_findings"),
	}

	cfg.ICD = ICDConfig{
		CatalogPath:   v.GetString("icd.catalog_path"),
		MinConfidence: v.GetFloat64("icd.min_confidence"),
	}

	return cfg, nil
}
