package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// ReviewThreshold gates human review: translations and detections whose
	// confidence falls below it are flagged, never dropped.
	ReviewThreshold float64 `yaml:"review_threshold"`
	// MinSegmentRunes is the shortest segment whose language detection is
	// trusted. Shorter segments get their confidence forced to the floor.
	MinSegmentRunes int `yaml:"min_segment_runes"`

	ResearchLiveEnabled bool   `yaml:"research_live_enabled"`
	ResearchBaseURL     string `yaml:"research_base_url"`
	ResearchRateMS      int    `yaml:"research_rate_ms"`
	ResearchMaxResults  int    `yaml:"research_max_results"`

	AnthropicModel string `yaml:"anthropic_model"`
	DBPath         string `yaml:"db_path"`
	ChromePath     string `yaml:"chrome_path"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
}

func Default() Config {
	return Config{
		ReviewThreshold:    0.7,
		MinSegmentRunes:    10,
		ResearchBaseURL:    "http://www.commonlii.org",
		ResearchRateMS:     1000,
		ResearchMaxResults: 10,
		DBPath:             "./legalops.db",
	}
}

// Load reads YAML config from path (missing file is fine, defaults apply)
// and then applies LEGALOPS_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if err := envOverrideFloat(&cfg.ReviewThreshold, "LEGALOPS_REVIEW_THRESHOLD"); err != nil {
		return err
	}
	if err := envOverrideInt(&cfg.MinSegmentRunes, "LEGALOPS_MIN_SEGMENT_RUNES"); err != nil {
		return err
	}
	envOverrideBool(&cfg.ResearchLiveEnabled, "LEGALOPS_RESEARCH_LIVE")
	envOverride(&cfg.ResearchBaseURL, "LEGALOPS_RESEARCH_BASE_URL")
	if err := envOverrideInt(&cfg.ResearchRateMS, "LEGALOPS_RESEARCH_RATE_MS"); err != nil {
		return err
	}
	if err := envOverrideInt(&cfg.ResearchMaxResults, "LEGALOPS_RESEARCH_MAX_RESULTS"); err != nil {
		return err
	}
	envOverride(&cfg.AnthropicModel, "LEGALOPS_ANTHROPIC_MODEL")
	envOverride(&cfg.DBPath, "LEGALOPS_DB_PATH")
	envOverride(&cfg.ChromePath, "LEGALOPS_CHROME_PATH")
	envOverride(&cfg.OTLPEndpoint, "LEGALOPS_OTLP_ENDPOINT")
	return nil
}

func (c Config) validate() error {
	if c.ReviewThreshold < 0 || c.ReviewThreshold > 1 {
		return fmt.Errorf("review_threshold %v: must be between 0 and 1", c.ReviewThreshold)
	}
	if c.MinSegmentRunes < 1 {
		return fmt.Errorf("min_segment_runes %d: must be >= 1", c.MinSegmentRunes)
	}
	if c.ResearchRateMS < 1 {
		return fmt.Errorf("research_rate_ms %d: must be >= 1", c.ResearchRateMS)
	}
	if c.ResearchMaxResults < 1 {
		return fmt.Errorf("research_max_results %d: must be >= 1", c.ResearchMaxResults)
	}
	return nil
}

func (c Config) ResearchRate() time.Duration {
	return time.Duration(c.ResearchRateMS) * time.Millisecond
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = strings.EqualFold(val, "true") || val == "1"
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideFloat(field *float64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
