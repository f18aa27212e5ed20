package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for structural problems that would only
// surface later as confusing runtime failures. Missing credentials are caught
// here so the process refuses to start misconfigured.
func Validate(cfg *Config) error {
	var problems []string

	if cfg.Pipeline.DesiredResults <= 0 {
		problems = append(problems, "pipeline.desired_results must be positive")
	}
	if cfg.Pipeline.TopN <= 0 {
		problems = append(problems, "pipeline.top_n must be positive")
	}
	if cfg.Pipeline.StageTimeout <= 0 {
		problems = append(problems, "pipeline.stage_timeout must be positive")
	}

	switch cfg.Search.Provider {
	case "google":
		if cfg.Search.APIKey == "" {
			problems = append(problems, "search.api_key is required (or SOURCEHOUND_SEARCH_API_KEY)")
		}
		if cfg.Search.EngineID == "" {
			problems = append(problems, "search.engine_id is required (or SOURCEHOUND_SEARCH_ENGINE_ID)")
		}
	case "":
		problems = append(problems, "search.provider is required")
	default:
		problems = append(problems, fmt.Sprintf("unknown search.provider %q", cfg.Search.Provider))
	}

	if cfg.Scorer.Provider.APIKey == "" {
		problems = append(problems, "scorer.provider.api_key is required (or SOURCEHOUND_SCORER_API_KEY)")
	}
	if cfg.Scorer.Provider.Model == "" {
		problems = append(problems, "scorer.provider.model is required")
	}

	seen := map[string]bool{}
	for i, ch := range cfg.Channels {
		switch ch.Type {
		case "telegram":
			if ch.Telegram == nil || ch.Telegram.Token == "" {
				problems = append(problems, fmt.Sprintf("channels[%d]: telegram.token is required (or SOURCEHOUND_TELEGRAM_TOKEN)", i))
			}
		case "webform":
			if ch.WebForm == nil || ch.WebForm.Addr == "" {
				problems = append(problems, fmt.Sprintf("channels[%d]: webform.addr is required", i))
			}
		case "":
			problems = append(problems, fmt.Sprintf("channels[%d]: type is required", i))
		default:
			problems = append(problems, fmt.Sprintf("channels[%d]: unknown type %q", i, ch.Type))
		}
		if ch.Type != "" {
			if seen[ch.Type] {
				problems = append(problems, fmt.Sprintf("channels[%d]: duplicate channel type %q", i, ch.Type))
			}
			seen[ch.Type] = true
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
