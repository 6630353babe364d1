package config

import "github.com/dmitrijs2005/gophnotes/internal/flagx"

// parseEnv reads the assistant credential. GEMINI_API_KEY wins over API_KEY.
func parseEnv(cfg *Config) {
	if key := flagx.FirstEnv("GEMINI_API_KEY", "API_KEY"); key != "" {
		cfg.APIKey = key
	}
}
