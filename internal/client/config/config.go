package config

import "time"

const (
	ModeRemote = "remote"
	ModeLocal  = "local"
)

// Config holds runtime settings for the GophNotes CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - Mode: "remote" talks to the server, "local" keeps everything in process.
//   - Model: Gemini model used by the editor assistant.
//   - APIKey: Gemini API key; empty disables the assistant.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	Mode                string
	Model               string
	APIKey              string
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.Mode = ModeRemote
	c.Model = "gemini-2.5-flash"
	c.APIKey = ""
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
