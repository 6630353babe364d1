package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string      address and port of the backend server
//	-i int         online check interval in seconds
//	-m string      mode: remote or local
//	-model string  Gemini model
//	-l string      log level
//
// Only the flags above are taken from os.Args, via flagx.FilterArgs.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-m", "-model", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.Mode, "m", cfg.Mode, "mode: remote or local")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "Gemini model")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
	if cfg.Mode != ModeRemote && cfg.Mode != ModeLocal {
		panic(fmt.Sprintf("unknown mode %q", cfg.Mode))
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
