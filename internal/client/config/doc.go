// Package config loads runtime configuration for the GophNotes CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. GEMINI_API_KEY or API_KEY from the environment.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string      address:port of the backend gRPC endpoint
//	-i int         online status check interval (seconds)
//	-m string      remote or local
//	-model string  Gemini model used by the editor assistant
//	-l string      log level
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "mode": "remote",
//	  "model": "gemini-2.5-flash",
//	  "api_key": "",
//	  "log_level": "warn"
//	}
package config
