// Package config provides configuration types and loading for the
// restaurant proxy.
//
// Configuration is assembled once at startup and is read-only afterwards.
// Values are resolved in this order, later sources overriding earlier ones:
//
//   - built-in defaults (DefaultConfig)
//   - an optional YAML file with ${VAR} and ${VAR:-default} substitution
//   - environment variables (PORT, PROXY_*), optionally seeded from a
//     .env file in the working directory
//
// # Usage
//
//	cfg, err := config.Load(config.LoadOptions{Path: "configs/restoproxy.yaml"})
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
