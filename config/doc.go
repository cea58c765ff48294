// Package config loads the enumerate command configuration.
//
// Values come from a YAML file, a .env file and the environment, in that
// order of increasing precedence. Environment variables use the ENUMERATE_
// prefix with underscore-separated paths:
//
//	ENUMERATE_LOGGING_LEVEL=debug
//	ENUMERATE_METRICS_OTLP_ENDPOINT=localhost:4318
//
// Usage:
//
//	cfg, err := config.Load(config.WithConfigFile("enumerate.yml"))
//
// Without an explicit path, enumerate.yml, enumerate.yaml, config/enumerate.yml
// and $XDG_CONFIG_HOME/enumerate/config.yml are tried in that order.
package config
