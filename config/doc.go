// Package config loads the dashboard configuration.
//
// Values come from a YAML file (cmd/<service>/config.yml by default), an
// optional .env file loaded with godotenv, and the process environment.
// Environment variables map onto nested keys by splitting on underscores, so
// EVALUATION_TIMEOUT overrides evaluation.timeout.
//
// # Usage
//
//	var cfg config.AppConfig
//	if err := config.LoadConfig("asrdash", &cfg); err != nil { ... }
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
package config
