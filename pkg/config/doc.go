// Package config loads application configuration from environment variables
// and optional .env files.
//
// It is a thin layer over github.com/joho/godotenv, which reads .env files into
// the process environment, and github.com/caarlos0/env/v11, which parses the
// environment into tagged structs.
//
//	var cfg struct {
//	    Source string `env:"FLAGD_SOURCE" envDefault:"file"`
//	}
//	config.MustLoadEnv("./deploy/.env")
//	config.MustLoad(&cfg)
//
// Errors wrap the sentinels ErrParsingConfig, ErrLoadingEnvFile and
// ErrNilPointer and can be checked with errors.Is.
package config
