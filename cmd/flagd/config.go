package main

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/featurekit/pkg/flagconfig"
	"github.com/dmitrymomot/featurekit/pkg/httpserver"
	"github.com/dmitrymomot/featurekit/pkg/reload"
	"github.com/dmitrymomot/featurekit/pkg/resource"
)

const (
	sourceFile  = "file"
	sourceS3    = "s3"
	sourceRedis = "redis"

	formatYAML = "yaml"
	formatJSON = "json"
)

// envFileVar lists .env files, comma separated, loaded before the environment
// is parsed. Earlier files win over later ones.
const envFileVar = "FLAGD_ENV_FILE"

func envFiles(raw string) []string {
	var files []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	return files
}

type appConfig struct {
	Env    string `env:"APP_ENV" envDefault:"development"`
	Source string `env:"FLAGD_SOURCE" envDefault:"file"`
	Format string `env:"FLAGD_FORMAT" envDefault:"yaml"`
	Root   string `env:"FLAGD_ROOT" envDefault:"features"`

	File  string `env:"FLAGD_FILE" envDefault:"flags.yaml"`
	Watch bool   `env:"FLAGD_WATCH" envDefault:"true"`

	S3URI string `env:"FLAGD_S3_URI"`
	S3    resource.S3Config

	Redis resource.RedisConfig

	Reload reload.Settings
	HTTP   httpserver.Config
}

func (c appConfig) validate() error {
	switch c.Source {
	case sourceFile:
		if c.File == "" {
			return fmt.Errorf("FLAGD_FILE is required for the file source")
		}
	case sourceS3:
		if _, err := resource.ParseS3Location(c.S3URI); err != nil {
			return err
		}
	case sourceRedis:
		if c.Redis.Key == "" {
			return fmt.Errorf("REDIS_KEY is required for the redis source")
		}
	default:
		return fmt.Errorf("unknown FLAGD_SOURCE %q (want file, s3 or redis)", c.Source)
	}
	if _, err := c.reader(); err != nil {
		return err
	}
	return c.Reload.Validate()
}

func (c appConfig) reader() (flagconfig.Reader, error) {
	switch c.Format {
	case formatYAML:
		return flagconfig.ParseYAML, nil
	case formatJSON:
		return flagconfig.ParseJSON, nil
	default:
		return nil, fmt.Errorf("unknown FLAGD_FORMAT %q (want yaml or json)", c.Format)
	}
}
