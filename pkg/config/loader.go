package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// Load reads a .env file from the working directory (once per process,
// missing file is fine) and parses environment variables into v using
// `env` struct tags. Variables already set in the environment win over
// the .env file.
//
//	type Config struct {
//		Mongo mongo.Config
//		HTTP  httpserver.Config
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})
	return parse(v)
}

// LoadFiles loads the given dotenv files before parsing. Unlike Load a
// missing file is an error. Earlier files take precedence over later ones
// and the process environment over all of them.
func LoadFiles[T any](v *T, files ...string) error {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return errors.Join(ErrLoadingEnvFile, err)
		}
	}
	return parse(v)
}

// MustLoad is Load that panics on error, for use in main.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

func parse[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}
