// Package config loads typed configuration from environment variables
// and optional dotenv files using github.com/caarlos0/env/v11 tags.
package config
