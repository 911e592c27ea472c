package jwt

import "time"

// Config holds token settings.
type Config struct {
	Secret string        `env:"JWT_SECRET,required"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`
	Issuer string        `env:"JWT_ISSUER" envDefault:"webix-udirdlaga"`
}
