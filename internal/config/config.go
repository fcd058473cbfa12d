package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort           string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL        string `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns         int    `env:"DB_MAX_CONNS" envDefault:"10"`
	SessionSecret      string `env:"SESSION_SECRET"`
	SessionTTLHours    int    `env:"SESSION_TTL_HOURS" envDefault:"336"`
	RedisAddr          string `env:"REDIS_ADDR"`
	RedisPassword      string `env:"REDIS_PASSWORD"`
	RedisDB            int    `env:"REDIS_DB" envDefault:"0"`
	MediaDir           string `env:"MEDIA_DIR" envDefault:"./media"`
	LoginMaxAttempts   int    `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindowMinutes int    `env:"LOGIN_WINDOW_MINUTES" envDefault:"10"`
	SSLEnabled         bool   `env:"SSL_ENABLED" envDefault:"false"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
