package config

import "github.com/caarlos0/env/v11"

type Config struct {
	DatabaseURL    string `env:"DATABASE_URL,required,notEmpty"`
	Port           string `env:"PORT"             envDefault:"3333"`
	JWTSecret      string `env:"JWT_SECRET,required,notEmpty"`
	MetricsUser    string `env:"METRICS_USER"`
	MetricsPass    string `env:"METRICS_PASS"`
	PprofSecret    string `env:"PPROF_SECRET"`
	EditWindowDays int    `env:"EDIT_WINDOW_DAYS" envDefault:"3"`
	ReminderCron   string `env:"REMINDER_CRON"    envDefault:"0 8 * * *"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
