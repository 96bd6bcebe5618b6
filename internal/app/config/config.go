package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	GitHubToken   string `env:"GITHUB_TOKEN,required"`
	GitHubAPIURL  string `env:"GITHUB_API_URL"`
	GitHubOwner   string `env:"GITHUB_OWNER"`
	WebhookSecret string `env:"GITHUB_WEBHOOK_SECRET"`

	DiscordToken  string `env:"DISCORD_TOKEN,required"`
	DiscordAPIURL string `env:"DISCORD_API_URL"`
	PTALRoleID    string `env:"PTAL_ROLE_ID"`

	ShowBotReviews bool          `env:"SHOW_BOT_REVIEWS" envDefault:"false"`
	SweepInterval  time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	RemoteTimeout  time.Duration `env:"REMOTE_TIMEOUT" envDefault:"10s"`
	WorkerCount    int           `env:"WORKER_COUNT" envDefault:"4"`
	// TaskTimeout bounds one whole event fan-out on the pool, not a single
	// remote call; those are bounded by RemoteTimeout.
	TaskTimeout time.Duration `env:"TASK_TIMEOUT" envDefault:"60s"`
}

func Load() (Config, error) {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
