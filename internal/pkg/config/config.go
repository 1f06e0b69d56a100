package config

import (
	"errors"
	"strings"

	"github.com/linkmint/linkmint/app/models"
	"github.com/linkmint/linkmint/app/repository"
	"github.com/linkmint/linkmint/internal/pkg/env"
	"gorm.io/gorm"
)

// Config holds all process-lifetime settings. It is constructed once at
// startup and passed by reference to the components that need it; nothing
// reads credentials from ambient globals after boot.
type Config struct {
	AppHost string
	AppPort string
	BaseURL string

	StripeSecretKey     string
	StripeWebhookSecret string
	PrintfulAPIKey      string

	EmailProvider string
	EmailAPIKey   string
	EmailFrom     string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string

	PreviewTokenSecret string
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		AppHost: env.GetEnv("APP_HOST", "localhost"),
		AppPort: env.GetEnv("APP_PORT", "8000"),
		BaseURL: strings.TrimRight(env.GetEnv("BASE_URL", "http://localhost:8000"), "/"),

		StripeSecretKey:     env.GetEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		PrintfulAPIKey:      env.GetEnv("PRINTFUL_API_KEY", ""),

		EmailProvider: strings.ToLower(strings.TrimSpace(env.GetEnv("EMAIL_PROVIDER", "disabled"))),
		EmailAPIKey:   env.GetEnv("EMAIL_API_KEY", ""),
		EmailFrom:     env.GetEnv("EMAIL_FROM", ""),

		SMTPHost:     env.GetEnv("SMTP_HOST", ""),
		SMTPPort:     env.GetEnv("SMTP_PORT", "587"),
		SMTPUsername: env.GetEnv("SMTP_USERNAME", ""),
		SMTPPassword: env.GetEnv("SMTP_PASSWORD", ""),

		PreviewTokenSecret: env.GetEnv("PREVIEW_TOKEN_SECRET", "change_me"),
	}
}

// ApplyCredentials overlays operator-set keys from the credential store.
// Keys written via the CLI take precedence over the environment.
func (c *Config) ApplyCredentials(repo repository.CredentialRepository) error {
	creds, err := repo.All()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	for _, cred := range creds {
		switch cred.Provider {
		case models.CredentialProviderStripe:
			c.StripeSecretKey = cred.SecretKey
		case models.CredentialProviderPrintful:
			c.PrintfulAPIKey = cred.SecretKey
		}
	}
	return nil
}
