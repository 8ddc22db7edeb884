package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func loadFromEnv(cfg *Config) error {
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSL_MODE")

	setString(&cfg.SendGrid.APIKey, "SENDGRID_API_KEY")
	setString(&cfg.SendGrid.FromEmail, "SENDGRID_NOTIFICATIONS_FROM_EMAIL")
	setString(&cfg.SendGrid.FromName, "SENDGRID_FROM_NAME")

	setString(&cfg.Relance.BaseURL, "RELANCE_BASE_URL")
	setString(&cfg.Relance.LockKey, "RELANCE_LOCK_KEY")
	setString(&cfg.Redis.URL, "REDIS_URL")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Server.Port, "PORT")

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	for _, f := range []func() error{
		func() error { return setInt(&cfg.Database.MaxRetries, "DB_MAX_RETRIES") },
		func() error { return setDuration(&cfg.Database.RetryDelay, "DB_RETRY_DELAY") },
		func() error { return setInt(&cfg.Relance.CooldownDays, "RELANCE_COOLDOWN_DAYS") },
		func() error { return setDuration(&cfg.Relance.SendTimeout, "RELANCE_SEND_TIMEOUT") },
		func() error { return setDuration(&cfg.Relance.Interval, "RELANCE_INTERVAL") },
		func() error { return setDuration(&cfg.Relance.LockTTL, "RELANCE_LOCK_TTL") },
		func() error { return setBool(&cfg.Logging.Pretty, "LOG_PRETTY") },
	} {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}

// empty variables count as unset
func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", key, v)
	}
	*dst = d
	return nil
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		*dst = true
	case "false", "0", "no":
		*dst = false
	default:
		return fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
