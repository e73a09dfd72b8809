package auth

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// EnvKey is the environment variable holding the Anthropic API key.
const EnvKey = "ANTHROPIC_API_KEY"

// Error indicates a missing or unusable scoring credential. Engagement
// analysis never needs one; sentiment scoring refuses to start without it.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("credential error: %s", e.Reason)
}

// ResolveAPIKey returns the API key for the scoring provider, checking a
// .env file in the working directory, then the environment, then the
// config value, in that order.
func ResolveAPIKey(configKey string) (string, error) {
	// Missing .env is the normal case, not an error. Load never
	// overrides variables that are already set.
	if err := godotenv.Load(); err == nil {
		logrus.Debug("loaded credentials from .env")
	}

	if key := os.Getenv(EnvKey); key != "" {
		return key, nil
	}
	if configKey != "" {
		return configKey, nil
	}

	return "", &Error{
		Reason: fmt.Sprintf("no API key found: set %s (directly or via .env) or sentiment.api_key in the config file", EnvKey),
	}
}
