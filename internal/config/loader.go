package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"sentinelmind/pkg/logging"
)

// Environment variable names.
const (
	EnvTenantID          = "TENANT_ID"
	EnvClientID          = "CLIENT_ID"
	EnvClientSecret      = "CLIENT_SECRET"
	EnvAllowWriteActions = "ALLOW_WRITE_ACTIONS"
	EnvOktaOrgURL        = "OKTA_ORG_URL"
	EnvOktaClientID      = "OKTA_OAUTH_CLIENT_ID"
	EnvOktaKeyID         = "OKTA_OAUTH_KID"
	EnvOktaPEMPath       = "OKTA_OAUTH_PEM_PATH"
	EnvOktaScopes        = "OKTA_OAUTH_SCOPES"
	EnvLogFile           = "SENTINEL_LOG_FILE"
)

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Load builds the configuration from defaults, the YAML file at path (if path
// is not empty) and the environment, then validates it.
func Load(path string, lookup LookupFunc) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("config file %s does not exist", path)
			}
			return Config{}, fmt.Errorf("error reading config from %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", path)
	}

	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set(EnvTenantID, &cfg.Entra.TenantID)
	set(EnvClientID, &cfg.Entra.ClientID)
	set(EnvClientSecret, &cfg.Entra.ClientSecret)
	set(EnvOktaOrgURL, &cfg.Okta.OrgURL)
	set(EnvOktaClientID, &cfg.Okta.ClientID)
	set(EnvOktaKeyID, &cfg.Okta.KeyID)
	set(EnvOktaPEMPath, &cfg.Okta.PrivateKeyPath)
	set(EnvOktaScopes, &cfg.Okta.Scopes)
	set(EnvLogFile, &cfg.Logging.File)

	if v, ok := lookup(EnvAllowWriteActions); ok && strings.TrimSpace(v) != "" {
		enabled, err := ParseBool(v)
		if err != nil {
			return ValidationError{Field: EnvAllowWriteActions, Value: v, Message: err.Error()}
		}
		cfg.AllowWriteActions = enabled
	}

	return nil
}

// ParseBool parses a boolean flag value. It accepts what strconv.ParseBool
// accepts, ignoring surrounding whitespace.
func ParseBool(v string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("must be a boolean (true/false/1/0), got %q", v)
	}
	return b, nil
}
