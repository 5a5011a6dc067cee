// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes single value overrides, e.g. IDAM_WEBSERVER_PORT.
	EnvPrefix = "IDAM"
	// EnvJSON holds a JSON document merged over the file config.
	EnvJSON = "IDAM_CONFIG_JSON"

	mainConfigFile      = "main.toml"
	defaultShutDownTime = 5
)

// ReadConfig reads <path>main.toml, applies IDAM_* environment overrides and
// finally merges the JSON document in IDAM_CONFIG_JSON.
func ReadConfig(path string) (Config, error) {
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, mainConfigFile))
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	if jsonConfig := os.Getenv(EnvJSON); jsonConfig != "" {
		var err error

		c, err = decodeAndMergeConfig(c, jsonConfig)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	if err := json.Unmarshal([]byte(configAsJSON), &c); err != nil {
		return Config{}, errors.Wrapf(err, "failed to read %s", EnvJSON)
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer

	if err := toml.NewEncoder(&buffer).Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate checks the settings the daemon can not start without and fills defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	switch strings.ToLower(c.DB.GormEngine) {
	case "", "mysql", "postgres", "sqlite":
	default:
		return errors.Wrapf(ErrUnsupportedGormEngine, "%s: %q", invalidErrMessage, c.DB.GormEngine)
	}

	if c.Provider.Enabled {
		if c.Provider.Domain == "" && c.Provider.BaseURL == "" {
			return errors.Wrap(ErrProviderDomainMissing, invalidErrMessage)
		}

		if c.Provider.ClientID == "" || c.Provider.ClientSecret == "" {
			return errors.Wrap(ErrProviderCredentialsMissing, invalidErrMessage)
		}
	}

	if c.Auth.Enabled && c.Auth.Issuer == "" {
		return errors.Wrap(ErrAuthIssuerMissing, invalidErrMessage)
	}

	return nil
}
