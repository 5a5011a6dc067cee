package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnsupportedGormEngine error if db.gormEngine is not one of mysql, postgres or sqlite.
	ErrUnsupportedGormEngine = errors.New("toml config db.gormEngine is not supported")

	// ErrProviderDomainMissing error if the provider is enabled without domain or base url.
	ErrProviderDomainMissing = errors.New("toml config provider.domain or provider.baseURL is required when enabled")

	// ErrProviderCredentialsMissing error if the provider is enabled without client credentials.
	ErrProviderCredentialsMissing = errors.New("toml config provider.clientID and provider.clientSecret are required when enabled")

	// ErrAuthIssuerMissing error if bearer authentication is enabled without issuer.
	ErrAuthIssuerMissing = errors.New("toml config auth.issuer is required when enabled")
)
