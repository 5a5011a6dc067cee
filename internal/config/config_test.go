package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectConfigPath(t *testing.T) string {
	t.Helper()

	projectRoot, err := filepath.Abs("../../")
	require.NoError(t, err)

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(projectConfigPath(t))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Title)
	assert.Equal(t, 8080, cfg.Webserver.Port)
	assert.NotEmpty(t, cfg.Webserver.URL)
	assert.Equal(t, 30*time.Second, cfg.Webserver.ReadTimeout)

	assert.Equal(t, "sqlite", cfg.DB.GormEngine)
	assert.Equal(t, 500*time.Millisecond, cfg.DB.SlowThreshold)

	assert.Equal(t, "info", cfg.Log.LogLevel)
	assert.Equal(t, "idam-admin", cfg.Log.ServiceName)
	assert.True(t, cfg.Log.Console.Enabled)
	assert.Equal(t, "access.log", cfg.Log.File.Access.Name)

	assert.Equal(t, "tenant.eu.auth0.com", cfg.Provider.Domain)
	assert.Equal(t, 50, cfg.Provider.PageSize)
	assert.Equal(t, 30*time.Second, cfg.Provider.Timeout)

	assert.Equal(t, "IdentityAdministrator", cfg.Auth.AdminRole)
	assert.Equal(t, "(objectClass=inetOrgPerson)", cfg.Import.LDAP.UserFilter)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(t.TempDir() + string(filepath.Separator))
	require.Error(t, err)
}

func TestConfigValidation(t *testing.T) {
	valid := func() Config {
		return Config{Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"}}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Webserver.Port = 0 }, wantErr: ErrWebServerPortCanNotBeZero},
		{name: "missing URL", mutate: func(c *Config) { c.Webserver.URL = "" }, wantErr: ErrEmptyURL},
		{name: "unknown engine", mutate: func(c *Config) { c.DB.GormEngine = "oracle" }, wantErr: ErrUnsupportedGormEngine},
		{
			name:    "provider without domain",
			mutate:  func(c *Config) { c.Provider.Enabled = true },
			wantErr: ErrProviderDomainMissing,
		},
		{
			name: "provider without credentials",
			mutate: func(c *Config) {
				c.Provider.Enabled = true
				c.Provider.Domain = "tenant.eu.auth0.com"
			},
			wantErr: ErrProviderCredentialsMissing,
		},
		{
			name: "provider complete",
			mutate: func(c *Config) {
				c.Provider.Enabled = true
				c.Provider.BaseURL = "http://localhost:9999"
				c.Provider.ClientID = "id"
				c.Provider.ClientSecret = "secret"
			},
		},
		{name: "auth without issuer", mutate: func(c *Config) { c.Auth.Enabled = true }, wantErr: ErrAuthIssuerMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)

			err := validate(&c)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, defaultShutDownTime, c.Webserver.ShutDownTime)

				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReadConfigWithJSONOverride(t *testing.T) {
	t.Setenv(EnvJSON, `{"Title":"Test Override","Webserver":{"Port":9090}}`)

	cfg, err := ReadConfig(projectConfigPath(t))
	require.NoError(t, err)

	assert.Equal(t, "Test Override", cfg.Title)
	assert.Equal(t, 9090, cfg.Webserver.Port)
	assert.NotEmpty(t, cfg.Webserver.URL, "fields missing from the JSON document are kept")
}

func TestReadConfigWithEnvOverride(t *testing.T) {
	t.Setenv("IDAM_WEBSERVER_PORT", "7070")
	t.Setenv("IDAM_PROVIDER_PAGESIZE", "25")

	cfg, err := ReadConfig(projectConfigPath(t))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Webserver.Port)
	assert.Equal(t, 25, cfg.Provider.PageSize)
}

func TestReadConfigWithBrokenJSON(t *testing.T) {
	t.Setenv(EnvJSON, `{"Title":`)

	_, err := ReadConfig(projectConfigPath(t))
	require.Error(t, err)
}

func TestDumpConfig(t *testing.T) {
	cfg := Config{
		Title:     "Test",
		DevMode:   true,
		Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
	}

	tomlStr, err := DumpConfig(&cfg)
	require.NoError(t, err)
	assert.Contains(t, tomlStr, "Test")

	// the dump can be read back
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, mainConfigFile), []byte(tomlStr), 0o600))

	back, err := ReadConfig(dir + string(filepath.Separator))
	require.NoError(t, err)
	assert.Equal(t, cfg.Title, back.Title)
	assert.Equal(t, cfg.Webserver.Port, back.Webserver.Port)
}

func TestDumpConfigJSON(t *testing.T) {
	cfg := Config{
		Title:     "Test",
		Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
	}

	jsonStr, err := DumpConfigJSON(&cfg)
	require.NoError(t, err)
	assert.Contains(t, jsonStr, `"Title": "Test"`)
}
