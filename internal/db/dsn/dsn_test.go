package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idam-admin/idam/internal/config"
)

func TestCreate(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      config.DB
		expected string
		wantErr  error
	}{
		{
			name: "mysql",
			cfg: config.DB{
				GormEngine: "mysql", User: "idam", Password: "secret", Host: "db", Port: 3306, Name: "idam",
				Extras: "parseTime=true&charset=utf8mb4",
			},
			expected: "idam:secret@tcp(db:3306)/idam?parseTime=true&charset=utf8mb4",
		},
		{
			name:     "mysql without extras",
			cfg:      config.DB{GormEngine: "MySQL", User: "idam", Password: "secret", Host: "db", Port: 3306, Name: "idam"},
			expected: "idam:secret@tcp(db:3306)/idam",
		},
		{
			name: "postgres escapes credentials",
			cfg: config.DB{
				GormEngine: "postgres", User: "idam", Password: "p@ss word", Host: "db", Port: 5432, Name: "idam",
				Extras: "sslmode=disable",
			},
			expected: "postgres://idam:p%40ss%20word@db:5432/idam?sslmode=disable",
		},
		{
			name:     "sqlite",
			cfg:      config.DB{GormEngine: "sqlite", Name: "idam.db", Extras: "_pragma=foreign_keys(1)"},
			expected: "idam.db?_pragma=foreign_keys(1)",
		},
		{name: "unsupported", cfg: config.DB{GormEngine: "oracle"}, wantErr: config.ErrUnsupportedGormEngine},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Create(tc.cfg)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, out)
		})
	}
}

func TestDialector(t *testing.T) {
	for engine, name := range map[string]string{
		EngineMySQL:    "mysql",
		EnginePostgres: "postgres",
		EngineSQLite:   "sqlite",
	} {
		d, err := Dialector(config.DB{GormEngine: engine, Name: "idam", Host: "db", Port: 1})
		require.NoError(t, err)
		assert.Equal(t, name, d.Name())
	}

	_, err := Dialector(config.DB{GormEngine: ""})
	require.ErrorIs(t, err, config.ErrUnsupportedGormEngine)
}
