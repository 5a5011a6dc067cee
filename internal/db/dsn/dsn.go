// Package dsn builds database connection strings and gorm dialectors from the configuration.
package dsn

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/idam-admin/idam/internal/config"
)

const (
	// EngineMySQL selects gorm.io/driver/mysql.
	EngineMySQL = "mysql"
	// EnginePostgres selects gorm.io/driver/postgres.
	EnginePostgres = "postgres"
	// EngineSQLite selects github.com/glebarez/sqlite. DB.Name is the file path.
	EngineSQLite = "sqlite"
)

// Create builds the Data Source Name from the configuration.
func Create(dbCfg config.DB) (string, error) {
	switch strings.ToLower(dbCfg.GormEngine) {
	case EngineMySQL:
		out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
			dbCfg.User,
			dbCfg.Password,
			dbCfg.Host,
			dbCfg.Port,
			dbCfg.Name,
		)

		if dbCfg.Extras != "" {
			out += "?" + dbCfg.Extras
		}

		return out, nil
	case EnginePostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(dbCfg.User, dbCfg.Password),
			Host:     fmt.Sprintf("%s:%d", dbCfg.Host, dbCfg.Port),
			Path:     "/" + dbCfg.Name,
			RawQuery: dbCfg.Extras,
		}

		return u.String(), nil
	case EngineSQLite:
		out := dbCfg.Name
		if dbCfg.Extras != "" {
			out += "?" + dbCfg.Extras
		}

		return out, nil
	default:
		return "", errors.Wrapf(config.ErrUnsupportedGormEngine, "%q", dbCfg.GormEngine)
	}
}

// Dialector returns the gorm dialector for the configured engine.
func Dialector(dbCfg config.DB) (gorm.Dialector, error) {
	out, err := Create(dbCfg)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(dbCfg.GormEngine) {
	case EngineMySQL:
		return mysql.Open(out), nil
	case EnginePostgres:
		return postgres.Open(out), nil
	default:
		return sqlite.Open(out), nil
	}
}
