package config

import "time"

// DB holds the database configuration settings.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	GormEngine string // mysql, postgres or sqlite; Name is the file path for sqlite

	LogLevel        string        // gorm log level: silent, error, warn, info
	SlowThreshold   time.Duration // queries slower than this are logged as warnings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
