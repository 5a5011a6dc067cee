package config

import (
	"time"

	"github.com/idam-admin/idam/internal/auth"
	"github.com/idam-admin/idam/internal/importer"
	"github.com/idam-admin/idam/internal/logger"
	"github.com/idam-admin/idam/internal/provider"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	Title     string
	DB        DB
	Log       logger.Log
	Webserver Webserver
	Auth      auth.Config
	Provider  provider.Config
	Import    importer.Config
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool          // use clean path middleware to allow multi slash requests
	DisableRecover bool          // disable recover middleware
	Port           int           // listening port for the webserver
	ShutDownTime   int           // seconds checkalive reports 503 before shutdown
	URL            string        // base url for the webserver
	BodyLimit      int           // maximum request body size in bytes, e.g. for imports
	ReadTimeout    time.Duration // fiber read timeout
	WriteTimeout   time.Duration // fiber write timeout
}
