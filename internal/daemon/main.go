// Package daemon wires configuration, database, provider synchronization and the web service.
package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/idam-admin/idam/internal/auth"
	"github.com/idam-admin/idam/internal/claims"
	"github.com/idam-admin/idam/internal/config"
	"github.com/idam-admin/idam/internal/db/store"
	"github.com/idam-admin/idam/internal/identity"
	"github.com/idam-admin/idam/internal/provider"
	"github.com/idam-admin/idam/internal/web"
	"github.com/idam-admin/idam/internal/web/handler"
	authmw "github.com/idam-admin/idam/internal/web/middleware/auth"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	webService *web.Service
	revoker    *provider.Revoker
}

// openDB is replaced in tests to observe the database handle.
var openDB = OpenDB

// New opens the database and builds all services. Nothing is started yet.
// The database is closed again if any service can not be built.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	db, err := openDB(cfg.DB)
	if err != nil {
		return nil, err
	}

	d := &Daemon{cfg: cfg, db: db}

	if err := d.build(ctx); err != nil {
		d.closeDB()

		return nil, err
	}

	return d, nil
}

func (d *Daemon) build(ctx context.Context) error {
	s, err := store.New(d.db)
	if err != nil {
		return err //nolint:wrapcheck
	}

	var sync identity.ProviderSync

	if d.cfg.Provider.Enabled {
		client := provider.NewClient(d.cfg.Provider)
		d.revoker = provider.NewRevoker(client, d.cfg.Provider, provider.NewRetryPolicy(d.cfg.Provider.WithDefaults().MaxRetries))
		sync = provider.NewGateway(client, d.revoker, d.cfg.Provider)
	} else {
		log.Warn().Msg("identity provider synchronization disabled")
	}

	var verifier authmw.TokenVerifier

	if d.cfg.Auth.Enabled {
		v, errVerifier := auth.NewVerifier(ctx, d.cfg.Auth)
		if errVerifier != nil {
			return errVerifier //nolint:wrapcheck
		}

		verifier = v
	}

	d.webService, err = web.New(d.cfg, handler.Deps{
		DB:       d.db,
		Identity: identity.NewService(s, sync),
		Claims:   claims.NewProjector(s),
	}, verifier)

	return err //nolint:wrapcheck
}

func (d *Daemon) closeDB() {
	sqlDB, err := d.db.DB()
	if err != nil {
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}
}

// Start runs the revocation worker and the web service until SIGINT or SIGTERM.
// On shutdown the worker is cancelled and waited for before the database is closed.
func (d *Daemon) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if d.revoker != nil {
		d.revoker.Start(ctx)
	}

	listenErr := make(chan error, 1)

	go func() {
		listenErr <- d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
	}()

	shutdown := make(chan struct{})

	go func() {
		d.webService.WaitShutdown()
		close(shutdown)
	}()

	var err error

	select {
	case err = <-listenErr:
	case <-shutdown:
		err = <-listenErr
	}

	cancel()

	if d.revoker != nil {
		d.revoker.Wait()
	}

	d.closeDB()

	return err
}
