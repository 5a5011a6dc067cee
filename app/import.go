package app

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idam-admin/idam/internal/config"
	"github.com/idam-admin/idam/internal/daemon"
	"github.com/idam-admin/idam/internal/db/models"
	"github.com/idam-admin/idam/internal/db/store"
	"github.com/idam-admin/idam/internal/identity"
	"github.com/idam-admin/idam/internal/importer"
	"github.com/idam-admin/idam/internal/logger"
)

var errImportSource = errors.New("exactly one of --file or --ldap is required")

func init() { //nolint: gochecknoinits
	importCmd.Flags().StringVar(&importFile, "file", "", "JSON file with legacy user records")
	importCmd.Flags().BoolVar(&importLDAP, "ldap", false, "Read legacy user records from the configured LDAP directory")

	rootCmd.AddCommand(importCmd)
}

var (
	importFile string
	importLDAP bool

	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Import legacy users and their role grants",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if (importFile == "") == !importLDAP {
				return errImportSource
			}

			if cfg, err = config.ReadConfig(configPath); err != nil {
				return err
			}

			return logger.Init(cfg.Log)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := importRecords(cmd)
			if err != nil {
				return err
			}

			db, err := daemon.OpenDB(cfg.DB)
			if err != nil {
				return err
			}

			if sqlDB, errDB := db.DB(); errDB == nil {
				defer func() { _ = sqlDB.Close() }()
			}

			s, err := store.New(db)
			if err != nil {
				return err
			}

			summary, errImport := identity.NewImporter(s).ImportUsers(cmd.Context(), records)

			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))

			return errImport
		},
	}
)

func importRecords(cmd *cobra.Command) ([]models.ImportUser, error) {
	if importFile != "" {
		return importer.ReadFile(importFile)
	}

	source, err := importer.NewLDAPSource(cfg.Import)
	if err != nil {
		return nil, err
	}

	return source.Fetch(cmd.Context())
}
