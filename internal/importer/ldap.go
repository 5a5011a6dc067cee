package importer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"

	"github.com/idam-admin/idam/internal/db/models"
)

// directory is the part of *ldap.Conn the source uses.
type directory interface {
	Bind(username, password string) error
	SearchWithPaging(req *ldap.SearchRequest, pagingSize uint32) (*ldap.SearchResult, error)
	Close() error
}

// LDAPSource reads import records from a legacy directory.
type LDAPSource struct {
	config       LDAPConfig
	defaultRoles []models.ImportRole
	dial         func() (directory, error)
}

// NewLDAPSource creates a source. ErrLDAPDisabled is returned if LDAP is not enabled.
func NewLDAPSource(cfg Config) (*LDAPSource, error) {
	if !cfg.LDAP.Enabled {
		return nil, ErrLDAPDisabled
	}

	s := &LDAPSource{
		config:       cfg.LDAP.WithDefaults(),
		defaultRoles: cfg.DefaultRoles,
	}
	s.dial = s.connect

	return s, nil
}

// connect establishes a connection to the LDAP server.
func (s *LDAPSource) connect() (directory, error) {
	hostPort := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	ldapURL := "ldap://" + hostPort
	if s.config.UseSSL {
		ldapURL = "ldaps://" + hostPort
	}

	var tlsConfig *tls.Config
	if s.config.UseSSL || s.config.UseTLS {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: s.config.SkipVerify, //nolint:gosec // opt-in for test directories
			ServerName:         s.config.Host,
		}
	}

	conn, err := ldap.DialURL(ldapURL, ldap.DialWithTLSConfig(tlsConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LDAP server: %w", err)
	}

	if !s.config.UseSSL && s.config.UseTLS {
		if errStartTLS := conn.StartTLS(tlsConfig); errStartTLS != nil {
			if errClose := conn.Close(); errClose != nil {
				log.Error().Err(errClose).Msg("failed to close LDAP connection")
			}

			return nil, fmt.Errorf("failed to start TLS: %w", errStartTLS)
		}
	}

	conn.SetTimeout(time.Duration(s.config.Timeout) * time.Second)

	return conn, nil
}

// Fetch returns one import record per directory entry matching the user filter.
// Every record carries the configured default roles.
func (s *LDAPSource) Fetch(ctx context.Context) ([]models.ImportUser, error) {
	conn, err := s.dial()
	if err != nil {
		return nil, err
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close LDAP connection")
		}
	}()

	if s.config.BindDN != "" {
		if err := conn.Bind(s.config.BindDN, s.config.BindPassword); err != nil {
			return nil, fmt.Errorf("failed to bind with service account: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ldap import cancelled: %w", err)
	}

	attrs := []string{s.config.EmailAttr, s.config.FirstNameAttr, s.config.LastNameAttr}
	if s.config.SubjectIDAttr != "" {
		attrs = append(attrs, s.config.SubjectIDAttr)
	}

	req := ldap.NewSearchRequest(
		s.config.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		s.config.Timeout,
		false,
		s.config.UserFilter,
		attrs,
		nil,
	)

	res, err := conn.SearchWithPaging(req, s.config.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to search for users: %w", err)
	}

	records := make([]models.ImportUser, 0, len(res.Entries))
	for _, entry := range res.Entries {
		records = append(records, s.record(entry))
	}

	log.Info().Int("entries", len(records)).Str("base_dn", s.config.BaseDN).Msg("ldap users fetched")

	return records, nil
}

func (s *LDAPSource) record(entry *ldap.Entry) models.ImportUser {
	rec := models.ImportUser{
		EmailAddress: strings.TrimSpace(entry.GetAttributeValue(s.config.EmailAttr)),
		FirstName:    entry.GetAttributeValue(s.config.FirstNameAttr),
		LastName:     entry.GetAttributeValue(s.config.LastNameAttr),
		Roles:        append([]models.ImportRole(nil), s.defaultRoles...),
	}

	if s.config.SubjectIDAttr != "" {
		rec.UserID = entry.GetAttributeValue(s.config.SubjectIDAttr)
	}

	return rec
}
