// Package claims projects a user's identity data into token claims.
package claims

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/idam-admin/idam/internal/db/store"
)

// ErrUserLookupFailed is returned when the store could not be queried.
var ErrUserLookupFailed = errors.New("user lookup failed")

// ClaimType identifies a claim.
type ClaimType int

const (
	// FirstName carries the user's first name.
	FirstName ClaimType = iota + 1
	// Role carries one granted role name.
	Role
	// TermsAndConditions carries the id of the latest accepted terms version.
	TermsAndConditions
)

func (t ClaimType) String() string {
	switch t {
	case FirstName:
		return "FirstName"
	case Role:
		return "Role"
	case TermsAndConditions:
		return "TermsAndConditions"
	default:
		return "ClaimType(" + strconv.Itoa(int(t)) + ")"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t ClaimType) MarshalText() ([]byte, error) {
	switch t {
	case FirstName, Role, TermsAndConditions:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("unknown claim type %d", int(t))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ClaimType) UnmarshalText(text []byte) error {
	for _, c := range []ClaimType{FirstName, Role, TermsAndConditions} {
		if c.String() == string(text) {
			*t = c

			return nil
		}
	}

	return fmt.Errorf("unknown claim type %q", text)
}

// Claim is one typed assertion about a subject.
type Claim struct {
	Type  ClaimType `json:"type"`
	Value string    `json:"value"`
	// Host is the website of a role claim, set only for relying-party projections.
	Host string `json:"host,omitempty"`
}

// Projector builds claim sets from the identity store. It only reads.
type Projector struct {
	store store.IdentityStore
}

// NewProjector creates a projector.
func NewProjector(s store.IdentityStore) *Projector {
	return &Projector{store: s}
}

// Project returns the claims of subjectID, or nil without error if no user is bound to it.
// Claims are ordered: first name, roles in grant order, latest accepted terms version.
func (p *Projector) Project(ctx context.Context, subjectID string) ([]Claim, error) {
	return p.project(ctx, subjectID, false)
}

// ProjectForRelyingParty is Project with the website host set on each role claim.
func (p *Projector) ProjectForRelyingParty(ctx context.Context, subjectID string) ([]Claim, error) {
	return p.project(ctx, subjectID, true)
}

func (p *Projector) project(ctx context.Context, subjectID string, withHost bool) ([]Claim, error) {
	user, err := p.store.FindUserBySubjectID(ctx, subjectID)

	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Debug().Str("subject_id", subjectID).Msg("no user for subject, no claims")

		return nil, nil
	case err != nil:
		return nil, lookupFailed(subjectID, err)
	}

	grants, err := p.store.FindUserRoleRows(ctx, user.ID)
	if err != nil {
		return nil, lookupFailed(subjectID, err)
	}

	out := make([]Claim, 0, len(grants)+2)
	out = append(out, Claim{Type: FirstName, Value: user.FirstName})

	for _, g := range grants {
		if g.Role == nil {
			continue
		}

		claim := Claim{Type: Role, Value: g.Role.Name}
		if withHost && g.Role.Website != nil {
			claim.Host = g.Role.Website.Host
		}

		out = append(out, claim)
	}

	terms, err := p.store.FindLatestAcceptedTerms(ctx, user.ID)

	switch {
	case err == nil:
		out = append(out, Claim{Type: TermsAndConditions, Value: strconv.FormatUint(terms.TermsVersionID, 10)})
	case !errors.Is(err, store.ErrNotFound):
		return nil, lookupFailed(subjectID, err)
	}

	return out, nil
}

func lookupFailed(subjectID string, err error) error {
	log.Error().Err(err).Str("subject_id", subjectID).Msg("claims projection failed")

	return fmt.Errorf("%w: subject %s: %w", ErrUserLookupFailed, subjectID, err)
}
