package provider

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Gateway applies the synchronization policy on top of a ManagementAPI.
type Gateway struct {
	api     ManagementAPI
	revoker *Revoker
	cfg     Config
}

// NewGateway creates a gateway. revoker may be shared with other callers.
func NewGateway(api ManagementAPI, revoker *Revoker, cfg Config) *Gateway {
	return &Gateway{
		api:     api,
		revoker: revoker,
		cfg:     cfg.WithDefaults(),
	}
}

// UpdateUser pushes the local user attributes to the provider.
func (g *Gateway) UpdateUser(ctx context.Context, subjectID string, attrs UserAttributes) error {
	log.Info().Str("subject_id", subjectID).Msg("update user in identity provider")

	if err := g.api.UpdateUserAttributes(ctx, subjectID, attrs); err != nil {
		log.Error().Err(err).Str("subject_id", subjectID).Msg("identity provider user update failed")

		return unavailable("update user", err)
	}

	return nil
}

// DeleteUser deletes the provider account.
func (g *Gateway) DeleteUser(ctx context.Context, subjectID string) error {
	log.Info().Str("subject_id", subjectID).Msg("delete user from identity provider")

	if err := g.api.DeleteUser(ctx, subjectID); err != nil {
		log.Error().Err(err).Str("subject_id", subjectID).Msg("identity provider user deletion failed")

		return unavailable("delete user", err)
	}

	return nil
}

// RevokeRefreshTokens acquires a management token to fail fast on bad
// credentials, then queues the revocation and returns. It does not wait for
// the background job.
func (g *Gateway) RevokeRefreshTokens(ctx context.Context, subjectID string) error {
	log.Info().Str("subject_id", subjectID).Msg("revoke refresh tokens for user")

	if _, err := g.api.AcquireManagementToken(ctx); err != nil {
		return unavailable("revoke refresh tokens", err)
	}

	jobID, err := g.revoker.Enqueue(subjectID)
	if err != nil {
		return unavailable("revoke refresh tokens", err)
	}

	log.Debug().Str("job_id", jobID).Str("subject_id", subjectID).Msg("refresh token revocation dispatched")

	return nil
}

// RecentUsers returns the provider's total user count and newest users.
func (g *Gateway) RecentUsers(ctx context.Context) (RecentUsers, error) {
	log.Info().Int("count", g.cfg.RecentUsersCount).Msg("getting recent users from identity provider")

	users, err := g.api.ListRecentUsers(ctx, g.cfg.RecentUsersCount)
	if err != nil {
		return RecentUsers{}, unavailable("list recent users", err)
	}

	return users, nil
}
