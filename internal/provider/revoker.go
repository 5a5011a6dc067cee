package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RevocationResult describes one finished revocation job.
type RevocationResult struct {
	JobID     string
	SubjectID string
	// Pages is the number of credential pages requested.
	Pages int
	// Revoked is the number of credentials deleted.
	Revoked int
	// Failed is the number of credentials that could not be deleted.
	Failed int
	// Err is set when the job was aborted, e.g. the listing failed or the worker was stopped.
	Err error
}

type revocationJob struct {
	id        string
	subjectID string
}

// Revoker revokes all refresh tokens of a subject in the background.
// Jobs are queued with Enqueue and processed by the goroutine started with Start.
// Each finished job is logged and published on Results without blocking.
type Revoker struct {
	api      ManagementAPI
	policy   RetryPolicy
	pageSize int

	jobs    chan revocationJob
	results chan RevocationResult

	wg sync.WaitGroup
}

// NewRevoker creates a revoker. It does nothing until Start is called.
func NewRevoker(api ManagementAPI, cfg Config, policy RetryPolicy) *Revoker {
	cfg = cfg.WithDefaults()

	return &Revoker{
		api:      api,
		policy:   policy,
		pageSize: cfg.PageSize,
		jobs:     make(chan revocationJob, cfg.RevocationQueueSize),
		results:  make(chan RevocationResult, cfg.RevocationQueueSize),
	}
}

// Enqueue schedules revocation for subjectID and returns the job id.
// It never blocks; ErrRevocationQueueFull is returned if the queue is full.
func (r *Revoker) Enqueue(subjectID string) (string, error) {
	if subjectID == "" {
		return "", ErrEmptySubjectID
	}

	job := revocationJob{id: uuid.NewString(), subjectID: subjectID}

	select {
	case r.jobs <- job:
		log.Debug().Str("job_id", job.id).Str("subject_id", subjectID).Msg("revocation job queued")

		return job.id, nil
	default:
		return "", ErrRevocationQueueFull
	}
}

// Results publishes finished jobs. Results are dropped if nobody keeps up.
func (r *Revoker) Results() <-chan RevocationResult {
	return r.results
}

// Start launches the worker goroutine. It stops when ctx is cancelled.
func (r *Revoker) Start(ctx context.Context) {
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()

		r.run(ctx)
	}()
}

// Wait blocks until the worker goroutine has returned.
func (r *Revoker) Wait() {
	r.wg.Wait()
}

func (r *Revoker) run(ctx context.Context) {
	log.Info().Msg("revocation worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Int("pending_jobs", len(r.jobs)).Msg("revocation worker stopping")

			return
		case job := <-r.jobs:
			res := r.RevokeAll(ctx, job.subjectID)
			res.JobID = job.id

			r.report(res)
		}
	}
}

// RevokeAll pages through the subject's refresh tokens and deletes each one.
// A page shorter than the page size ends the loop. A credential that can not be
// deleted is counted as failed and the batch continues. Listing errors and
// cancellation abort the job; cancellation is checked before every page request.
func (r *Revoker) RevokeAll(ctx context.Context, subjectID string) RevocationResult {
	res := RevocationResult{SubjectID: subjectID}

	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			res.Err = fmt.Errorf("revocation cancelled before page %d: %w", page, err)

			return res
		}

		credentials, _, err := r.api.ListDeviceCredentials(ctx, subjectID, CredentialTypeRefreshToken, page, r.pageSize)
		if err != nil {
			res.Err = unavailable(fmt.Sprintf("list device credentials page %d", page), err)

			return res
		}

		res.Pages++

		log.Info().Str("subject_id", subjectID).Int("page", page).Int("count", len(credentials)).
			Msg("revoking refresh tokens")

		for _, credential := range credentials {
			errDelete := r.policy.Do(ctx, func(ctx context.Context) error {
				return r.api.DeleteDeviceCredential(ctx, credential.ID)
			})
			if errDelete != nil {
				res.Failed++

				revokedCredentials.WithLabelValues(outcomeError).Inc()
				log.Error().Err(errDelete).Str("subject_id", subjectID).Str("credential_id", credential.ID).
					Msg("failed to revoke refresh token")

				continue
			}

			res.Revoked++

			revokedCredentials.WithLabelValues(outcomeOK).Inc()
			log.Debug().Str("credential_id", credential.ID).Msg("refresh token revoked")
		}

		if len(credentials) < r.pageSize {
			return res
		}
	}
}

func (r *Revoker) report(res RevocationResult) {
	event := log.Info()
	if res.Err != nil {
		event = log.Error().Err(res.Err)
	}

	event.Str("job_id", res.JobID).
		Str("subject_id", res.SubjectID).
		Int("pages", res.Pages).
		Int("revoked", res.Revoked).
		Int("failed", res.Failed).
		Msg("revocation job finished")

	select {
	case r.results <- res:
	default:
	}
}
