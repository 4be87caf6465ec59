// Package recovery resolves a prior submission at startup so monitoring can
// resume without resubmitting.
package recovery

import (
	"context"

	"github.com/sivacor/sivacor-cli/internal/logging"
	"github.com/sivacor/sivacor-cli/internal/models"
)

// Service is the slice of the API client recovery needs.
type Service interface {
	GetSubmission(ctx context.Context, submissionID string) (*models.Submission, error)
	FindSubmissionByName(ctx context.Context, name string) (*models.Submission, error)
	LatestSubmission(ctx context.Context) (*models.Submission, error)
}

// Resolve finds the submission to resume monitoring for. Precedence:
// an explicit id is looked up directly; on a miss the most recent submission
// is tried instead, with a warning. A name behaves the same way. With no
// hint, the most recent submission is used. Every failure is swallowed:
// a nil result means "no prior job" and the caller starts fresh.
func Resolve(ctx context.Context, svc Service, id, name string, logger *logging.Logger) *models.Submission {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}

	if id != "" {
		sub, err := svc.GetSubmission(ctx, id)
		if err == nil {
			return sub
		}
		logger.Warn().Err(err).Str("submission_id", id).Msg("Requested submission not found, falling back to the most recent one")
	} else if name != "" {
		sub, err := svc.FindSubmissionByName(ctx, name)
		if err == nil {
			return sub
		}
		logger.Warn().Err(err).Str("name", name).Msg("Named submission not found, falling back to the most recent one")
	}

	sub, err := svc.LatestSubmission(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("No prior submission to resume")
		return nil
	}
	return sub
}
