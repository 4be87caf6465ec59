// Package poller implements the job monitoring state machine: a fixed-period
// status poll with transition-triggered side effects.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sivacor/sivacor-cli/internal/logging"
	"github.com/sivacor/sivacor-cli/internal/metrics"
	"github.com/sivacor/sivacor-cli/internal/models"
)

// State is the poller's lifecycle state. Transitions are driven by discrete
// events (submission success, recovery handoff, timer tick, user reset)
// rather than ambient observation.
type State int

const (
	// StateIdle means no job is being watched.
	StateIdle State = iota
	// StateResolving covers the startup recovery lookup.
	StateResolving
	// StatePolling means the interval timer is active and the job is not
	// terminal.
	StatePolling
	// StateTerminal means a status >= SUCCESS was observed and the timer
	// has stopped.
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateResolving:
		return "RESOLVING"
	case StatePolling:
		return "POLLING"
	case StateTerminal:
		return "TERMINAL"
	default:
		return "UNKNOWN"
	}
}

// DefaultInterval is the fixed status poll period.
const DefaultInterval = 5 * time.Second

// FetchFailedMessage is the generic user-facing message for a failed status
// fetch. A fetch failure is fatal for the watched job; there is no
// automatic retry.
const FetchFailedMessage = "could not fetch job status"

// ErrAlreadyWatching is returned when Watch is called while a job is
// already being monitored.
var ErrAlreadyWatching = errors.New("a job is already being watched")

// Service is the slice of the API client the poller needs.
type Service interface {
	GetJob(ctx context.Context, jobID string) (*models.JobRecord, error)
	GetSubmission(ctx context.Context, submissionID string) (*models.Submission, error)
	CancelJob(ctx context.Context, jobID string) error
	GetStageMetrics(ctx context.Context, fileID string) (*models.StageMetrics, error)
}

// Hooks are invoked on state transitions. All hooks run on the poller's
// goroutine; they must not call back into the poller while holding their own
// locks.
type Hooks struct {
	// OnUpdate fires after each successful non-terminal fetch.
	OnUpdate func(job *models.JobRecord, sub *models.Submission)

	// OnTerminal fires once when a terminal status is observed, after the
	// final submission refresh and the per-stage metrics fetch.
	OnTerminal func(job *models.JobRecord, sub *models.Submission, stageMetrics []metrics.StageResult)

	// OnFetchError fires once when a status fetch itself fails. Monitoring
	// for this job is over.
	OnFetchError func(msg string)
}

// Poller watches a single job to completion. The cached JobRecord and
// Submission are owned exclusively by the poller and replaced wholesale on
// each poll; external code reads them through accessors.
type Poller struct {
	svc      Service
	interval time.Duration
	logger   *logging.Logger
	hooks    Hooks

	mu            sync.Mutex
	state         State
	jobID         string
	submissionID  string
	job           *models.JobRecord
	submission    *models.Submission
	errMsg        string
	cancelPending bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a poller. A zero interval falls back to DefaultInterval.
func New(svc Service, interval time.Duration, logger *logging.Logger, hooks Hooks) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return &Poller{
		svc:      svc,
		interval: interval,
		logger:   logger,
		hooks:    hooks,
		state:    StateIdle,
	}
}

// State returns the current lifecycle state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// JobID returns the id of the watched job, or "".
func (p *Poller) JobID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jobID
}

// Job returns the cached job record, or nil.
func (p *Poller) Job() *models.JobRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.job
}

// Submission returns the cached submission record, or nil.
func (p *Poller) Submission() *models.Submission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submission
}

// ErrorMessage returns the captured error message, or "".
func (p *Poller) ErrorMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}

// Active reports whether the watched job may still transition. The log
// stream controller gates its connection on this.
func (p *Poller) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == StatePolling
}

// CancelPending reports whether a cancel request has been issued and the
// backend-confirmed CANCELED status has not yet been observed. The cancel
// control stays disabled while this is true.
func (p *Poller) CancelPending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelPending
}

// BeginResolve marks the startup recovery lookup in progress.
func (p *Poller) BeginResolve() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateIdle {
		p.state = StateResolving
	}
}

// EndResolve returns to IDLE after a recovery lookup that found no job.
func (p *Poller) EndResolve() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateResolving {
		p.state = StateIdle
	}
}

// Watch transitions IDLE (or RESOLVING) to POLLING for the given job:
// one immediate fetch, then a fixed-period timer that re-fetches on each
// tick. submission may be nil; when the recovery flow already resolved one,
// passing it seeds the cache and enables submission refreshes.
//
// The immediate fetch runs synchronously so callers observe a populated
// cache (or a terminal/error state) on return.
func (p *Poller) Watch(ctx context.Context, jobID string, submission *models.Submission) error {
	p.mu.Lock()
	if p.state == StatePolling {
		p.mu.Unlock()
		return ErrAlreadyWatching
	}
	p.state = StatePolling
	p.jobID = jobID
	p.submission = submission
	p.submissionID = ""
	if submission != nil {
		p.submissionID = submission.ID
	}
	p.errMsg = ""
	p.cancelPending = false
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	p.logger.Debug().Str("job_id", jobID).Msg("Starting job watch")

	if cont := p.fetchOnce(ctx); !cont {
		close(doneCh)
		return nil
	}

	go p.loop(ctx, stopCh, doneCh)
	return nil
}

// loop drives the fixed-period ticks. The fetch runs inline on this
// goroutine, so a slow fetch causes later ticks to be skipped rather than
// stacking concurrent fetches for the same job; wall-clock cadence resumes
// with the next tick after the fetch resolves.
func (p *Poller) loop(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if cont := p.fetchOnce(ctx); !cont {
				return
			}
		}
	}
}

// fetchOnce performs one status fetch and applies the resulting transition.
// It returns false when polling must stop (terminal status observed, fetch
// failure, or the poller was reset underneath it).
func (p *Poller) fetchOnce(ctx context.Context) bool {
	p.mu.Lock()
	jobID := p.jobID
	submissionID := p.submissionID
	if p.state != StatePolling || jobID == "" {
		p.mu.Unlock()
		return false
	}
	p.mu.Unlock()

	job, err := p.svc.GetJob(ctx, jobID)
	if err != nil {
		// A failed status fetch is fatal for this job's monitoring.
		p.logger.Error().Err(err).Str("job_id", jobID).Msg("Status fetch failed")
		p.mu.Lock()
		p.state = StateTerminal
		p.errMsg = FetchFailedMessage
		p.mu.Unlock()
		if p.hooks.OnFetchError != nil {
			p.hooks.OnFetchError(FetchFailedMessage)
		}
		return false
	}

	// Keep the correlated submission current while the backend populates
	// artifact metadata mid-run. A refresh failure is not fatal.
	var sub *models.Submission
	if submissionID != "" {
		if fresh, err := p.svc.GetSubmission(ctx, submissionID); err == nil {
			if fresh.Meta.JobID == "" || fresh.Meta.JobID == jobID {
				sub = fresh
			}
		} else {
			p.logger.Warn().Err(err).Str("submission_id", submissionID).Msg("Submission refresh failed")
		}
	}

	p.mu.Lock()
	if p.state != StatePolling || p.jobID != jobID {
		// Reset raced with this fetch; drop the result.
		p.mu.Unlock()
		return false
	}
	p.job = job
	if sub != nil {
		p.submission = sub
	}
	cachedSub := p.submission
	terminal := job.Status.IsTerminal()
	if terminal {
		p.state = StateTerminal
		p.cancelPending = false
		if job.Status == models.StatusError && job.Error != "" {
			p.errMsg = job.Error
		}
	}
	p.mu.Unlock()

	if !terminal {
		if p.hooks.OnUpdate != nil {
			p.hooks.OnUpdate(job, cachedSub)
		}
		return true
	}

	p.finishTerminal(ctx, jobID, submissionID, job)
	return false
}

// finishTerminal runs the terminal side effects: one unconditional final
// submission refresh, then a parallel per-stage metrics fetch keeping only
// the successes.
func (p *Poller) finishTerminal(ctx context.Context, jobID, submissionID string, job *models.JobRecord) {
	p.logger.Info().
		Str("job_id", jobID).
		Str("status", job.Status.String()).
		Msg("Job reached terminal status")

	if submissionID != "" {
		if fresh, err := p.svc.GetSubmission(ctx, submissionID); err == nil {
			p.mu.Lock()
			p.submission = fresh
			p.mu.Unlock()
		} else {
			p.logger.Warn().Err(err).Str("submission_id", submissionID).Msg("Final submission refresh failed")
		}
	}

	p.mu.Lock()
	sub := p.submission
	p.mu.Unlock()

	var stageMetrics []metrics.StageResult
	if sub != nil && len(sub.Meta.Performance) > 0 {
		stageMetrics = metrics.FetchAll(ctx, p.svc, sub.Meta.Performance)
	}

	if p.hooks.OnTerminal != nil {
		p.hooks.OnTerminal(job, sub, stageMetrics)
	}
}

// Cancel issues a fire-and-forget cancellation request. The state machine
// does not advance until a poll observes the backend-confirmed CANCELED
// status. Duplicate requests while one is pending are rejected locally.
func (p *Poller) Cancel(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StatePolling {
		p.mu.Unlock()
		return errors.New("no active job to cancel")
	}
	if p.cancelPending {
		p.mu.Unlock()
		return errors.New("cancel already requested")
	}
	p.cancelPending = true
	jobID := p.jobID
	p.mu.Unlock()

	if err := p.svc.CancelJob(ctx, jobID); err != nil {
		p.mu.Lock()
		p.cancelPending = false
		p.mu.Unlock()
		return err
	}
	p.logger.Info().Str("job_id", jobID).Msg("Cancel requested")
	return nil
}

// Stop tears down the poll timer without clearing cached state. Safe to call
// from any state; it never blocks on an in-flight fetch longer than the
// fetch itself.
func (p *Poller) Stop() {
	p.mu.Lock()
	stopCh, doneCh := p.stopCh, p.doneCh
	p.stopCh = nil
	if p.state == StatePolling {
		p.state = StateTerminal
	}
	p.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}
	if doneCh != nil {
		<-doneCh
	}
}

// Reset returns the poller to IDLE, clearing the job id, cached records,
// error message, and pending-cancel flag. The caller is expected to clear
// the log buffer alongside.
func (p *Poller) Reset() {
	p.Stop()

	p.mu.Lock()
	p.state = StateIdle
	p.jobID = ""
	p.submissionID = ""
	p.job = nil
	p.submission = nil
	p.errMsg = ""
	p.cancelPending = false
	p.stopCh = nil
	p.doneCh = nil
	p.mu.Unlock()
}
