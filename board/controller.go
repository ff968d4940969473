// Package board owns the client-side view of the shared backing
// record. The controller is the only writer of that view: it fetches
// remote state on authentication, creates the record when absent, and
// appends entries in response to user submissions, always re-reading
// remote truth after a mutation instead of patching the list locally.
package board

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	clienterrors "github.com/mediaboard/mediaboard/errors"
	"github.com/mediaboard/mediaboard/program"
)

// ProgramAPI is what the controller needs from the program client.
type ProgramAPI interface {
	FetchRecord(ctx context.Context) (program.RecordState, error)
	Initialize(ctx context.Context) (solana.Signature, error)
	Append(ctx context.Context, link string) (solana.Signature, error)
}

// SyncStatus is the controller's externally visible state.
type SyncStatus int

const (
	// StatusUnauthenticated means no wallet identity is bound yet.
	StatusUnauthenticated SyncStatus = iota

	// StatusReadFailed means the last fetch failed for a reason other
	// than the record being absent. Kept distinct from Uninitialized so
	// consumers never offer record creation over a flaky connection.
	StatusReadFailed

	// StatusUninitialized means the backing record does not exist yet.
	StatusUninitialized

	// StatusReady means the record exists and Entries holds its state.
	StatusReady
)

func (s SyncStatus) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusReadFailed:
		return "read_failed"
	case StatusUninitialized:
		return "uninitialized"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time copy of the controller state for
// consumers. Entries is in remote append order and safe to retain.
type Snapshot struct {
	Status   SyncStatus
	Identity solana.PublicKey
	Total    uint64
	Entries  []program.Entry
	LastErr  error
}

// Controller is the account synchronization state machine. State
// transitions happen only on explicit fetch, create and append
// outcomes; a failed mutation leaves the prior view untouched.
type Controller struct {
	mu      sync.RWMutex
	program ProgramAPI
	logger  zerolog.Logger

	identity      solana.PublicKey
	authenticated bool
	status        SyncStatus
	total         uint64
	entries       []program.Entry
	lastErr       error

	// opMu admits one mutation at a time. A second concurrent
	// create/submit fails fast instead of racing a stale read.
	opMu sync.Mutex
}

// NewController creates a controller over the given program client.
func NewController(programClient ProgramAPI, logger zerolog.Logger) *Controller {
	return &Controller{
		program: programClient,
		status:  StatusUnauthenticated,
		logger:  logger.With().Str("component", "sync_controller").Logger(),
	}
}

// OnAuthenticated binds the wallet identity and immediately fetches
// the backing record. A read failure is recorded as StatusReadFailed
// and returned for logging; the session itself stays authenticated.
func (c *Controller) OnAuthenticated(ctx context.Context, identity solana.PublicKey) error {
	c.mu.Lock()
	c.identity = identity
	c.authenticated = true
	c.mu.Unlock()

	c.logger.Info().Str("identity", identity.String()).Msg("wallet authenticated, fetching record")
	return c.refresh(ctx)
}

// CreateBackingRecord invokes the initialize procedure and re-fetches
// the authoritative post-creation state. Valid only while the record
// is known to be absent. On failure state is left unchanged and the
// user may retry.
func (c *Controller) CreateBackingRecord(ctx context.Context) error {
	if !c.opMu.TryLock() {
		return clienterrors.NewBusyError("another operation is in flight")
	}
	defer c.opMu.Unlock()

	c.mu.RLock()
	authenticated := c.authenticated
	status := c.status
	c.mu.RUnlock()

	if !authenticated {
		return clienterrors.NewValidationError("not authenticated")
	}
	if status != StatusUninitialized {
		return clienterrors.NewValidationError("backing record already exists or its state is unknown")
	}

	sig, err := c.program.Initialize(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to create backing record")
		return err
	}

	c.logger.Info().Str("signature", sig.String()).Msg("backing record created")
	return c.refresh(ctx)
}

// SubmitEntry appends a link to the record, then re-fetches so the
// local view matches remote truth, including entries appended
// concurrently by other clients. An empty link is rejected locally
// with no remote call.
func (c *Controller) SubmitEntry(ctx context.Context, link string) error {
	if link == "" {
		return clienterrors.NewValidationError("link must not be empty")
	}

	if !c.opMu.TryLock() {
		return clienterrors.NewBusyError("another operation is in flight")
	}
	defer c.opMu.Unlock()

	c.mu.RLock()
	authenticated := c.authenticated
	status := c.status
	c.mu.RUnlock()

	if !authenticated {
		return clienterrors.NewValidationError("not authenticated")
	}
	if status != StatusReady {
		return clienterrors.NewValidationError("backing record is not ready for submissions")
	}

	sig, err := c.program.Append(ctx, link)
	if err != nil {
		c.logger.Error().Err(err).Str("link", link).Msg("submission failed")
		return err
	}

	c.logger.Info().Str("signature", sig.String()).Str("link", link).Msg("entry submitted")
	return c.refresh(ctx)
}

// Refresh re-reads the backing record without mutating it.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.RLock()
	authenticated := c.authenticated
	c.mu.RUnlock()

	if !authenticated {
		return clienterrors.NewValidationError("not authenticated")
	}
	return c.refresh(ctx)
}

// refresh fetches remote state and applies the outcome. This is the
// only place record state transitions happen.
func (c *Controller) refresh(ctx context.Context) error {
	state, err := c.program.FetchRecord(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.status = StatusReadFailed
		c.lastErr = err
		c.logger.Error().Err(err).Msg("record fetch failed")
		return err
	}

	c.lastErr = nil
	if !state.Initialized {
		c.status = StatusUninitialized
		c.total = 0
		c.entries = nil
		return nil
	}

	c.status = StatusReady
	c.total = state.Total
	c.entries = state.Entries
	return nil
}

// SignOut drops the identity and returns to the unauthenticated state.
func (c *Controller) SignOut() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.identity = solana.PublicKey{}
	c.authenticated = false
	c.status = StatusUnauthenticated
	c.total = 0
	c.entries = nil
	c.lastErr = nil
}

// Snapshot returns a copy of the current state for consumers.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]program.Entry, len(c.entries))
	copy(entries, c.entries)

	return Snapshot{
		Status:   c.status,
		Identity: c.identity,
		Total:    c.total,
		Entries:  entries,
		LastErr:  c.lastErr,
	}
}
