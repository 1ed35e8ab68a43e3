package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/felixgeelhaar/huddle/internal/meetings/domain"
)

// SuggestionPhase is the lifecycle state of the latest suggestion query.
type SuggestionPhase int

const (
	SuggestionIdle SuggestionPhase = iota
	SuggestionPending
	SuggestionFulfilled
	SuggestionFailed
)

func (p SuggestionPhase) String() string {
	switch p {
	case SuggestionIdle:
		return "idle"
	case SuggestionPending:
		return "pending"
	case SuggestionFulfilled:
		return "fulfilled"
	case SuggestionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SuggestionResult holds the candidate start instants for a query, ascending
// and in UTC. An empty Slots is a valid answer.
type SuggestionResult struct {
	Query domain.SuggestionQuery
	Slots []time.Time
}

// Empty reports whether the server found no shared slot.
func (r SuggestionResult) Empty() bool {
	return len(r.Slots) == 0
}

// SuggestionSnapshot is a point-in-time view of the orchestrator.
type SuggestionSnapshot struct {
	Phase    SuggestionPhase
	Sequence uint64
	Query    domain.SuggestionQuery
	Slots    []time.Time
	Err      error
}

// NoSlots reports the fulfilled-but-empty state.
func (s SuggestionSnapshot) NoSlots() bool {
	return s.Phase == SuggestionFulfilled && len(s.Slots) == 0
}

// SlotSuggestionOrchestrator issues suggestion queries against the slot
// computation service. When queries overlap, only the most recently issued
// one may change state.
type SlotSuggestionOrchestrator struct {
	gateway domain.SuggestionGateway
	logger  *slog.Logger

	mu       sync.Mutex
	sequence uint64
	snapshot SuggestionSnapshot
}

// NewSlotSuggestionOrchestrator creates an idle orchestrator.
func NewSlotSuggestionOrchestrator(gateway domain.SuggestionGateway, logger *slog.Logger) *SlotSuggestionOrchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlotSuggestionOrchestrator{
		gateway: gateway,
		logger:  logger,
	}
}

// RequestSuggestions asks for free slots shared by the query's participants.
// It returns domain.ErrSuperseded if a newer query was issued while this one
// was in flight; the state then belongs to the newer query.
func (o *SlotSuggestionOrchestrator) RequestSuggestions(ctx context.Context, query domain.SuggestionQuery) (SuggestionResult, error) {
	if err := validateQuery(query); err != nil {
		o.mu.Lock()
		o.sequence++
		o.snapshot = SuggestionSnapshot{Phase: SuggestionFailed, Sequence: o.sequence, Query: query, Err: err}
		o.mu.Unlock()
		return SuggestionResult{}, err
	}

	o.mu.Lock()
	o.sequence++
	seq := o.sequence
	o.snapshot = SuggestionSnapshot{Phase: SuggestionPending, Sequence: seq, Query: query}
	o.mu.Unlock()

	o.logger.Debug("requesting slot suggestions",
		"sequence", seq,
		"participants", len(query.ParticipantIDs()),
		"date", query.Date().String(),
		"duration_minutes", query.DurationMinutes(),
	)

	slots, err := o.gateway.SuggestTimes(ctx, query)

	o.mu.Lock()
	defer o.mu.Unlock()

	if seq != o.sequence {
		o.logger.Debug("discarding superseded suggestions", "sequence", seq, "latest", o.sequence)
		return SuggestionResult{}, domain.ErrSuperseded
	}

	if err != nil {
		err = classifySuggestionError(err)
		o.snapshot = SuggestionSnapshot{Phase: SuggestionFailed, Sequence: seq, Query: query, Err: err}
		o.logger.Warn("slot suggestions failed", "sequence", seq, "error", err)
		return SuggestionResult{}, err
	}

	normalized := normalizeSlots(slots)
	o.snapshot = SuggestionSnapshot{Phase: SuggestionFulfilled, Sequence: seq, Query: query, Slots: normalized}
	o.logger.Debug("slot suggestions received", "sequence", seq, "count", len(normalized))

	return SuggestionResult{Query: query, Slots: copySlots(normalized)}, nil
}

// Snapshot returns the current state. The returned slots are a copy.
func (o *SlotSuggestionOrchestrator) Snapshot() SuggestionSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.snapshot
	s.Slots = copySlots(s.Slots)
	return s
}

// Reset returns to idle. Queries still in flight will resolve as superseded.
func (o *SlotSuggestionOrchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sequence++
	o.snapshot = SuggestionSnapshot{Phase: SuggestionIdle, Sequence: o.sequence}
}

func validateQuery(query domain.SuggestionQuery) error {
	if query.IsZero() {
		return &domain.ValidationError{Field: "participants", Message: "select at least one participant to find shared times"}
	}
	if query.Date().IsZero() {
		return &domain.ValidationError{Field: "date", Message: "a date is required"}
	}
	if query.DurationMinutes() <= 0 {
		return &domain.ValidationError{Field: "duration", Message: "duration must be a positive number of minutes"}
	}
	return nil
}

// classifySuggestionError keeps validation and transport failures and turns
// every other rejection into an operation failure.
func classifySuggestionError(err error) error {
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrTransport) || errors.Is(err, domain.ErrOperation) {
		return err
	}
	var permission *domain.PermissionError
	if errors.As(err, &permission) {
		return &domain.OperationError{Op: "suggest times", StatusCode: http.StatusForbidden, Message: permission.Message}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &domain.TransportError{Op: "suggest times", Err: err}
	}
	return &domain.OperationError{Op: "suggest times", Message: err.Error()}
}

func normalizeSlots(slots []time.Time) []time.Time {
	out := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.UTC())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func copySlots(slots []time.Time) []time.Time {
	if slots == nil {
		return nil
	}
	return append([]time.Time{}, slots...)
}
