// Package session drives one meeting-scheduling dialog: composing the
// meeting, finding shared times and submitting the result.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/huddle/internal/meetings/application/services"
	"github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/clock"
	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
)

// Messages shown alongside session state.
const (
	MessageNoSlots   = "No optimal time slots found for everyone. Please try another date or duration."
	MessageScheduled = "Meeting scheduled."
)

// Defaults applied every time a session opens.
var (
	DefaultStartTime       = timefmt.ClockTime{Hour: 10}
	DefaultDurationMinutes = 60
)

// Phase is the lifecycle state of a session.
type Phase int

const (
	PhaseClosed Phase = iota
	PhaseComposing
	PhaseQueryInFlight
	PhaseSuggestionsShown
	PhaseSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseComposing:
		return "composing"
	case PhaseQueryInFlight:
		return "query_in_flight"
	case PhaseSuggestionsShown:
		return "suggestions_shown"
	case PhaseSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Suggester finds shared free slots.
type Suggester interface {
	RequestSuggestions(ctx context.Context, query domain.SuggestionQuery) (services.SuggestionResult, error)
	Reset()
}

// Registry records confirmed meetings.
type Registry interface {
	Create(ctx context.Context, draft domain.Draft) (*domain.Meeting, error)
	Refresh(ctx context.Context) error
}

// State is an immutable snapshot of a session.
type State struct {
	Phase           Phase
	Generation      uint64
	Timezone        string
	Title           string
	Date            timefmt.Date
	StartTime       timefmt.ClockTime
	DurationMinutes int
	Participants    []domain.UserID
	Candidates      []domain.UserRef
	Suggestions     []time.Time
	Err             error
	Message         string
}

// Open reports whether the session accepts input.
func (s State) Open() bool {
	return s.Phase != PhaseClosed
}

// Options configure a Controller.
type Options struct {
	// Timezone is the viewer's IANA zone. Empty means UTC.
	Timezone string
	Now      clock.Clock
	Logger   *slog.Logger
}

// Controller owns the state of a reusable scheduling session. Every Open
// starts from defaults, and results from an earlier opening are discarded.
type Controller struct {
	suggester Suggester
	registry  Registry
	directory domain.UserDirectory
	selector  *services.ParticipantSelector
	tz        string
	now       clock.Clock
	logger    *slog.Logger

	mu              sync.Mutex
	generation      uint64
	phase           Phase
	title           string
	date            timefmt.Date
	startTime       timefmt.ClockTime
	durationMinutes int
	suggestions     []time.Time
	err             error
	message         string
}

// NewController creates a closed session controller.
func NewController(suggester Suggester, registry Registry, directory domain.UserDirectory, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = clock.System
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{
		suggester: suggester,
		registry:  registry,
		directory: directory,
		selector:  services.NewParticipantSelector(),
		tz:        opts.Timezone,
		now:       opts.Now,
		logger:    opts.Logger,
	}
}

// Open starts a fresh session and loads the candidate directory. A
// directory failure is recorded on the session and returned, but the
// session stays open for composing.
func (c *Controller) Open(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.phase = PhaseComposing
	c.title = ""
	c.date = timefmt.Today(c.now(), c.tz)
	c.startTime = DefaultStartTime
	c.durationMinutes = DefaultDurationMinutes
	c.suggestions = nil
	c.err = nil
	c.message = ""
	c.selector.Clear()
	c.selector.SetCandidates(nil)
	c.mu.Unlock()

	c.suggester.Reset()
	c.logger.Debug("scheduling session opened", "generation", gen)

	users, err := c.directory.ListUsers(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.phase == PhaseClosed {
		return domain.ErrSessionClosed
	}
	if err != nil {
		c.err = err
		c.message = "Could not load the list of users. " + domain.UserMessage(err)
		c.logger.Warn("could not load user directory", "error", err)
		return err
	}
	c.selector.SetCandidates(users)
	return nil
}

// Close ends the session. Results still in flight are dropped on arrival.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.phase == PhaseClosed {
		c.mu.Unlock()
		return
	}
	c.generation++
	c.phase = PhaseClosed
	gen := c.generation
	c.mu.Unlock()

	c.suggester.Reset()
	c.logger.Debug("scheduling session closed", "generation", gen)
}

// Participants returns the selection for this session.
func (c *Controller) Participants() *services.ParticipantSelector {
	return c.selector
}

// SetTitle sets the meeting title.
func (c *Controller) SetTitle(title string) error {
	return c.update(func() error {
		c.title = title
		return nil
	})
}

// SetDate sets the meeting date in the viewer's zone.
func (c *Controller) SetDate(date timefmt.Date) error {
	return c.update(func() error {
		if date.IsZero() {
			return &domain.ValidationError{Field: "date", Message: "a date is required"}
		}
		c.date = date
		return nil
	})
}

// SetStartTime sets the manual start time in the viewer's zone.
func (c *Controller) SetStartTime(start timefmt.ClockTime) error {
	return c.update(func() error {
		c.startTime = start
		return nil
	})
}

// SetDuration sets the meeting length in minutes.
func (c *Controller) SetDuration(minutes int) error {
	return c.update(func() error {
		if minutes <= 0 {
			return &domain.ValidationError{Field: "duration", Message: "duration must be a positive number of minutes"}
		}
		c.durationMinutes = minutes
		return nil
	})
}

func (c *Controller) update(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseClosed {
		return domain.ErrSessionClosed
	}
	return fn()
}

// FindTimes asks for slots shared by the selected participants on the
// session date. An empty answer is not an error; it sets MessageNoSlots.
func (c *Controller) FindTimes(ctx context.Context) (services.SuggestionResult, error) {
	c.mu.Lock()
	if c.phase == PhaseClosed {
		c.mu.Unlock()
		return services.SuggestionResult{}, domain.ErrSessionClosed
	}
	gen := c.generation
	c.err = nil
	c.message = ""
	c.suggestions = nil

	query, err := domain.NewSuggestionQuery(c.selector.Current(), c.date, c.durationMinutes)
	if err != nil {
		c.phase = PhaseComposing
		c.fail(err)
		c.mu.Unlock()
		return services.SuggestionResult{}, err
	}
	c.phase = PhaseQueryInFlight
	c.mu.Unlock()

	result, err := c.suggester.RequestSuggestions(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.phase == PhaseClosed {
		return services.SuggestionResult{}, domain.ErrSessionClosed
	}
	if errors.Is(err, domain.ErrSuperseded) {
		return services.SuggestionResult{}, err
	}
	if err != nil {
		c.phase = PhaseComposing
		c.fail(err)
		return services.SuggestionResult{}, err
	}

	c.suggestions = append([]time.Time(nil), result.Slots...)
	c.phase = PhaseSuggestionsShown
	if result.Empty() {
		c.message = MessageNoSlots
	}
	return result, nil
}

// ScheduleSlot creates a meeting starting at a suggested slot. On success the
// session closes and the registry is refreshed. A create the server accepted
// but the registry could not confirm also closes the session and returns an
// error wrapping domain.ErrCreateUnconfirmed. If the session was closed
// while the create was in flight, the created meeting is returned together
// with domain.ErrSessionClosed.
func (c *Controller) ScheduleSlot(ctx context.Context, slot time.Time) (*domain.Meeting, error) {
	return c.schedule(ctx, func() time.Time { return slot })
}

// ScheduleManual creates a meeting at the session's date and start time,
// read in the viewer's zone. Participants are optional.
func (c *Controller) ScheduleManual(ctx context.Context) (*domain.Meeting, error) {
	return c.schedule(ctx, func() time.Time {
		return timefmt.FromZoned(c.date, c.startTime, c.tz)
	})
}

func (c *Controller) schedule(ctx context.Context, startOf func() time.Time) (*domain.Meeting, error) {
	c.mu.Lock()
	if c.phase == PhaseClosed {
		c.mu.Unlock()
		return nil, domain.ErrSessionClosed
	}
	gen := c.generation
	c.err = nil
	c.message = ""

	draft, err := domain.NewDraft(c.title, startOf(), c.durationMinutes, c.selector.Current())
	if err != nil {
		c.fail(err)
		c.mu.Unlock()
		return nil, err
	}
	previous := c.phase
	c.phase = PhaseSubmitting
	c.mu.Unlock()

	meeting, err := c.registry.Create(ctx, draft)

	c.mu.Lock()
	if gen != c.generation || c.phase == PhaseClosed {
		c.mu.Unlock()
		if err == nil {
			c.refresh(ctx)
		}
		return meeting, domain.ErrSessionClosed
	}
	if errors.Is(err, domain.ErrCreateUnconfirmed) {
		// The server already has the meeting; the draft must not be sent again.
		c.generation++
		c.phase = PhaseClosed
		c.fail(err)
		c.mu.Unlock()
		c.suggester.Reset()
		c.logger.Warn("meeting accepted but not confirmed", "title", draft.Title, "error", err)
		return nil, err
	}
	if err != nil {
		c.phase = previous
		c.fail(err)
		c.mu.Unlock()
		c.logger.Warn("could not schedule meeting", "title", draft.Title, "error", err)
		return nil, err
	}
	c.generation++
	c.phase = PhaseClosed
	c.message = MessageScheduled
	c.mu.Unlock()

	c.suggester.Reset()
	c.refresh(ctx)
	return meeting, nil
}

func (c *Controller) refresh(ctx context.Context) {
	if err := c.registry.Refresh(ctx); err != nil {
		c.logger.Warn("meeting refresh after create failed", "error", err)
	}
}

// fail records err on the session. Callers hold c.mu.
func (c *Controller) fail(err error) {
	c.err = err
	c.message = domain.UserMessage(err)
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Phase:           c.phase,
		Generation:      c.generation,
		Timezone:        c.tz,
		Title:           c.title,
		Date:            c.date,
		StartTime:       c.startTime,
		DurationMinutes: c.durationMinutes,
		Participants:    c.selector.Current(),
		Candidates:      c.selector.Candidates(),
		Suggestions:     append([]time.Time(nil), c.suggestions...),
		Err:             c.err,
		Message:         c.message,
	}
}
