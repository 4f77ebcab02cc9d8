package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/session"
)

// LoadErrorMessage is stored in the session when questions cannot be fetched.
const LoadErrorMessage = "Failed to load questions"

// ErrFetchQuestions wraps every question source failure returned by Start.
var ErrFetchQuestions = errors.New("fetch questions")

// QuestionSource supplies raw questions. A call either returns the whole set
// or fails.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, params domain.QuestionParams) ([]domain.RawQuestion, error)
}

// CategorySource lists the categories a question source offers.
type CategorySource interface {
	FetchCategories(ctx context.Context) ([]domain.Category, error)
}

// AttemptOptions tunes a new attempt. Zero values select the defaults.
type AttemptOptions struct {
	Timing  session.Timing
	Clock   session.Clock
	Shuffle Shuffler
	NewID   func() string
}

// Attempt is one user's quiz: the session store, its countdown and the start
// sequence against a question source.
type Attempt struct {
	id      string
	store   *session.Store
	ctrl    *session.Controller
	source  QuestionSource
	shuffle Shuffler
	newID   func() string
	cancel  context.CancelFunc

	mu      sync.Mutex
	loading bool
	closed  bool
}

// NewAttempt creates an attempt with cfg as its configuration and starts its
// countdown goroutine. Call Close to release it.
func NewAttempt(id string, cfg domain.QuizConfiguration, source QuestionSource, opts AttemptOptions) *Attempt {
	timing := opts.Timing
	if timing == (session.Timing{}) {
		timing = session.DefaultTiming()
	}
	store := session.NewStore(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	a := &Attempt{
		id:      id,
		store:   store,
		ctrl:    session.NewController(store, opts.Clock, timing),
		source:  source,
		shuffle: opts.Shuffle,
		newID:   opts.NewID,
		cancel:  cancel,
	}
	go a.ctrl.Run(ctx)
	return a
}

// ID returns the attempt id.
func (a *Attempt) ID() string {
	return a.id
}

// Configure replaces the configuration. It is refused while a quiz is running
// or its questions are loading.
func (a *Attempt) Configure(cfg domain.QuizConfiguration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if a.isClosed() {
		return domain.ErrAttemptClosed
	}
	var refused error
	err := a.store.Update(func(st domain.SessionState) session.Action {
		switch {
		case st.InProgress():
			refused = domain.ErrSessionInProgress
		case st.IsLoadingQuestions:
			refused = domain.ErrLoadInProgress
		default:
			return session.SetConfiguration{Configuration: cfg}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return refused
}

// Start loads a question set for the current configuration and begins the
// quiz. A fetch failure is recorded in the state and returned wrapped in
// ErrFetchQuestions; the quiz does not start.
func (a *Attempt) Start(ctx context.Context) error {
	if err := a.beginLoad(); err != nil {
		return err
	}
	defer a.endLoad()

	state := a.State()
	if !session.Admits(state, session.ScreenConfigure) {
		return domain.ErrSessionInProgress
	}
	cfg := state.Configuration
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := a.Dispatch(session.SetLoading{Loading: true}); err != nil {
		return err
	}
	raw, err := a.source.FetchQuestions(ctx, cfg.Params())
	if err == nil && len(raw) == 0 {
		err = domain.ErrNoQuestions
	}
	if err != nil {
		log.Printf("attempt %s: load questions: %v", a.id, err)
		_ = a.Dispatch(session.SetLoading{Loading: false})
		_ = a.Dispatch(session.SetError{Message: LoadErrorMessage})
		return fmt.Errorf("%w: %w", ErrFetchQuestions, err)
	}

	questions := BuildQuestions(raw, a.shuffle, a.newID)
	if err := a.Dispatch(session.SetQuestions{Questions: questions}); err != nil {
		_ = a.Dispatch(session.SetLoading{Loading: false})
		_ = a.Dispatch(session.SetError{Message: LoadErrorMessage})
		return fmt.Errorf("%w: %w", ErrFetchQuestions, err)
	}
	if err := a.Dispatch(session.SetLoading{Loading: false}); err != nil {
		return err
	}
	return a.Dispatch(session.StartSession{})
}

func (a *Attempt) beginLoad() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return domain.ErrAttemptClosed
	}
	if a.loading {
		return domain.ErrLoadInProgress
	}
	a.loading = true
	return nil
}

func (a *Attempt) endLoad() {
	a.mu.Lock()
	a.loading = false
	a.mu.Unlock()
}

// Select sets the draft answer for the current question.
func (a *Attempt) Select(option string) error {
	return a.ctrl.Select(option)
}

// Confirm records the draft answer for the current question.
func (a *Attempt) Confirm() error {
	return a.ctrl.Confirm()
}

// Reset abandons the quiz and returns to the initial state, keeping the
// configuration.
func (a *Attempt) Reset() error {
	return a.Dispatch(session.ResetSession{})
}

// Dispatch applies action to the session.
func (a *Attempt) Dispatch(action session.Action) error {
	if a.isClosed() {
		return domain.ErrAttemptClosed
	}
	return a.store.Dispatch(action)
}

// State returns a copy of the current session state.
func (a *Attempt) State() domain.SessionState {
	return a.store.State()
}

// Snapshot returns a copy of the current session state with its revision.
func (a *Attempt) Snapshot() session.Snapshot {
	return a.store.Snapshot()
}

func (a *Attempt) Score() int      { return session.Score(a.State()) }
func (a *Attempt) Progress() int   { return session.Progress(a.State()) }
func (a *Attempt) Percentage() int { return session.Percentage(a.State()) }

// Review lists the outcome of every question.
func (a *Attempt) Review() []session.ReviewItem {
	return session.Review(a.State())
}

// Guard decides whether screen may be shown now.
func (a *Attempt) Guard(screen session.Screen) session.Decision {
	return session.Guard(a.State(), screen)
}

// Countdown returns the current countdown.
func (a *Attempt) Countdown() session.CountdownEvent {
	return a.ctrl.Status()
}

// Subscribe streams state snapshots. The caller must invoke cancel.
func (a *Attempt) Subscribe() (<-chan session.Snapshot, func()) {
	return a.store.Subscribe()
}

// SubscribeCountdown streams countdown changes. The caller must invoke cancel.
func (a *Attempt) SubscribeCountdown() (<-chan session.CountdownEvent, func()) {
	return a.ctrl.Subscribe()
}

// Close stops the countdown and ends every subscription. It is safe to call
// more than once.
func (a *Attempt) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()

	a.cancel()
	<-a.ctrl.Done()
	a.store.Close()
}

func (a *Attempt) isClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}
