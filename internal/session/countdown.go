package session

import (
	"context"
	"log"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// Phase is the countdown state for the current question.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhaseExpired Phase = "expired"
)

// CountdownEvent describes the countdown after a change.
type CountdownEvent struct {
	QuestionID string `json:"questionId,omitempty"`
	Phase      Phase  `json:"phase"`
	Remaining  int    `json:"remaining"`
	Selected   string `json:"selected,omitempty"`
}

// Timing configures the countdown. Budget is counted in ticks.
type Timing struct {
	Budget        int
	Tick          time.Duration
	FeedbackDelay time.Duration
}

// DefaultTiming is thirty one-second ticks per question and a 1.5s pause
// before moving on.
func DefaultTiming() Timing {
	return Timing{
		Budget:        30,
		Tick:          time.Second,
		FeedbackDelay: 1500 * time.Millisecond,
	}
}

// Dispatcher is the part of Store the controller drives.
type Dispatcher interface {
	Update(decide func(domain.SessionState) Action) error
	Snapshot() Snapshot
	Subscribe() (<-chan Snapshot, func())
}

// Controller runs the per-question countdown and owns the draft selection.
// All of its state is confined to the Run goroutine; the exported methods
// hand work to that goroutine and wait for the result.
type Controller struct {
	store    Dispatcher
	clock    Clock
	timing   Timing
	commands chan command
	done     chan struct{}

	mu     sync.Mutex
	last   CountdownEvent
	closed bool
	events *broadcaster[CountdownEvent]

	seen       bool
	revision   uint64
	phase      Phase
	questionID string
	remaining  int
	draft      string
	pending    string
	ticker     Ticker
	feedback   Timer
}

type command struct {
	run   func() error
	reply chan error
}

// NewController builds a controller for store. Call Run to start it.
func NewController(store Dispatcher, clock Clock, timing Timing) *Controller {
	if clock == nil {
		clock = SystemClock{}
	}
	if timing.Budget <= 0 {
		timing.Budget = DefaultTiming().Budget
	}
	if timing.Tick <= 0 {
		timing.Tick = DefaultTiming().Tick
	}
	return &Controller{
		store:    store,
		clock:    clock,
		timing:   timing,
		commands: make(chan command),
		done:     make(chan struct{}),
		events:   newBroadcaster[CountdownEvent](),
		phase:    PhaseIdle,
		last:     CountdownEvent{Phase: PhaseIdle},
	}
}

// Run processes ticks, store updates and commands until ctx is canceled.
// Every pending wake-up is stopped before it returns.
func (c *Controller) Run(ctx context.Context) {
	updates, cancel := c.store.Subscribe()
	defer func() {
		cancel()
		c.stopTicker()
		c.cancelFeedback()
		c.mu.Lock()
		c.closed = true
		c.events.closeAll()
		c.mu.Unlock()
		close(c.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			c.observe(snap)
		case <-c.tickC():
			c.sync()
			c.onTick()
		case <-c.feedbackC():
			c.feedback = nil
			c.progress()
		case cmd := <-c.commands:
			c.sync()
			cmd.reply <- cmd.run()
		}
	}
}

// Done is closed once Run has returned.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Select sets the draft answer for the current question.
func (c *Controller) Select(option string) error {
	return c.do(func() error {
		q, ok := c.acceptingQuestion()
		if !ok {
			return domain.ErrNotAccepting
		}
		if !q.HasOption(option) {
			return domain.ErrOptionNotFound
		}
		c.draft = option
		c.emit()
		return nil
	})
}

// Confirm records the draft answer and stops the countdown for the question.
func (c *Controller) Confirm() error {
	return c.do(func() error {
		if _, ok := c.acceptingQuestion(); !ok {
			return domain.ErrNotAccepting
		}
		if c.draft == "" {
			return domain.ErrNoSelection
		}
		return c.submit()
	})
}

// Status returns the countdown after every earlier command and wake-up has
// been handled.
func (c *Controller) Status() CountdownEvent {
	_ = c.do(func() error { return nil })
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Subscribe returns a channel with the current countdown followed by every
// change. The caller must invoke the returned cancel function.
func (c *Controller) Subscribe() (<-chan CountdownEvent, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		ch := make(chan CountdownEvent, 1)
		ch <- c.last
		close(ch)
		return ch, func() {}
	}
	return c.events.subscribe(c.last)
}

func (c *Controller) do(fn func() error) error {
	cmd := command{run: fn, reply: make(chan error, 1)}
	select {
	case c.commands <- cmd:
	case <-c.done:
		return domain.ErrAttemptClosed
	}
	return <-cmd.reply
}

func (c *Controller) sync() {
	c.observe(c.store.Snapshot())
}

// observe reacts to a new state: retire when the attempt is not running,
// restart the budget when the current question changed.
func (c *Controller) observe(snap Snapshot) {
	if c.seen && snap.Revision <= c.revision {
		return
	}
	c.seen = true
	c.revision = snap.Revision

	st := snap.State
	q, ok := st.CurrentQuestion()
	if !st.InProgress() || !ok {
		if c.questionID != "" || c.phase != PhaseIdle || c.pending != "" {
			c.stopTicker()
			c.cancelFeedback()
			c.questionID = ""
			c.draft = ""
			c.remaining = 0
			c.phase = PhaseIdle
			c.emit()
		}
		return
	}
	record, answered := st.Answer(q.ID)
	if q.ID == c.questionID {
		if answered && c.phase == PhaseRunning {
			// Answered through a dispatch rather than Confirm.
			c.stopTicker()
			c.phase = PhaseIdle
			c.draft = record.ChosenOption
			c.schedule(q.ID)
			return
		}
		if answered || c.phase == PhaseRunning {
			return
		}
	}

	// A new question, or the same question reloaded without its answer.
	c.cancelFeedback()
	c.stopTicker()
	c.questionID = q.ID
	c.draft = ""
	if answered {
		c.remaining = 0
		c.phase = PhaseIdle
		c.emit()
		return
	}
	c.remaining = c.timing.Budget
	c.ticker = c.clock.NewTicker(c.timing.Tick)
	c.phase = PhaseRunning
	c.emit()
}

func (c *Controller) onTick() {
	if c.phase != PhaseRunning {
		return
	}
	c.remaining--
	if c.remaining > 0 {
		c.emit()
		return
	}
	c.remaining = 0
	c.phase = PhaseExpired
	c.emit()
	if err := c.submit(); err != nil {
		log.Printf("auto-submit for question %s failed: %v", c.questionID, err)
	}
}

// submit records the draft for the current question, leaves Running and
// schedules progression. An answer already recorded for the question is kept.
func (c *Controller) submit() error {
	c.stopTicker()
	questionID, draft := c.questionID, c.draft
	recorded := false
	err := c.store.Update(func(st domain.SessionState) Action {
		q, ok := st.CurrentQuestion()
		if !st.InProgress() || !ok || q.ID != questionID {
			return nil
		}
		recorded = true
		if _, done := st.Answer(q.ID); done {
			return nil
		}
		return RecordAnswer{Record: domain.AnswerRecord{
			QuestionID:   q.ID,
			ChosenOption: draft,
			IsCorrect:    draft != "" && draft == q.CorrectAnswer,
		}}
	})
	c.phase = PhaseIdle
	if err != nil || !recorded {
		c.emit()
		return err
	}
	c.schedule(questionID)
	return nil
}

// schedule arranges progression past the answered question after the
// feedback delay.
func (c *Controller) schedule(questionID string) {
	c.pending = questionID
	c.emit()

	if c.timing.FeedbackDelay <= 0 {
		c.progress()
		return
	}
	c.feedback = c.clock.NewTimer(c.timing.FeedbackDelay)
}

// progress applies the progression policy if the answered question is still
// current; a reset or reload in the meantime makes it a no-op.
func (c *Controller) progress() {
	pending := c.pending
	c.pending = ""
	if pending == "" {
		return
	}
	err := c.store.Update(func(st domain.SessionState) Action {
		q, ok := st.CurrentQuestion()
		if !st.InProgress() || !ok || q.ID != pending {
			return nil
		}
		return Advance(st)
	})
	if err != nil {
		log.Printf("progression after question %s failed: %v", pending, err)
	}
	c.sync()
}

func (c *Controller) acceptingQuestion() (domain.Question, bool) {
	if c.phase != PhaseRunning {
		return domain.Question{}, false
	}
	q, ok := c.store.Snapshot().State.CurrentQuestion()
	if !ok || q.ID != c.questionID {
		return domain.Question{}, false
	}
	return q, true
}

func (c *Controller) emit() {
	ev := CountdownEvent{
		QuestionID: c.questionID,
		Phase:      c.phase,
		Remaining:  c.remaining,
		Selected:   c.draft,
	}
	c.mu.Lock()
	c.last = ev
	c.events.publish(ev)
	c.mu.Unlock()
}

func (c *Controller) tickC() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}
	return c.ticker.C()
}

func (c *Controller) feedbackC() <-chan time.Time {
	if c.feedback == nil {
		return nil
	}
	return c.feedback.C()
}

func (c *Controller) stopTicker() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

func (c *Controller) cancelFeedback() {
	if c.feedback != nil {
		c.feedback.Stop()
		c.feedback = nil
	}
	c.pending = ""
}
