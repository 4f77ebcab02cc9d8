package session

import (
	"fmt"
	"log"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// Snapshot is a state together with the number of transitions applied
// before it. Revisions only grow.
type Snapshot struct {
	Revision uint64
	State    domain.SessionState
}

// Store is the single writer of a SessionState. Dispatches are applied one
// at a time in call order and every new state is published to subscribers.
type Store struct {
	mu       sync.Mutex
	state    domain.SessionState
	revision uint64
	closed   bool
	subs     *broadcaster[Snapshot]
}

// NewStore returns a store holding the initial state for cfg.
func NewStore(cfg domain.QuizConfiguration) *Store {
	return &Store{
		state: domain.NewSessionState(cfg.Clone()),
		subs:  newBroadcaster[Snapshot](),
	}
}

// Dispatch applies action. Actions that would break a state invariant are
// rejected with an error and leave the state untouched.
func (s *Store) Dispatch(action Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.applyLocked(action)
}

// Update derives an action from the current state and applies it in the
// same critical section, so the decision cannot go stale. A nil action is a
// no-op.
func (s *Store) Update(decide func(domain.SessionState) Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	action := decide(s.state.Clone())
	if action == nil {
		return nil
	}
	return s.applyLocked(action)
}

func (s *Store) applyLocked(action Action) error {
	if err := checkPreconditions(s.state, action); err != nil {
		log.Printf("dispatch %s rejected: %v", Name(action), err)
		return err
	}
	s.state = Reduce(s.state, action)
	s.revision++
	s.subs.publish(s.snapshotLocked())
	return nil
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{Revision: s.revision, State: s.state.Clone()}
}

// State returns a snapshot of the current state.
func (s *Store) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Snapshot returns the current state with its revision.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that receives the current snapshot followed by
// later ones. Intermediate snapshots may be skipped for a slow reader, the
// latest never is. The caller must invoke the returned cancel function.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		ch := make(chan Snapshot, 1)
		ch <- s.snapshotLocked()
		close(ch)
		return ch, func() {}
	}
	return s.subs.subscribe(s.snapshotLocked())
}

// Close ends every subscription. Later subscribers get the final snapshot on
// an already closed channel.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs.closeAll()
}

func checkPreconditions(state domain.SessionState, action Action) error {
	switch a := action.(type) {
	case SetCurrentQuestion:
		upper := len(state.Questions)
		if upper < 1 {
			upper = 1
		}
		if a.Index < 0 || a.Index >= upper {
			return fmt.Errorf("%w: %d not in [0, %d)", domain.ErrIndexOutOfRange, a.Index, upper)
		}
	case SetQuestions:
		seen := make(map[string]struct{}, len(a.Questions))
		for _, q := range a.Questions {
			if _, dup := seen[q.ID]; dup || q.ID == "" {
				return fmt.Errorf("%w: %q", domain.ErrDuplicateQuestion, q.ID)
			}
			seen[q.ID] = struct{}{}
		}
	case RecordAnswer:
		for _, q := range state.Questions {
			if q.ID == a.Record.QuestionID {
				return nil
			}
		}
		return fmt.Errorf("%w: %q", domain.ErrQuestionNotFound, a.Record.QuestionID)
	}
	return nil
}
