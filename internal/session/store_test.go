package session

import (
	"errors"
	"testing"
	"time"

	"trivia-quiz-service/internal/domain"
)

func TestStoreRejectsBrokenInvariants(t *testing.T) {
	s := NewStore(domain.DefaultConfiguration())

	if err := s.Dispatch(SetCurrentQuestion{Index: 1}); !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Fatalf("expected index error on empty set, got %v", err)
	}
	if err := s.Dispatch(SetCurrentQuestion{Index: 0}); err != nil {
		t.Fatalf("index 0 is valid on an empty set: %v", err)
	}

	dup := sampleQuestions(2)
	dup[1].ID = dup[0].ID
	if err := s.Dispatch(SetQuestions{Questions: dup}); !errors.Is(err, domain.ErrDuplicateQuestion) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	if err := s.Dispatch(SetQuestions{Questions: sampleQuestions(2)}); err != nil {
		t.Fatalf("set questions: %v", err)
	}
	if err := s.Dispatch(SetCurrentQuestion{Index: 2}); !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Fatalf("expected index error, got %v", err)
	}
	if err := s.Dispatch(RecordAnswer{Record: domain.AnswerRecord{QuestionID: "nope"}}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected unknown question error, got %v", err)
	}

	st := s.State()
	if st.CurrentIndex != 0 || len(st.Answers) != 0 {
		t.Fatalf("rejected actions must leave state untouched: %+v", st)
	}
}

func TestStoreStateIsACopy(t *testing.T) {
	s := NewStore(domain.DefaultConfiguration())
	if err := s.Dispatch(SetQuestions{Questions: sampleQuestions(1)}); err != nil {
		t.Fatalf("set questions: %v", err)
	}
	st := s.State()
	st.Questions[0].PresentedOptions[0] = "tampered"

	if got := s.State().Questions[0].PresentedOptions[0]; got == "tampered" {
		t.Fatalf("state snapshot aliased store memory")
	}
}

func TestStoreSubscribeSeesEveryRevisionInOrder(t *testing.T) {
	s := NewStore(domain.DefaultConfiguration())
	ch, cancel := s.Subscribe()
	defer cancel()

	first := <-ch
	if first.Revision != 0 {
		t.Fatalf("expected initial revision 0, got %d", first.Revision)
	}

	_ = s.Dispatch(SetLoading{Loading: true})
	_ = s.Dispatch(SetQuestions{Questions: sampleQuestions(2)})
	_ = s.Dispatch(StartSession{})

	var last Snapshot
	for i := 0; i < 3; i++ {
		select {
		case snap := <-ch:
			if snap.Revision <= last.Revision {
				t.Fatalf("revisions out of order: %d after %d", snap.Revision, last.Revision)
			}
			last = snap
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for snapshot %d", i+1)
		}
	}
	if !last.State.HasStarted || last.Revision != 3 {
		t.Fatalf("expected started state at revision 3, got %+v", last)
	}
}

func TestStoreUpdateNilIsNoop(t *testing.T) {
	s := NewStore(domain.DefaultConfiguration())
	if err := s.Update(func(domain.SessionState) Action { return nil }); err != nil {
		t.Fatalf("update: %v", err)
	}
	if rev := s.Snapshot().Revision; rev != 0 {
		t.Fatalf("expected no revision bump, got %d", rev)
	}
}

func TestStoreCloseEndsSubscriptions(t *testing.T) {
	s := NewStore(domain.DefaultConfiguration())
	ch, cancel := s.Subscribe()
	defer cancel()
	<-ch

	s.Close()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
}
