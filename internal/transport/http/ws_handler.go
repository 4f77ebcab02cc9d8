package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/session"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option string `json:"option"`
}

type navigatePayload struct {
	Screen session.Screen `json:"screen"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type attemptPayload struct {
	ID string `json:"id"`
}

// stateView is what the UI renders: the state plus every derivation.
type stateView struct {
	Revision    uint64               `json:"revision"`
	State       domain.SessionState  `json:"state"`
	Score       int                  `json:"score"`
	Progress    int                  `json:"progress"`
	Total       int                  `json:"total"`
	Percentage  int                  `json:"percentage"`
	WarnOnLeave bool                 `json:"warnOnLeave"`
	Review      []session.ReviewItem `json:"review,omitempty"`
	Verdict     string               `json:"verdict,omitempty"`
}

func newStateView(snap session.Snapshot) stateView {
	st := snap.State
	view := stateView{
		Revision:    snap.Revision,
		State:       st,
		Score:       session.Score(st),
		Progress:    session.Progress(st),
		Total:       len(st.Questions),
		Percentage:  session.Percentage(st),
		WarnOnLeave: session.WarnOnLeave(st),
	}
	if st.IsCompleted {
		view.Review = session.Review(st)
		view.Verdict = session.Verdict(view.Percentage)
	}
	return view
}

// ServeWS upgrades HTTP requests to websockets and runs one quiz attempt per
// connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	attempt, _ := h.service.Open(r.URL.Query().Get("attemptId"))
	defer h.service.Release(attempt.ID())

	states, cancelStates := attempt.Subscribe()
	defer cancelStates()
	countdown, cancelCountdown := attempt.SubscribeCountdown()
	defer cancelCountdown()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			var msg outboundMessage[any]
			select {
			case snap, ok := <-states:
				if !ok {
					return
				}
				msg = outboundMessage[any]{Type: "state", Payload: newStateView(snap)}
			case ev, ok := <-countdown:
				if !ok {
					return
				}
				msg = outboundMessage[any]{Type: "countdown", Payload: ev}
			case <-closeSignals:
				return
			}
			select {
			case send <- msg:
			case <-closeSignals:
				return
			}
		}
	}()

	reply := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}
	reply(outboundMessage[any]{Type: "attempt", Payload: attemptPayload{ID: attempt.ID()}})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if msg, ok := h.handle(r.Context(), attempt, inbound); ok {
			reply(msg)
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// handle applies one inbound command. State changes reach the client through
// the subscriptions; only navigation decisions and errors are answered here.
func (h *WSHandler) handle(ctx context.Context, attempt *app.Attempt, inbound inboundMessage) (outboundMessage[any], bool) {
	var err error
	switch inbound.Type {
	case "configure":
		var cfg domain.QuizConfiguration
		if err := json.Unmarshal(inbound.Payload, &cfg); err != nil {
			return errorMessage("invalid configure payload"), true
		}
		err = attempt.Configure(cfg)
	case "start":
		err = attempt.Start(ctx)
		if errors.Is(err, app.ErrFetchQuestions) {
			return errorMessage(app.LoadErrorMessage), true
		}
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid select payload"), true
		}
		err = attempt.Select(payload.Option)
	case "confirm":
		err = attempt.Confirm()
	case "reset":
		err = attempt.Reset()
	case "navigate":
		var payload navigatePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid navigate payload"), true
		}
		return outboundMessage[any]{Type: "navigation", Payload: attempt.Guard(payload.Screen)}, true
	default:
		return errorMessage("unsupported message type"), true
	}
	if err != nil {
		return errorMessage(err.Error()), true
	}
	return outboundMessage[any]{}, false
}

func errorMessage(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
