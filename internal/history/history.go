package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/alf-academy/enroll/internal/logger"
	"github.com/alf-academy/enroll/internal/nats"
	"github.com/alf-academy/enroll/internal/submission"
)

// Entry statuses.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusFailed   = "failed"
)

// Entry is one enrollment as reconstructed from its events.
type Entry struct {
	PayloadID  string    `json:"payload_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	TrialStart string    `json:"trial_start,omitempty"`
	Status     string    `json:"status"`
	Attempts   int       `json:"attempts"`
	StatusCode int       `json:"status_code,omitempty"`
	Message    string    `json:"message,omitempty"`
	ReceiptID  string    `json:"receipt_id,omitempty"`
	FirstAt    time.Time `json:"first_at"`
	LastAt     time.Time `json:"last_at"`
}

// State is the reduced view of the history stream.
type State struct {
	Entries   map[string]*Entry `json:"entries"`
	Malformed int               `json:"malformed,omitempty"`
}

func newState() *State {
	return &State{Entries: make(map[string]*Entry)}
}

// Apply folds one event into the state.
func (st *State) Apply(e submission.Event) {
	if e.PayloadID == "" {
		return
	}
	entry, ok := st.Entries[e.PayloadID]
	if !ok {
		entry = &Entry{
			PayloadID: e.PayloadID,
			Status:    StatusPending,
			FirstAt:   e.At,
		}
		st.Entries[e.PayloadID] = entry
	}
	if e.Name != "" {
		entry.Name = e.Name
	}
	if e.Email != "" {
		entry.Email = e.Email
	}
	if e.TrialStart != "" {
		entry.TrialStart = e.TrialStart
	}
	entry.LastAt = e.At

	switch e.Type {
	case submission.EventAttempt:
		entry.Attempts++
		if entry.Status != StatusAccepted {
			entry.Status = StatusPending
		}
	case submission.EventSuccess:
		entry.Status = StatusAccepted
		entry.StatusCode = e.StatusCode
		entry.ReceiptID = e.ReceiptID
		entry.Message = ""
	case submission.EventFailure:
		if entry.Status != StatusAccepted {
			entry.Status = StatusFailed
			entry.StatusCode = e.StatusCode
			entry.Message = e.Message
		}
	}
}

// List returns the entries, most recent activity first.
func (st *State) List() []*Entry {
	out := make([]*Entry, 0, len(st.Entries))
	for _, e := range st.Entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastAt.Equal(out[j].LastAt) {
			return out[i].PayloadID < out[j].PayloadID
		}
		return out[i].LastAt.After(out[j].LastAt)
	})
	return out
}

// Store appends submission events to JetStream and replays them.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
	closer func() error
}

// NewStore wraps an existing JetStream context and history stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{js: js, stream: stream}
}

// Open starts the embedded event store under dataDir. Close releases it.
func Open(ctx context.Context, dataDir string) (*Store, error) {
	e, err := nats.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening history store: %w", err)
	}
	stream, err := nats.SetupStream(ctx, e.JS)
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	s := NewStore(e.JS, stream)
	s.closer = e.Close
	return s, nil
}

// Close stops the embedded server if the store started one.
func (s *Store) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer()
}

// Record implements submission.Recorder.
func (s *Store) Record(ctx context.Context, e submission.Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	subject := nats.SubjectForEvent(e.Type)
	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("publishing %s: %w", subject, err)
	}
	logger.Debug("Recorded %s for %s: seq=%d", e.Type, e.PayloadID, ack.Sequence)
	return nil
}

// Load replays every event in the stream into a State.
func (s *Store) Load(ctx context.Context) (*State, error) {
	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: nats.SubjectAll,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("creating history consumer: %w", err)
	}

	state := newState()
	const batchSize = 500
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		n := 0
		for msg := range msgs.Messages() {
			n++
			var e submission.Event
			if err := json.Unmarshal(msg.Data(), &e); err != nil {
				state.Malformed++
				logger.Warn("Skipping malformed history event on %s: %v", msg.Subject(), err)
				_ = msg.Ack()
				continue
			}
			state.Apply(e)
			_ = msg.Ack()
		}
		if n < batchSize {
			break
		}
	}

	logger.Debug("History loaded: %d entries, %d malformed events", len(state.Entries), state.Malformed)
	return state, nil
}
