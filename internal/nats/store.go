package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the JetStream stream holding submission history.
	StreamName = "enroll_events"

	subjectRoot = "enroll"

	// Retention is how long history events are kept.
	Retention = 365 * 24 * time.Hour
)

// SubjectAll matches every history subject.
const SubjectAll = subjectRoot + ".>"

// SubjectForEvent returns the subject an event type is published on, e.g.
// "enroll.submission.success".
func SubjectForEvent(eventType string) string {
	return fmt.Sprintf("%s.submission.%s", subjectRoot, eventType)
}

// SetupStream creates or updates the history stream.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectAll},
		Storage:  jetstream.FileStorage,
		MaxAge:   Retention,
	})
	if err != nil {
		return nil, fmt.Errorf("setting up %s stream: %w", StreamName, err)
	}
	return stream, nil
}
