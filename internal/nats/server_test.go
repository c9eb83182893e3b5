package nats

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectForEvent(t *testing.T) {
	assert.Equal(t, "enroll.submission.attempt", SubjectForEvent("attempt"))
	assert.Equal(t, "enroll.>", SubjectAll)
	assert.Equal(t, filepath.Join("data", "nats"), StoreDir("data"))
}

func TestEmbedded_PublishAndPersist(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()

	e, err := Open(dataDir)
	require.NoError(t, err)

	stream, err := SetupStream(ctx, e.JS)
	require.NoError(t, err)

	_, err = e.JS.Publish(ctx, SubjectForEvent("attempt"), []byte(`{"type":"attempt"}`))
	require.NoError(t, err)

	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.State.Msgs)
	require.NoError(t, e.Close())

	// File storage survives a restart.
	e, err = Open(dataDir)
	require.NoError(t, err)
	defer e.Close()

	stream, err = SetupStream(ctx, e.JS)
	require.NoError(t, err)
	info, err = stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.State.Msgs)
}

func TestEmbedded_CloseNil(t *testing.T) {
	var e *Embedded
	assert.NoError(t, e.Close())
	assert.NoError(t, Shutdown(nil, nil))
}
