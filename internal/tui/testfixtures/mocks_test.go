package testfixtures

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alf-academy/enroll/internal/enrollment"
)

func TestFullFormIsValid(t *testing.T) {
	res := Validator().ValidateAll(FullForm())
	assert.True(t, res.Valid, res.Prompt())
	assert.Equal(t, enrollment.StepSchedule, ScheduleNavigator().Step())
}

func TestMockSubmitter(t *testing.T) {
	m := NewMockSubmitter()
	r, err := m.Submit(context.Background(), FullForm())
	require.NoError(t, err)
	assert.Equal(t, "stu_1", r.ID)

	m.Err = errors.New("down")
	_, err = m.Submit(context.Background(), FullForm())
	assert.EqualError(t, err, "down")
	assert.Equal(t, 2, m.Calls())
}

func TestMockSubmitter_BlockHonorsContext(t *testing.T) {
	m := NewMockSubmitter()
	m.Block = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Submit(ctx, FullForm())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockDrafts(t *testing.T) {
	m := NewMockDrafts()
	path, err := m.SaveForm("Amina Yusuf", FullForm(), "offline")
	require.NoError(t, err)
	assert.Equal(t, "drafts/1.yaml", path)
	assert.Equal(t, "Amina", m.Saved[0].Values[enrollment.FieldFirstName])

	m.Err = errors.New("disk full")
	_, err = m.SaveForm("x", FullForm(), "")
	assert.Error(t, err)
	assert.Equal(t, 1, m.Count())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "enter", Key("enter").String())
	assert.Equal(t, "shift+tab", Key("shift+tab").String())
	assert.Equal(t, "q", Key("q").String())
	assert.Len(t, Type("ab c"), 4)
}
