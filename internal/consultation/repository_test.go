package consultation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medical-assistant/internal/platform/apperr"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	s := newSession()

	_, err := repo.GetByID(ctx, s.ID)
	assert.Equal(t, apperr.TypeNotFound, apperr.TypeOf(err))

	require.NoError(t, repo.Save(ctx, s))
	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, repo.Delete(ctx, s.ID))
	assert.ErrorIs(t, repo.Delete(ctx, s.ID), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), ErrNotFound)
}

func TestSession_TryBegin(t *testing.T) {
	s := newSession()
	assert.True(t, s.TryBegin())
	assert.False(t, s.TryBegin())
	s.End()
	assert.True(t, s.TryBegin())
}

func TestSession_HistoryIsCopied(t *testing.T) {
	s := newSession()
	s.AppendTurn(SenderUser, "hello", fixedNow)

	h := s.History()
	h[0].Text = "changed"
	assert.Equal(t, "hello", s.History()[0].Text)
}
