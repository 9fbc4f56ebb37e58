package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ideaforge-api/internal/models"
)

func TestSessionServiceCreatesSessionOnFirstRead(t *testing.T) {
	ws := newWorkspace(t)

	first, err := ws.sessions.Current(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.False(t, first.StartedAt.IsZero())
	require.Zero(t, first.IdeasAnalyzed)
	require.True(t, first.AnalyzerConfigured)

	second, err := ws.sessions.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.True(t, first.StartedAt.Equal(second.StartedAt))
}

func TestSessionServiceRecordsOutcomes(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()

	require.NoError(t, ws.sessions.Record(ctx, OutcomeAnalyzed))
	require.NoError(t, ws.sessions.Record(ctx, OutcomeFallback))
	require.NoError(t, ws.sessions.Record(ctx, OutcomeRejected))
	require.NoError(t, ws.sessions.Record(ctx, OutcomeRejected))

	_, err := ws.ideas.Save(ctx, models.Idea{Title: "Stored", Description: "One stored idea"})
	require.NoError(t, err)

	session, err := ws.sessions.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, session.IdeasAnalyzed)
	require.Equal(t, 1, session.FallbackAnalyses)
	require.Equal(t, 2, session.RejectedSubmissions)
	require.Equal(t, 1, session.StoredIdeas)
	require.False(t, session.LastActiveAt.Before(session.StartedAt))
}
