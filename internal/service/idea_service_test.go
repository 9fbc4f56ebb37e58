package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ideaforge-api/internal/dto"
	"github.com/noah-isme/ideaforge-api/internal/models"
)

func seedIdeas(t *testing.T, ws workspace) {
	t.Helper()
	base := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	ideas := []models.Idea{
		{ID: "a", Title: "Bakery", Category: models.CategoryBusiness, MaturityScore: 60, DevelopmentStage: models.StageStructured, UpdatedAt: base},
		{ID: "b", Title: "ai tutor", Category: models.CategoryEducation, MaturityScore: 80, DevelopmentStage: models.StageDeveloped, IsStarred: true, UpdatedAt: base.Add(time.Hour)},
		{ID: "c", Title: "Clinic booking", Category: models.CategoryHealth, MaturityScore: 40, DevelopmentStage: models.StageRaw, UpdatedAt: base.Add(2 * time.Hour)},
	}
	require.NoError(t, ws.ideas.ReplaceAll(context.Background(), ideas))
}

func ideaIDs(ideas []models.Idea) []string {
	ids := make([]string, 0, len(ideas))
	for _, idea := range ideas {
		ids = append(ids, idea.ID)
	}
	return ids
}

func TestIdeaServiceListFiltersAndSorts(t *testing.T) {
	ws := newWorkspace(t)
	seedIdeas(t, ws)
	svc := NewIdeaService(ws.ideas, ws.discovery, validator.New(), zerolog.Nop())
	ctx := context.Background()

	recent, err := svc.List(ctx, dto.IdeaListQuery{})
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b", "a"}, ideaIDs(recent))

	byScore, err := svc.List(ctx, dto.IdeaListQuery{Sort: "score"})
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a", "c"}, ideaIDs(byScore))

	byTitle, err := svc.List(ctx, dto.IdeaListQuery{Sort: "title"})
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a", "c"}, ideaIDs(byTitle))

	starred := true
	onlyStarred, err := svc.List(ctx, dto.IdeaListQuery{Starred: &starred})
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, ideaIDs(onlyStarred))

	health, err := svc.List(ctx, dto.IdeaListQuery{Category: "health", Stage: "raw"})
	require.NoError(t, err)
	require.Equal(t, []string{"c"}, ideaIDs(health))

	_, err = svc.List(ctx, dto.IdeaListQuery{Sort: "random"})
	require.Error(t, err)
}

func TestIdeaServiceGetStampsLastViewed(t *testing.T) {
	ws := newWorkspace(t)
	seedIdeas(t, ws)
	svc := NewIdeaService(ws.ideas, ws.discovery, validator.New(), zerolog.Nop())

	idea, err := svc.Get(context.Background(), "a")
	require.NoError(t, err)
	require.NotNil(t, idea.LastViewedAt)

	stored, err := ws.ideas.FindByID(context.Background(), "a")
	require.NoError(t, err)
	require.NotNil(t, stored.LastViewedAt)

	_, err = svc.Get(context.Background(), "zzz")
	require.ErrorIs(t, err, ErrIdeaNotFound)
}

func TestIdeaServiceUpdateSanitisesAndBumpsUpdatedAt(t *testing.T) {
	ws := newWorkspace(t)
	seedIdeas(t, ws)
	svc := NewIdeaService(ws.ideas, ws.discovery, validator.New(), zerolog.Nop())
	ctx := context.Background()

	title := "<b>Artisan</b> bakery & cafe"
	category := "technology"
	tags := []string{"bread", " Bread ", "<i>pastry</i>"}
	updated, err := svc.Update(ctx, "a", dto.IdeaUpdateRequest{Title: &title, Category: &category, Tags: &tags})
	require.NoError(t, err)

	require.Equal(t, "Artisan bakery & cafe", updated.Title)
	require.Equal(t, models.CategoryTechnology, updated.Category)
	require.Equal(t, []string{"bread", "pastry"}, updated.Tags)
	require.True(t, updated.UpdatedAt.After(time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)))

	_, err = svc.Update(ctx, "a", dto.IdeaUpdateRequest{})
	require.ErrorIs(t, err, ErrEmptyUpdate)

	bad := "finance"
	_, err = svc.Update(ctx, "a", dto.IdeaUpdateRequest{Category: &bad})
	require.Error(t, err)
}

func TestIdeaServiceToggleStarAndDelete(t *testing.T) {
	ws := newWorkspace(t)
	seedIdeas(t, ws)
	svc := NewIdeaService(ws.ideas, ws.discovery, validator.New(), zerolog.Nop())
	ctx := context.Background()

	starred, err := svc.ToggleStar(ctx, "a")
	require.NoError(t, err)
	require.True(t, starred.IsStarred)

	unstarred, err := svc.ToggleStar(ctx, "a")
	require.NoError(t, err)
	require.False(t, unstarred.IsStarred)

	require.NoError(t, svc.Delete(ctx, "a"))
	require.ErrorIs(t, svc.Delete(ctx, "a"), ErrIdeaNotFound)

	remaining, err := ws.ideas.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
}
