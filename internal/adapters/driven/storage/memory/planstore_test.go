package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

func samplePlan(id string) *domain.StudyPlan {
	return &domain.StudyPlan{
		ID:        id,
		TotalDays: 2,
		Entries: []domain.StudyPlanEntry{
			{Day: 1, Date: baseTime.AddDate(0, 0, 1), Subject: "Math", Hours: 2, Topics: []string{"Math - Topic 1"}},
			{Day: 2, Date: baseTime.AddDate(0, 0, 2), Subject: "Math", Hours: 2, Topics: []string{"Math - Topic 2"}},
		},
		TotalHours: 4,
		CreatedAt:  baseTime,
	}
}

func TestPlanStore_SaveAndGet(t *testing.T) {
	store := NewPlanStore()
	ctx := context.Background()

	plan := samplePlan("plan-1")
	require.NoError(t, store.Save(ctx, plan))

	plan.Entries[0].Subject = "mutated"

	got, err := store.Get(ctx, "plan-1")
	require.NoError(t, err)
	assert.Equal(t, "Math", got.Entries[0].Subject)
	assert.Equal(t, 2, got.TotalDays)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlanStore_Save_RequiresID(t *testing.T) {
	store := NewPlanStore()
	assert.ErrorIs(t, store.Save(context.Background(), samplePlan("")), domain.ErrInvalidArgument)
	assert.ErrorIs(t, store.Save(context.Background(), nil), domain.ErrInvalidArgument)
}

func TestPlanStore_Latest(t *testing.T) {
	store := NewPlanStore()
	ctx := context.Background()

	_, err := store.Latest(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Save(ctx, samplePlan("plan-1")))
	require.NoError(t, store.Save(ctx, samplePlan("plan-2")))

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "plan-2", latest.ID)

	require.NoError(t, store.Delete(ctx, "plan-2"))
	latest, err = store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "plan-1", latest.ID)
}

func TestPlanStore_SetCompleted(t *testing.T) {
	store := NewPlanStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, samplePlan("plan-1")))

	require.NoError(t, store.SetCompleted(ctx, "plan-1", 2, true))
	got, err := store.Get(ctx, "plan-1")
	require.NoError(t, err)
	assert.False(t, got.Entries[0].Completed)
	assert.True(t, got.Entries[1].Completed)
	assert.InDelta(t, 0.5, got.Progress(), 1e-9)

	assert.ErrorIs(t, store.SetCompleted(ctx, "plan-1", 3, true), domain.ErrInvalidArgument)
	assert.ErrorIs(t, store.SetCompleted(ctx, "missing", 1, true), domain.ErrNotFound)
}

func TestPlanStore_Delete(t *testing.T) {
	store := NewPlanStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, samplePlan("plan-1")))

	require.NoError(t, store.Delete(ctx, "plan-1"))
	assert.ErrorIs(t, store.Delete(ctx, "plan-1"), domain.ErrNotFound)
}
