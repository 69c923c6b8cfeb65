package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Service {
	t.Helper()

	svc, err := NewAtDir(t.TempDir(), false)
	require.NoError(t, err)

	return svc
}

func TestLoadMissingUserReturnsEmptyRecord(t *testing.T) {
	svc := newTestStore(t)

	mem, err := svc.Load("nobody")

	require.NoError(t, err)
	assert.Equal(t, "nobody", mem.UserID)
	assert.Empty(t, mem.Window)
	assert.Empty(t, mem.Pillars)
}

func TestSaveLoadRoundTripPreservesOrder(t *testing.T) {
	svc := newTestStore(t)

	mem := NewUserMemory("u1")
	for i := 0; i < 5; i++ {
		mem.AppendTurn("sleep", RoleUser, fmt.Sprintf("user %d", i))
		mem.AppendTurn("sleep", RoleAssistant, fmt.Sprintf("assistant %d", i))
	}

	require.NoError(t, svc.Save("u1", mem))

	loaded, err := svc.Load("u1")
	require.NoError(t, err)

	history := loaded.Pillar("sleep").History
	require.Len(t, history, 10)
	assert.Equal(t, "user 0", history[0].Text)
	assert.Equal(t, "assistant 4", history[9].Text)
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestHistoryTrimsOldestFirst(t *testing.T) {
	mem := NewUserMemory("u1")

	for i := 0; i < 30; i++ {
		mem.AppendTurn("fitness", RoleUser, fmt.Sprintf("turn %d", i))
	}

	history := mem.Pillar("fitness").History
	require.Len(t, history, historyCap)
	assert.Equal(t, "turn 10", history[0].Text)
	assert.Equal(t, "turn 29", history[historyCap-1].Text)

	require.Len(t, mem.Window, historyCap)
}

func TestUpsertItemIsIdempotentByTypeAndTitle(t *testing.T) {
	mem := NewUserMemory("u1")

	first, created := mem.UpsertItem("fitness", ItemHabit, "Evening Walk", "walk 20 min")
	assert.True(t, created)

	second, created := mem.UpsertItem("fitness", ItemHabit, "  evening walk ", "walk 30 min")
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "walk 30 min", second.Content)

	require.Len(t, mem.Pillar("fitness").Items, 1)
}

func TestUpsertItemDistinguishesTypes(t *testing.T) {
	mem := NewUserMemory("u1")

	_, created := mem.UpsertItem("money", ItemHabit, "Budget Review", "")
	assert.True(t, created)

	_, created = mem.UpsertItem("money", ItemGoal, "Budget Review", "")
	assert.True(t, created, "same title under a different type is a new item")

	assert.Len(t, mem.Pillar("money").Items, 2)
}

func TestPlanUpsertFillsLastArtifact(t *testing.T) {
	mem := NewUserMemory("u1")

	mem.UpsertItem("sleep", ItemHabit, "Wind Down", "")
	assert.Nil(t, mem.Pillar("sleep").LastArtifact)

	mem.UpsertItem("sleep", ItemPlan, "Sleep Reset", "week one")
	require.NotNil(t, mem.Pillar("sleep").LastArtifact)
	assert.Equal(t, "Sleep Reset", mem.Pillar("sleep").LastArtifact.Title)
}

func TestCoveredTopicsRecencyWindow(t *testing.T) {
	mem := NewUserMemory("u1")
	mem.MarkCovered("mindset", "gratitude journaling")

	p := mem.Pillar("mindset")
	assert.True(t, p.RecentlyCovered("Gratitude Journaling", time.Now()))
	assert.False(t, p.RecentlyCovered("gratitude journaling", time.Now().Add(31*24*time.Hour)))
	assert.False(t, p.RecentlyCovered("cold showers", time.Now()))
}

func TestCoveredTopicsCapAtFifty(t *testing.T) {
	mem := NewUserMemory("u1")

	for i := 0; i < 60; i++ {
		mem.MarkCovered("nutrition", fmt.Sprintf("subject %d", i))
	}

	covered := mem.Pillar("nutrition").Covered
	require.Len(t, covered, coveredCap)
	assert.Equal(t, "subject 10", covered[0].Subject)
}

func TestForcedSaveFailure(t *testing.T) {
	svc, err := NewAtDir(t.TempDir(), true)
	require.NoError(t, err)

	err = svc.Save("u1", NewUserMemory("u1"))
	require.Error(t, err)
}

func TestResetRemovesRecord(t *testing.T) {
	svc := newTestStore(t)

	mem := NewUserMemory("u1")
	mem.AppendTurn("sleep", RoleUser, "hello")
	require.NoError(t, svc.Save("u1", mem))

	require.NoError(t, svc.Reset("u1"))
	require.NoError(t, svc.Reset("u1"), "resetting a missing record is fine")

	loaded, err := svc.Load("u1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Window)
}
