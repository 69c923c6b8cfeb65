package persist

import (
	"context"
	"errors"
	"testing"
	"time"

	"wellspring/app/service/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	saves   int
	failErr error
}

func (f *fakeStore) Save(_ string, _ *memory.UserMemory) error {
	f.saves++
	return f.failErr
}

func TestPersistRecordsInteractionAndHabit(t *testing.T) {
	store := &fakeStore{}
	svc := NewWithStore(store)
	mem := memory.NewUserMemory("u1")

	assistantText := "Habit: \"Morning Stretch\"\nKeep it up!"

	outcome, err := svc.Persist(context.Background(), mem, "fitness", "I stretched today", assistantText)

	require.NoError(t, err)
	assert.True(t, outcome.Saved)
	assert.Equal(t, 1, store.saves)

	history := mem.Pillar("fitness").History
	require.Len(t, history, 2)
	assert.Equal(t, memory.RoleUser, history[0].Role)
	assert.Equal(t, "I stretched today", history[0].Text)
	assert.Equal(t, memory.RoleAssistant, history[1].Role)
	require.Len(t, mem.Window, 2)

	var logs, habits int
	for _, item := range mem.Pillar("fitness").Items {
		switch item.Type {
		case memory.ItemLog:
			logs++
		case memory.ItemHabit:
			habits++
			assert.Equal(t, "Morning Stretch", item.Title)
		}
	}
	assert.Equal(t, 1, logs)
	assert.Equal(t, 1, habits)

	assert.Contains(t, outcome.DeliveredText, "Keep it up!")
	assert.Contains(t, outcome.DeliveredText, "created 1 habit")
}

func TestPersistUpsertsInsteadOfDuplicating(t *testing.T) {
	store := &fakeStore{}
	svc := NewWithStore(store)
	mem := memory.NewUserMemory("u1")

	_, err := svc.Persist(context.Background(), mem, "fitness", "turn one", "Habit: \"Evening Walk\" sounds good")
	require.NoError(t, err)

	outcome, err := svc.Persist(context.Background(), mem, "fitness", "turn two", "Habit: \"Evening Walk\" again")
	require.NoError(t, err)

	var habits int
	for _, item := range mem.Pillar("fitness").Items {
		if item.Type == memory.ItemHabit {
			habits++
		}
	}
	assert.Equal(t, 1, habits, "same (type, title) pair must update, not duplicate")
	require.Len(t, outcome.Updated, 1)
	assert.Contains(t, outcome.DeliveredText, "updated 1 habit")
}

func TestPersistExtractsAllTagKinds(t *testing.T) {
	store := &fakeStore{}
	svc := NewWithStore(store)
	mem := memory.NewUserMemory("u1")

	text := `Here is where we landed.
SmartGoal: "Save 200 a month"
LifePlan: "Debt Payoff Roadmap"
Screening: "Money Stress Check"`

	outcome, err := svc.Persist(context.Background(), mem, "money", "help me plan", text)

	require.NoError(t, err)
	assert.Len(t, outcome.Created, 4) // log + three tagged items

	p := mem.Pillar("money")
	require.NotNil(t, p.LastArtifact)
	assert.Equal(t, memory.ItemScreening, p.LastArtifact.Type)
	assert.True(t, p.RecentlyCovered("Debt Payoff Roadmap", time.Now()))
}

func TestSaveFailureSuppressesAdvice(t *testing.T) {
	store := &fakeStore{failErr: errors.New("disk full")}
	svc := NewWithStore(store)
	mem := memory.NewUserMemory("u1")

	advice := `Here's your plan:
1. Go to bed at the same time every night.
2. No caffeine after 2pm.
3. Put your phone in another room.`

	outcome, err := svc.Persist(context.Background(), mem, "sleep", "help me sleep", advice)

	require.NoError(t, err)
	assert.False(t, outcome.Saved)
	assert.NotContains(t, outcome.DeliveredText, "caffeine")
	assert.NotContains(t, outcome.DeliveredText, "1.")
	assert.Contains(t, outcome.DeliveredText, "holding back")

	// the interaction is still recorded in memory, even though the save failed
	assert.Len(t, mem.Pillar("sleep").History, 2)
}

func TestSaveFailureKeepsShortNonAdviceText(t *testing.T) {
	store := &fakeStore{failErr: errors.New("disk full")}
	svc := NewWithStore(store)
	mem := memory.NewUserMemory("u1")

	outcome, err := svc.Persist(context.Background(), mem, "sleep", "thanks!", "You're welcome! Sleep tight.")

	require.NoError(t, err)
	assert.False(t, outcome.Saved)
	assert.Contains(t, outcome.DeliveredText, "You're welcome")
	assert.Contains(t, outcome.DeliveredText, "couldn't save")
}

func TestTwoTurnsYieldFourHistoryEntries(t *testing.T) {
	store := &fakeStore{}
	svc := NewWithStore(store)
	mem := memory.NewUserMemory("u1")

	_, err := svc.Persist(context.Background(), mem, "mindset", "first message", "first reply")
	require.NoError(t, err)
	_, err = svc.Persist(context.Background(), mem, "mindset", "second message", "second reply")
	require.NoError(t, err)

	assert.Len(t, mem.Pillar("mindset").History, 4)
}

func TestLooksLikeAdvice(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"numbered list", "1. do this\n2. do that", true},
		{"bullet list", "- drink water\n- walk more", true},
		{"imperative opener", "Try going to bed earlier tonight.", true},
		{"imperative mid-text", "Tonight, start a wind-down routine.", false},
		{"long text", string(make([]byte, adviceLengthThreshold+1)), true},
		{"short acknowledgement", "Glad that worked out for you!", false},
		{"question", "How did you sleep last night?", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LooksLikeAdvice(tc.text))
		})
	}
}
