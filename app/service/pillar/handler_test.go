package pillar

import (
	"context"
	"testing"

	"wellspring/app/client/llm"
	"wellspring/app/service/memory"
	"wellspring/app/service/modelrouter"
	"wellspring/app/service/topic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRouter struct {
	lastTask    modelrouter.Task
	lastSystem  string
	lastHistory []llm.Message
	reply       string
}

func (f *fakeRouter) Route(_ context.Context, task modelrouter.Task, system, _ string, history []llm.Message) (*modelrouter.Reply, error) {
	f.lastTask = task
	f.lastSystem = system
	f.lastHistory = history

	return &modelrouter.Reply{Provider: "openai", Text: f.reply}, nil
}

func TestRegistryRegistersAllPillars(t *testing.T) {
	router := &fakeRouter{reply: "ok"}

	registry := NewEmptyRegistry()
	for _, handler := range DefaultHandlers(router) {
		require.NoError(t, registry.Register(handler))
	}

	for _, pillar := range []string{
		topic.PillarSleep, topic.PillarNutrition, topic.PillarFitness,
		topic.PillarMindset, topic.PillarMoney,
	} {
		_, ok := registry.Lookup(pillar)
		assert.True(t, ok, "missing handler for %s", pillar)
	}

	_, ok := registry.Lookup("astrology")
	assert.False(t, ok)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	router := &fakeRouter{reply: "ok"}
	handlers := DefaultHandlers(router)

	registry := NewEmptyRegistry()
	require.NoError(t, registry.Register(handlers[0]))
	require.Error(t, registry.Register(handlers[0]))
}

func TestHandlerComposesMemoryContext(t *testing.T) {
	router := &fakeRouter{reply: "sleep well"}
	handler := &coachHandler{
		pillar:   topic.PillarSleep,
		task:     modelrouter.TaskConversational,
		template: sleepPromptTemplate,
		router:   router,
	}

	mem := memory.NewUserMemory("u1")
	mem.AppendTurn(topic.PillarSleep, memory.RoleUser, "I keep waking up at 3am")
	mem.AppendTurn(topic.PillarSleep, memory.RoleAssistant, "Let's look at your evenings")
	mem.UpsertItem(topic.PillarSleep, memory.ItemHabit, "No Screens After 10", "")
	mem.MarkCovered(topic.PillarSleep, "caffeine timing")

	resp, err := handler.Handle(context.Background(), Request{
		UserID:  "u1",
		Message: "still waking up",
		Mem:     mem,
	})

	require.NoError(t, err)
	assert.Equal(t, "sleep well", resp.Text)
	assert.Equal(t, modelrouter.TaskConversational, router.lastTask)

	assert.Contains(t, router.lastSystem, "No Screens After 10")
	assert.Contains(t, router.lastSystem, "caffeine timing")
	assert.NotContains(t, router.lastSystem, "{items}", "placeholders must be substituted")

	require.Len(t, router.lastHistory, 2)
	assert.Equal(t, llm.RoleUser, router.lastHistory[0].Role)
	assert.Equal(t, llm.RoleAssistant, router.lastHistory[1].Role)
}

func TestHandlerLimitsHistoryWindow(t *testing.T) {
	router := &fakeRouter{reply: "ok"}
	handler := &coachHandler{
		pillar:   topic.PillarFitness,
		task:     modelrouter.TaskConversational,
		template: fitnessPromptTemplate,
		router:   router,
	}

	mem := memory.NewUserMemory("u1")
	for n := 0; n < 15; n++ {
		mem.AppendTurn(topic.PillarFitness, memory.RoleUser, "another turn")
	}

	_, err := handler.Handle(context.Background(), Request{UserID: "u1", Message: "hi", Mem: mem})

	require.NoError(t, err)
	assert.Len(t, router.lastHistory, historyWindow)
}
