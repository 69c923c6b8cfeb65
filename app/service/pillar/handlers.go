package pillar

import (
	"wellspring/app/service/modelrouter"
	"wellspring/app/service/topic"

	_ "embed"
)

//go:embed sleep_prompt.txt
var sleepPromptTemplate string

//go:embed nutrition_prompt.txt
var nutritionPromptTemplate string

//go:embed fitness_prompt.txt
var fitnessPromptTemplate string

//go:embed mindset_prompt.txt
var mindsetPromptTemplate string

//go:embed money_prompt.txt
var moneyPromptTemplate string

func DefaultHandlers(router Router) []Handler {
	return []Handler{
		&coachHandler{
			pillar:   topic.PillarSleep,
			task:     modelrouter.TaskConversational,
			template: sleepPromptTemplate,
			router:   router,
		},
		&coachHandler{
			pillar:   topic.PillarNutrition,
			task:     modelrouter.TaskMixed,
			template: nutritionPromptTemplate,
			router:   router,
		},
		&coachHandler{
			pillar:   topic.PillarFitness,
			task:     modelrouter.TaskConversational,
			template: fitnessPromptTemplate,
			router:   router,
		},
		&coachHandler{
			pillar:   topic.PillarMindset,
			task:     modelrouter.TaskDeepReasoning,
			template: mindsetPromptTemplate,
			router:   router,
		},
		&coachHandler{
			pillar:   topic.PillarMoney,
			task:     modelrouter.TaskDeepReasoning,
			template: moneyPromptTemplate,
			router:   router,
		},
	}
}
