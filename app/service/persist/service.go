package persist

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"wellspring/app/service/memory"

	"github.com/samber/do"
)

// Store is the slice of the memory service the gate needs.
type Store interface {
	Save(userID string, mem *memory.UserMemory) error
}

// Service wraps every specialist's output: it records the raw interaction,
// extracts tracked items the text implies, and guarantees that advice-bearing
// text is only delivered after a successful durable write.
type Service struct {
	store Store
}

func New(di *do.Injector) (*Service, error) {
	return NewWithStore(do.MustInvoke[*memory.Service](di)), nil
}

func NewWithStore(store Store) *Service {
	return &Service{store: store}
}

type Outcome struct {
	// DeliveredText is what the caller may show the user. On save failure it
	// never contains withheld advice.
	DeliveredText string
	Created       []memory.TrackedItem
	Updated       []memory.TrackedItem
	Saved         bool
	SaveSummary   string
}

var tagPattern = regexp.MustCompile(`\b(Habit|SmartGoal|LifePlan|Screening):\s*"([^"]+)"`)

var tagTypes = map[string]memory.ItemType{
	"Habit":     memory.ItemHabit,
	"SmartGoal": memory.ItemGoal,
	"LifePlan":  memory.ItemPlan,
	"Screening": memory.ItemScreening,
}

// Persist mutates the in-memory record, saves it, and decides what text may
// leave the system. The interaction pair is recorded unconditionally, even
// for degraded responses.
func (s *Service) Persist(_ context.Context, mem *memory.UserMemory, pillarKey, userText, assistantText string) (*Outcome, error) {
	mem.AppendTurn(pillarKey, memory.RoleUser, userText)
	mem.AppendTurn(pillarKey, memory.RoleAssistant, assistantText)

	logTitle := fmt.Sprintf("Session %s", time.Now().Format("2006-01-02 15:04:05.000000000"))
	logContent := fmt.Sprintf("user: %s\nassistant: %s", userText, assistantText)
	logItem, _ := mem.UpsertItem(pillarKey, memory.ItemLog, logTitle, logContent)

	outcome := &Outcome{
		Created: []memory.TrackedItem{logItem},
	}

	for _, match := range tagPattern.FindAllStringSubmatch(assistantText, -1) {
		itemType := tagTypes[match[1]]
		title := match[2]

		item, created := mem.UpsertItem(pillarKey, itemType, title, assistantText)
		if created {
			outcome.Created = append(outcome.Created, item)
		} else {
			outcome.Updated = append(outcome.Updated, item)
		}

		mem.MarkCovered(pillarKey, title)
	}

	if err := s.store.Save(mem.UserID, mem); err != nil {
		slog.Error("Memory save failed",
			"user_id", mem.UserID,
			"pillar", pillarKey,
			"error", err,
			"telegram", true,
		)

		outcome.Saved = false
		outcome.SaveSummary = "save failed"
		outcome.DeliveredText = s.degradedText(assistantText)

		return outcome, nil
	}

	outcome.Saved = true
	outcome.SaveSummary = s.summarize(outcome)
	outcome.DeliveredText = assistantText + "\n\n" + outcome.SaveSummary

	return outcome, nil
}

// degradedText applies the "no advice without a save" invariant: text that
// looks like actionable advice is withheld entirely, anything else goes out
// with a warning attached.
func (s *Service) degradedText(assistantText string) string {
	if LooksLikeAdvice(assistantText) {
		return "I wasn't able to save our conversation just now, so I'm holding back my suggestions — " +
			"I don't want to give you a plan we'd both lose. Please send your message again in a moment."
	}

	return assistantText + "\n\n(Heads up: I couldn't save this exchange, so I may not remember it next time.)"
}

func (s *Service) summarize(outcome *Outcome) string {
	counts := make(map[memory.ItemType]int)
	for _, item := range outcome.Created {
		if item.Type != memory.ItemLog {
			counts[item.Type]++
		}
	}

	updatedCounts := make(map[memory.ItemType]int)
	for _, item := range outcome.Updated {
		updatedCounts[item.Type]++
	}

	var parts []string
	for _, itemType := range []memory.ItemType{memory.ItemHabit, memory.ItemGoal, memory.ItemPlan, memory.ItemScreening} {
		if n := counts[itemType]; n > 0 {
			parts = append(parts, fmt.Sprintf("created %d %s", n, pluralize(itemType, n)))
		}
		if n := updatedCounts[itemType]; n > 0 {
			parts = append(parts, fmt.Sprintf("updated %d %s", n, pluralize(itemType, n)))
		}
	}

	if len(parts) == 0 {
		return "✓ Progress saved."
	}

	return "✓ Saved: " + strings.Join(parts, ", ") + "."
}

func pluralize(itemType memory.ItemType, n int) string {
	if n == 1 {
		return string(itemType)
	}

	return string(itemType) + "s"
}
