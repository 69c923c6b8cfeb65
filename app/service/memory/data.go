package memory

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	historyCap = 20
	itemsCap   = 20
	coveredCap = 50

	// coveredWindow is how long a covered subject stays "fresh" before a
	// handler may bring it up again.
	coveredWindow = 30 * 24 * time.Hour
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ItemType string

const (
	ItemLog       ItemType = "log"
	ItemHabit     ItemType = "habit"
	ItemGoal      ItemType = "goal"
	ItemPlan      ItemType = "plan"
	ItemScreening ItemType = "screening"
)

type ConversationTurn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type TrackedItem struct {
	ID        string    `json:"id"`
	Type      ItemType  `json:"type"`
	Title     string    `json:"title"`
	Pillar    string    `json:"pillar"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CoveredTopic struct {
	Subject   string    `json:"subject"`
	CoveredAt time.Time `json:"covered_at"`
}

type PillarMemory struct {
	History []ConversationTurn `json:"history"`
	Items   []TrackedItem      `json:"items"`
	Covered []CoveredTopic     `json:"covered"`
	// LastArtifact holds the most recent plan or screening for quick recall.
	LastArtifact *TrackedItem `json:"last_artifact,omitempty"`
}

type UserMemory struct {
	UserID    string                   `json:"user_id"`
	UpdatedAt time.Time                `json:"updated_at"`
	Window    []ConversationTurn       `json:"window"`
	Pillars   map[string]*PillarMemory `json:"pillars"`
}

func NewUserMemory(userID string) *UserMemory {
	return &UserMemory{
		UserID:  userID,
		Pillars: make(map[string]*PillarMemory),
	}
}

// Pillar returns the pillar's memory, creating an empty one on first access.
func (m *UserMemory) Pillar(key string) *PillarMemory {
	if m.Pillars == nil {
		m.Pillars = make(map[string]*PillarMemory)
	}

	p, ok := m.Pillars[key]
	if !ok {
		p = &PillarMemory{}
		m.Pillars[key] = p
	}

	return p
}

// AppendTurn records a turn both in the global conversation window and the
// pillar's own history. Oldest turns are dropped first once a cap is hit.
func (m *UserMemory) AppendTurn(pillar string, role Role, text string) {
	turn := ConversationTurn{
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	}

	m.Window = appendTrimmed(m.Window, turn, historyCap)

	p := m.Pillar(pillar)
	p.History = appendTrimmed(p.History, turn, historyCap)
}

// UpsertItem creates a tracked item or, when one with the same type and
// normalized title already exists in the pillar, refreshes it in place.
// Reports whether a new item was created.
func (m *UserMemory) UpsertItem(pillar string, itemType ItemType, title, content string) (TrackedItem, bool) {
	p := m.Pillar(pillar)
	key := NormalizeTitle(title)
	now := time.Now()

	for i := range p.Items {
		if p.Items[i].Type == itemType && NormalizeTitle(p.Items[i].Title) == key {
			p.Items[i].Content = content
			p.Items[i].UpdatedAt = now
			m.noteArtifact(p, p.Items[i])

			return p.Items[i], false
		}
	}

	item := TrackedItem{
		ID:        uuid.NewString(),
		Type:      itemType,
		Title:     strings.TrimSpace(title),
		Pillar:    pillar,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if len(p.Items) >= itemsCap {
		p.Items = p.Items[1:]
	}
	p.Items = append(p.Items, item)
	m.noteArtifact(p, item)

	return item, true
}

func (m *UserMemory) noteArtifact(p *PillarMemory, item TrackedItem) {
	if item.Type == ItemPlan || item.Type == ItemScreening {
		artifact := item
		p.LastArtifact = &artifact
	}
}

// MarkCovered remembers that a subject was discussed in this pillar.
func (m *UserMemory) MarkCovered(pillar, subject string) {
	p := m.Pillar(pillar)

	covered := CoveredTopic{
		Subject:   subject,
		CoveredAt: time.Now(),
	}

	if len(p.Covered) >= coveredCap {
		p.Covered = p.Covered[1:]
	}
	p.Covered = append(p.Covered, covered)
}

// RecentlyCovered reports whether the subject came up within the recency
// window, so handlers can avoid repeating material.
func (p *PillarMemory) RecentlyCovered(subject string, now time.Time) bool {
	key := NormalizeTitle(subject)

	for _, c := range p.Covered {
		if NormalizeTitle(c.Subject) == key && now.Sub(c.CoveredAt) < coveredWindow {
			return true
		}
	}

	return false
}

func NormalizeTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func appendTrimmed(turns []ConversationTurn, turn ConversationTurn, limit int) []ConversationTurn {
	if len(turns) >= limit {
		turns = turns[1:]
	}

	return append(turns, turn)
}
