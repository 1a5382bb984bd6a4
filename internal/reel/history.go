package reel

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HistoryLimit is the number of generations kept locally.
const HistoryLimit = 20

// GeneratedScript is the structured draft returned by the generation webhook.
type GeneratedScript struct {
	Title    string        `json:"title"`
	Scenes   []Scene       `json:"scenes"`
	CTA      *CallToAction `json:"cta,omitempty"`
	Hashtags []string      `json:"hashtags,omitempty"`
	Caption  string        `json:"caption,omitempty"`
}

// ToScript turns a draft into an editable script.
func (g GeneratedScript) ToScript(preset string, now time.Time) Script {
	s := NewScript(g.Title, preset, now)
	s.Scenes = make([]Scene, len(g.Scenes))
	for i, scene := range g.Scenes {
		scene.Emphasis = append([]string(nil), scene.Emphasis...)
		s.Scenes[i] = scene
	}
	if g.CTA != nil {
		cta := *g.CTA
		s.CTA = &cta
	}
	s.Normalize()
	return s
}

// Question is a clarifying question asked before an empathy-template draft.
type Question struct {
	Question string `json:"question"`
	Purpose  string `json:"purpose"`
}

// Answer pairs a question with the user's free-text reply.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// HistoryItem records one successful generation.
type HistoryItem struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Template   TemplateKind    `json:"template"`
	Transcript string          `json:"transcript"`
	Targets    Targets         `json:"targets"`
	Script     GeneratedScript `json:"script"`
	Markup     string          `json:"yaml"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// NewHistoryItem stamps a generation result with a fresh id.
func NewHistoryItem(gen GeneratedScript, markup, transcript string, template TemplateKind, targets Targets, now time.Time) HistoryItem {
	title := strings.TrimSpace(gen.Title)
	if title == "" {
		title = DefaultName
	}
	return HistoryItem{
		ID:         uuid.NewString(),
		Title:      title,
		Template:   template,
		Transcript: transcript,
		Targets:    append(Targets(nil), targets...),
		Script:     gen,
		Markup:     markup,
		CreatedAt:  now.UTC(),
	}
}

// PrependHistory inserts item at the front and enforces the cap.
func PrependHistory(items []HistoryItem, item HistoryItem, limit int) []HistoryItem {
	out := make([]HistoryItem, 0, len(items)+1)
	out = append(out, item)
	for _, existing := range items {
		if existing.ID != item.ID {
			out = append(out, existing)
		}
	}
	return CapHistory(out, limit)
}

// CapHistory drops the oldest entries (by CreatedAt) beyond limit while
// keeping the relative order of the survivors.
func CapHistory(items []HistoryItem, limit int) []HistoryItem {
	if limit <= 0 || len(items) <= limit {
		return items
	}
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	// Oldest first; later positions break ties so the list tail goes first.
	sort.SliceStable(order, func(a, b int) bool {
		ta, tb := items[order[a]].CreatedAt, items[order[b]].CreatedAt
		if ta.Equal(tb) {
			return order[a] > order[b]
		}
		return ta.Before(tb)
	})
	drop := make(map[int]struct{}, len(items)-limit)
	for _, idx := range order[:len(items)-limit] {
		drop[idx] = struct{}{}
	}
	out := make([]HistoryItem, 0, limit)
	for i, item := range items {
		if _, gone := drop[i]; !gone {
			out = append(out, item)
		}
	}
	return out
}

// SortHistory orders items newest first, keeping input order for ties.
func SortHistory(items []HistoryItem) {
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].CreatedAt.After(items[b].CreatedAt)
	})
}

// FindHistory returns the index of id in items or -1.
func FindHistory(items []HistoryItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
