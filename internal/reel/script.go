package reel

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPreset is the voice/style preset a new script starts with.
	DefaultPreset = "coral"
	// DefaultName replaces an empty script name on save.
	DefaultName = "無題の台本"
)

// ErrNoScenes reports a script without any scene. It is tolerated while
// editing but rejected before a render is dispatched.
var ErrNoScenes = errors.New("script has no scenes")

// Scene is one spoken or displayed beat of a script.
type Scene struct {
	Text       string     `json:"text"`
	Expression Expression `json:"expression"`
	Emphasis   []string   `json:"emphasis"`
	Overlay    string     `json:"overlay,omitempty"`
	Display    string     `json:"display,omitempty"`
}

// CallToAction is the closing line asking the viewer to act.
type CallToAction struct {
	Text       string     `json:"text"`
	Expression Expression `json:"expression"`
}

// Script is a user-owned reel script.
type Script struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Preset    string        `json:"preset"`
	Scenes    []Scene       `json:"scenes"`
	CTA       *CallToAction `json:"cta,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// NewID returns a fresh script identifier of the form
// script-<unix millis>-<4 base36 chars>.
func NewID(now time.Time) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	var suffix [4]byte
	for i := range suffix {
		suffix[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return "script-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + string(suffix[:])
}

// NewScript creates an empty script stamped at now.
func NewScript(name, preset string, now time.Time) Script {
	now = now.UTC()
	s := Script{
		ID:        NewID(now),
		Name:      name,
		Preset:    preset,
		Scenes:    []Scene{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Normalize()
	return s
}

// Normalize fills defaults the editor applies on save: a name, a preset,
// the neutral pose, and non-nil emphasis lists.
func (s *Script) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		s.Name = DefaultName
	}
	s.Preset = strings.TrimSpace(s.Preset)
	if s.Preset == "" {
		s.Preset = DefaultPreset
	}
	if s.Scenes == nil {
		s.Scenes = []Scene{}
	}
	for i := range s.Scenes {
		if s.Scenes[i].Expression == "" {
			s.Scenes[i].Expression = ExpressionNormal
		}
		if s.Scenes[i].Emphasis == nil {
			s.Scenes[i].Emphasis = []string{}
		}
	}
	if s.CTA != nil {
		if strings.TrimSpace(s.CTA.Text) == "" {
			s.CTA = nil
		} else if s.CTA.Expression == "" {
			s.CTA.Expression = ExpressionBow
		}
	}
}

// Touch advances UpdatedAt to now, never moving it before CreatedAt.
func (s *Script) Touch(now time.Time) {
	now = now.UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if now.Before(s.CreatedAt) {
		now = s.CreatedAt
	}
	s.UpdatedAt = now
}

// Validate checks identifiers, timestamps, and poses. A script without scenes
// yields ErrNoScenes so callers can decide whether that matters.
func (s Script) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("script id is required")
	}
	if s.UpdatedAt.Before(s.CreatedAt) {
		return fmt.Errorf("script %s: updatedAt before createdAt", s.ID)
	}
	for i, scene := range s.Scenes {
		if !scene.Expression.Valid() {
			return fmt.Errorf("script %s: scene %d: unknown expression %q", s.ID, i+1, scene.Expression)
		}
	}
	if s.CTA != nil && !s.CTA.Expression.Valid() {
		return fmt.Errorf("script %s: cta: unknown expression %q", s.ID, s.CTA.Expression)
	}
	if len(s.Scenes) == 0 {
		return ErrNoScenes
	}
	return nil
}

// Clone returns a deep copy.
func (s Script) Clone() Script {
	out := s
	if s.Scenes != nil {
		out.Scenes = make([]Scene, len(s.Scenes))
		for i, scene := range s.Scenes {
			scene.Emphasis = append([]string(nil), scene.Emphasis...)
			out.Scenes[i] = scene
		}
	}
	if s.CTA != nil {
		cta := *s.CTA
		out.CTA = &cta
	}
	return out
}

// FindScript returns the index of id in scripts or -1.
func FindScript(scripts []Script, id string) int {
	for i := range scripts {
		if scripts[i].ID == id {
			return i
		}
	}
	return -1
}
