package reel

import (
	"fmt"
	"strings"
)

// TemplateKind selects the structure the generator writes the script in.
type TemplateKind string

const (
	TemplatePREP    TemplateKind = "prep"
	TemplateEmpathy TemplateKind = "empathy"
	TemplateStory   TemplateKind = "story"
	TemplateHowTo   TemplateKind = "howto"
)

// Templates lists the supported kinds.
var Templates = []TemplateKind{TemplatePREP, TemplateEmpathy, TemplateStory, TemplateHowTo}

// ParseTemplate validates a template name. Empty input yields TemplatePREP.
func ParseTemplate(value string) (TemplateKind, error) {
	v := TemplateKind(strings.ToLower(strings.TrimSpace(value)))
	if v == "" {
		return TemplatePREP, nil
	}
	for _, t := range Templates {
		if t == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown template %q", value)
}

// NeedsQuestions reports whether generation must go through the clarifying
// questions flow first.
func (t TemplateKind) NeedsQuestions() bool {
	return t == TemplateEmpathy
}

// Platform is a publishing target. Values are the labels the generation
// webhook expects.
type Platform string

const (
	PlatformReel    Platform = "リール"
	PlatformTikTok  Platform = "TikTok"
	PlatformShorts  Platform = "YouTubeショート"
	PlatformThreads Platform = "Threads"
)

// Platforms lists every target in display order.
var Platforms = []Platform{PlatformReel, PlatformTikTok, PlatformShorts, PlatformThreads}

var platformAliases = map[string]Platform{
	"reel":    PlatformReel,
	"reels":   PlatformReel,
	"tiktok":  PlatformTikTok,
	"shorts":  PlatformShorts,
	"threads": PlatformThreads,
}

// ParsePlatform accepts either the wire label or a short ASCII alias.
func ParsePlatform(value string) (Platform, error) {
	trimmed := strings.TrimSpace(value)
	for _, p := range Platforms {
		if string(p) == trimmed {
			return p, nil
		}
	}
	if p, ok := platformAliases[strings.ToLower(trimmed)]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q", value)
}

// Targets is a non-empty, duplicate-free, order-preserving platform set.
type Targets []Platform

// NewTargets parses and deduplicates values. An empty result is an error.
func NewTargets(values ...string) (Targets, error) {
	out := make(Targets, 0, len(values))
	seen := make(map[Platform]struct{}, len(values))
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		p, err := ParsePlatform(value)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one target platform is required")
	}
	return out, nil
}

// DefaultTargets is the target set a new draft starts with.
func DefaultTargets() Targets {
	return Targets{PlatformReel}
}
