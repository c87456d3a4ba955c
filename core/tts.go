package core

import (
	"context"
	"strings"
)

// Synthesizer converts text into audible output. Synthesize returns the
// rendered audio so callers decide how to play it; implementations must not
// block indefinitely and must be safe to call in rapid succession.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (AudioClip, error)
}

// VoiceDescriptor describes one synthesis voice offered by an engine.
type VoiceDescriptor struct {
	ID          string   // engine-internal voice identifier
	DisplayName string   // human-readable name
	Locales     []string // language tags the voice covers, e.g. "es-ES"
}

// SelectVoice picks the best voice for a list of preference substrings
// (e.g. ["es-es", "spanish", "es"]). Candidates are ranked per preference,
// earlier preferences winning: a locale match outranks a display-name match,
// which outranks an id match. Matching is case-insensitive substring.
// Returns false when nothing matches any preference.
func SelectVoice(voices []VoiceDescriptor, preferences []string) (VoiceDescriptor, bool) {
	type candidate struct {
		voice VoiceDescriptor
		rank  int // lower is better
	}
	const fieldRanks = 3 // locales, display name, id

	best := candidate{rank: -1}
	for _, v := range voices {
		locales := strings.ToLower(strings.Join(v.Locales, " "))
		name := strings.ToLower(v.DisplayName)
		id := strings.ToLower(v.ID)

		for pi, pref := range preferences {
			p := strings.ToLower(strings.TrimSpace(pref))
			if p == "" {
				continue
			}
			var field int
			switch {
			case strings.Contains(locales, p):
				field = 0
			case strings.Contains(name, p):
				field = 1
			case strings.Contains(id, p):
				field = 2
			default:
				continue
			}
			rank := pi*fieldRanks + field
			if best.rank == -1 || rank < best.rank {
				best = candidate{voice: v, rank: rank}
			}
			break // a voice is scored once, on its first matching preference
		}
	}
	if best.rank == -1 {
		return VoiceDescriptor{}, false
	}
	return best.voice, true
}
