package conversation

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

type Speaker string

const (
	SpeakerUser      Speaker = "User"
	SpeakerAssistant Speaker = "Assistant"
)

// Turn is one recorded utterance. Immutable once appended.
type Turn struct {
	ID      string  `json:"id"`
	Speaker Speaker `json:"speaker"`
	Content string  `json:"content"`
}

// Transcript is the ordered, append-only record of a conversation. Insertion
// order defines chronology; nothing is deduplicated and nothing is dropped
// from the store itself. The optional render window only limits how much of
// the tail Render exposes.
type Transcript struct {
	mu     sync.RWMutex
	turns  []Turn
	window int // max exchanges rendered; 0 = unbounded
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// NewWindowedTranscript renders only the last `exchanges` user/assistant
// pairs. The full history is still stored.
func NewWindowedTranscript(exchanges int) *Transcript {
	if exchanges < 0 {
		exchanges = 0
	}
	return &Transcript{window: exchanges}
}

func (t *Transcript) AppendUser(content string) {
	t.append(SpeakerUser, content)
}

func (t *Transcript) AppendAssistant(content string) {
	t.append(SpeakerAssistant, content)
}

func (t *Transcript) append(speaker Speaker, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, Turn{
		ID:      uuid.New().String(),
		Speaker: speaker,
		Content: content,
	})
}

// Render produces the transcript text: one "<Speaker>:<content>" line per
// turn, in insertion order, newline-separated with no trailing newline.
// Pure with respect to the stored turns.
func (t *Transcript) Render() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	turns := t.turns
	if t.window > 0 && len(turns) > t.window*2 {
		turns = turns[len(turns)-t.window*2:]
	}

	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(turn.Speaker))
		b.WriteByte(':')
		b.WriteString(turn.Content)
	}
	return b.String()
}

// Turns returns a snapshot copy of all recorded turns.
func (t *Transcript) Turns() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}
