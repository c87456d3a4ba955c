package tts

import (
	"testing"

	"vozkit/core"
)

const sampleVoiceTable = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  en-US           --/M      English_(America)  gmw/en-US            (en 10)
 5  es              --/M      Spanish_(Spain)    roa/es               (es-419 6)
 5  es-419          --/M      Spanish_(Latin_America) roa/es-419      (es-MX 6)
`

func TestParseVoiceTable(t *testing.T) {
	voices := ParseVoiceTable(sampleVoiceTable)
	if len(voices) != 4 {
		t.Fatalf("expected 4 voices, got %d", len(voices))
	}

	es := voices[2]
	if es.ID != "roa/es" {
		t.Fatalf("id = %q", es.ID)
	}
	if es.DisplayName != "Spanish (Spain)" {
		t.Fatalf("display name = %q", es.DisplayName)
	}
	if len(es.Locales) != 2 || es.Locales[0] != "es" || es.Locales[1] != "es-419" {
		t.Fatalf("locales = %v", es.Locales)
	}
}

func TestParseVoiceTable_SelectsSpanishWithDefaults(t *testing.T) {
	voices := ParseVoiceTable(sampleVoiceTable)
	v, ok := core.SelectVoice(voices, DefaultVoicePreferences())
	if !ok {
		t.Fatalf("expected a spanish match")
	}
	if v.ID != "roa/es" && v.ID != "roa/es-419" {
		t.Fatalf("unexpected voice %q", v.ID)
	}
}

func TestParseVoiceTable_IgnoresGarbageLines(t *testing.T) {
	voices := ParseVoiceTable("header\n\nshort line\n")
	if len(voices) != 0 {
		t.Fatalf("expected no voices, got %d", len(voices))
	}
}
