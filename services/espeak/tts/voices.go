package tts

import (
	"strconv"
	"strings"

	"vozkit/core"
)

// ParseVoiceTable converts `espeak-ng --voices` output into structured
// descriptors. The table looks like:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  af              --/M      Afrikaans          gmw/af
//	 5  es              --/M      Spanish_(Spain)    roa/es               (es-419 10)
//
// The File column becomes the voice id, VoiceName the display name, and the
// Language column plus any "Other Languages" entries the locale list.
func ParseVoiceTable(table string) []core.VoiceDescriptor {
	var voices []core.VoiceDescriptor
	for i, line := range strings.Split(table, "\n") {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue // header or blank
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		v := core.VoiceDescriptor{
			DisplayName: strings.ReplaceAll(fields[3], "_", " "),
			ID:          fields[4],
			Locales:     []string{fields[1]},
		}
		// Trailing "(lang priority)" pairs list extra languages.
		for _, extra := range fields[5:] {
			extra = strings.Trim(extra, "()")
			if extra == "" {
				continue
			}
			if _, err := strconv.Atoi(extra); err == nil {
				continue // the priority number, not a language tag
			}
			v.Locales = append(v.Locales, extra)
		}
		voices = append(voices, v)
	}
	return voices
}
