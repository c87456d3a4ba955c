package factories

import (
	"errors"

	"vozkit/core"
	espeaktts "vozkit/services/espeak/tts"
)

// TTSFactoryConfig holds provider-specific configs for speech synthesizer
// construction. Set exactly one provider config.
type TTSFactoryConfig struct {
	ESpeakConfig *espeaktts.ESpeakTTSConfig `json:"espeak,omitempty"`
}

// BuildTTSService constructs a speech synthesizer from the given factory config.
func BuildTTSService(config TTSFactoryConfig, logger *core.Logger) (*espeaktts.ESpeakTTS, error) {
	if config.ESpeakConfig != nil {
		return espeaktts.NewESpeakTTS(*config.ESpeakConfig, logger), nil
	}
	return nil, errors.New("TTSFactoryConfig: no provider config specified")
}
