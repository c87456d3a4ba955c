package factories

import (
	"errors"

	"vozkit/core"
	whisperstt "vozkit/services/whisper/stt"
)

// STTFactoryConfig holds provider-specific configs for speech recognizer
// construction. Set exactly one provider config.
type STTFactoryConfig struct {
	WhisperConfig *whisperstt.Config `json:"whisper,omitempty"`
}

// BuildSTTService constructs a speech recognizer from the given factory config.
func BuildSTTService(config STTFactoryConfig, logger *core.Logger) (*whisperstt.WhisperSTTService, error) {
	if config.WhisperConfig != nil {
		return whisperstt.NewWhisperSTTService(*config.WhisperConfig, logger), nil
	}
	return nil, errors.New("STTFactoryConfig: no provider config specified")
}
