package core

type AudioEncodingFormat int

const (
	PCM  AudioEncodingFormat = iota // Pulse-code modulation, 16-bit little-endian.
	ULAW                            // μ-law encoding.
	ALAW                            // A-law encoding.
)

// AudioClip is one captured or received utterance worth of audio.
type AudioClip struct {
	Data       []byte              // Raw audio data.
	SampleRate int                 // Sample rate of the audio data.
	Channels   int                 // Number of audio channels.
	Format     AudioEncodingFormat // Encoding format of the audio data.
}

func (c AudioClip) DurationSeconds() float64 {
	if c.SampleRate == 0 || c.Channels == 0 {
		return 0.0
	}
	bytesPerSample := 2
	if c.Format != PCM {
		bytesPerSample = 1
	}
	totalSamples := len(c.Data) / (bytesPerSample * c.Channels)
	return float64(totalSamples) / float64(c.SampleRate)
}
