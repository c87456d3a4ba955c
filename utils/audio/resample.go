package audio

import (
	"encoding/binary"
	"errors"

	"vozkit/core"
)

// Resample converts a mono 16-bit PCM clip to the target sample rate using
// linear interpolation. Good enough for speech playback; not a general
// purpose resampler.
func Resample(clip core.AudioClip, targetRate int) (core.AudioClip, error) {
	if clip.Format != core.PCM || clip.Channels != 1 {
		return core.AudioClip{}, errors.New("audio: resample expects mono PCM")
	}
	if targetRate <= 0 || clip.SampleRate <= 0 {
		return core.AudioClip{}, errors.New("audio: invalid sample rate")
	}
	if targetRate == clip.SampleRate {
		return clip, nil
	}

	srcLen := len(clip.Data) / bytesPerSample
	if srcLen == 0 {
		return core.AudioClip{Data: nil, SampleRate: targetRate, Channels: 1, Format: core.PCM}, nil
	}

	dstLen := int(int64(srcLen) * int64(targetRate) / int64(clip.SampleRate))
	out := make([]byte, dstLen*bytesPerSample)

	ratio := float64(clip.SampleRate) / float64(targetRate)
	sample := func(i int) float64 {
		if i >= srcLen {
			i = srcLen - 1
		}
		return float64(int16(binary.LittleEndian.Uint16(clip.Data[i*2:])))
	}
	for i := 0; i < dstLen; i++ {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := pos - float64(idx)
		v := sample(idx)*(1-frac) + sample(idx+1)*frac
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}

	return core.AudioClip{Data: out, SampleRate: targetRate, Channels: 1, Format: core.PCM}, nil
}
