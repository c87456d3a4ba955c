// Package playback renders PCM clips on the system's default output device.
package playback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"vozkit/core"
	"vozkit/utils/audio"
)

// Player plays mono 16-bit PCM clips. The underlying audio context is
// created once, on the first clip; later clips at other sample rates are
// resampled to match.
type Player struct {
	logger *core.Logger

	mu         sync.Mutex
	otoCtx     *oto.Context
	sampleRate int
}

func NewPlayer(logger *core.Logger) *Player {
	if logger == nil {
		logger = core.GetLogger()
	}
	return &Player{logger: logger}
}

// Play blocks until the clip has finished or ctx is done.
func (p *Player) Play(ctx context.Context, clip core.AudioClip) error {
	if clip.Format != core.PCM {
		converted, err := audio.ToPCM16(clip)
		if err != nil {
			return err
		}
		clip = converted
	}
	if len(clip.Data) == 0 {
		return nil
	}
	if clip.Channels != 1 {
		return errors.New("playback: only mono clips are supported")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.otoCtx == nil {
		otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   clip.SampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			return fmt.Errorf("playback: open audio device: %w", err)
		}
		select {
		case <-ready:
		case <-ctx.Done():
			return ctx.Err()
		}
		p.otoCtx = otoCtx
		p.sampleRate = clip.SampleRate
	}

	if clip.SampleRate != p.sampleRate {
		resampled, err := audio.Resample(clip, p.sampleRate)
		if err != nil {
			return err
		}
		clip = resampled
	}

	player := p.otoCtx.NewPlayer(bytes.NewReader(clip.Data))
	defer player.Close()
	player.Play()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	return nil
}
