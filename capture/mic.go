// Package capture records bounded clips from the default microphone.
package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"vozkit/core"
)

const DefaultSampleRate = 16000

// MicRecorder captures mono 16-bit PCM from the system's default capture
// device. Each Record call opens the device, fills a buffer for the given
// duration and tears the device down again; recordings are short and
// infrequent, so holding the device open buys nothing.
type MicRecorder struct {
	sampleRate int
	logger     *core.Logger
}

func NewMicRecorder(sampleRate int, logger *core.Logger) *MicRecorder {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &MicRecorder{sampleRate: sampleRate, logger: logger}
}

// Record captures for the given duration, or less if ctx is cancelled.
func (m *MicRecorder) Record(ctx context.Context, d time.Duration) (core.AudioClip, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		m.logger.Debug("malgo: %s", message)
	})
	if err != nil {
		return core.AudioClip{}, fmt.Errorf("capture: init audio context: %w", err)
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(m.sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	var mu sync.Mutex
	var pcm []byte
	onRecv := func(_, input []byte, _ uint32) {
		mu.Lock()
		pcm = append(pcm, input...)
		mu.Unlock()
	}

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onRecv})
	if err != nil {
		return core.AudioClip{}, fmt.Errorf("capture: open device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return core.AudioClip{}, fmt.Errorf("capture: start device: %w", err)
	}

	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
	_ = device.Stop()

	mu.Lock()
	data := append([]byte(nil), pcm...)
	mu.Unlock()

	clip := core.AudioClip{
		Data:       data,
		SampleRate: m.sampleRate,
		Channels:   1,
		Format:     core.PCM,
	}
	m.logger.With(map[string]any{"seconds": clip.DurationSeconds()}).Debug("clip captured")
	return clip, nil
}
