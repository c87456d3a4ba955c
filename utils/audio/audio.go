package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zaf/g711"

	"vozkit/core"
)

const (
	wavHeaderSize  = 44
	bitsPerSample  = 16
	bytesPerSample = bitsPerSample / 8
)

// ToPCM16 converts a clip to 16-bit linear PCM, decoding μ-law/A-law
// payloads when needed. PCM clips pass through unchanged.
func ToPCM16(clip core.AudioClip) (core.AudioClip, error) {
	switch clip.Format {
	case core.PCM:
		return clip, nil
	case core.ULAW:
		return core.AudioClip{
			Data:       g711.DecodeUlaw(clip.Data),
			SampleRate: clip.SampleRate,
			Channels:   clip.Channels,
			Format:     core.PCM,
		}, nil
	case core.ALAW:
		return core.AudioClip{
			Data:       g711.DecodeAlaw(clip.Data),
			SampleRate: clip.SampleRate,
			Channels:   clip.Channels,
			Format:     core.PCM,
		}, nil
	default:
		return core.AudioClip{}, fmt.Errorf("audio: unsupported encoding %d", clip.Format)
	}
}

// PCMToWAV wraps a 16-bit PCM clip in a RIFF/WAVE container.
func PCMToWAV(clip core.AudioClip) ([]byte, error) {
	if clip.Format != core.PCM {
		return nil, errors.New("audio: clip must be PCM before WAV wrapping")
	}
	if clip.SampleRate == 0 || clip.Channels == 0 {
		return nil, errors.New("audio: clip missing sample rate or channel count")
	}

	dataLen := len(clip.Data)
	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+dataLen))

	byteRate := clip.SampleRate * clip.Channels * bytesPerSample
	blockAlign := clip.Channels * bytesPerSample

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(clip.Channels))
	binary.Write(buf, binary.LittleEndian, uint32(clip.SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(clip.Data)

	return buf.Bytes(), nil
}

// WAVToPCM unwraps a RIFF/WAVE payload into a PCM clip. Only 16-bit PCM
// content is accepted; chunks other than "fmt " and "data" are skipped.
func WAVToPCM(wav []byte) (core.AudioClip, error) {
	if len(wav) < wavHeaderSize || string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return core.AudioClip{}, errors.New("audio: not a RIFF/WAVE payload")
	}

	var clip core.AudioClip
	haveFmt := false
	pos := 12
	for pos+8 <= len(wav) {
		id := string(wav[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(wav) {
			return core.AudioClip{}, errors.New("audio: truncated WAV chunk")
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return core.AudioClip{}, errors.New("audio: short fmt chunk")
			}
			format := binary.LittleEndian.Uint16(wav[body : body+2])
			bits := binary.LittleEndian.Uint16(wav[body+14 : body+16])
			if format != 1 || bits != bitsPerSample {
				return core.AudioClip{}, fmt.Errorf("audio: unsupported WAV format=%d bits=%d", format, bits)
			}
			clip.Channels = int(binary.LittleEndian.Uint16(wav[body+2 : body+4]))
			clip.SampleRate = int(binary.LittleEndian.Uint32(wav[body+4 : body+8]))
			clip.Format = core.PCM
			haveFmt = true
		case "data":
			clip.Data = append([]byte(nil), wav[body:body+size]...)
		}
		// Chunks are word-aligned.
		if size%2 == 1 {
			size++
		}
		pos = body + size
	}

	if !haveFmt || clip.Data == nil {
		return core.AudioClip{}, errors.New("audio: WAV missing fmt or data chunk")
	}
	return clip, nil
}
