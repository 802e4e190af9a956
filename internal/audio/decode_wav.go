package audio

import (
	"bytes"
	"fmt"

	"github.com/go-audio/wav"
)

// decodeWav reads a WAV container via go-audio/wav, returning normalized
// float64 samples directly since every other decoder in this package
// already hands back float64.
func decodeWav(data []byte) ([]float64, int, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("reading wav PCM data: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	maxVal := float64(int(1) << (uint(buf.SourceBitDepth) - 1))
	if buf.SourceBitDepth <= 0 {
		maxVal = 32768.0
	}

	interleaved := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		interleaved[i] = float64(v) / maxVal
	}

	return downmix(interleaved, channels), buf.Format.SampleRate, nil
}
