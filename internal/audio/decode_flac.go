package audio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

// decodeFlac reads a FLAC container via mewkiz/flac.
func decodeFlac(data []byte) ([]float64, int, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("opening flac stream: %w", err)
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	if channels < 1 {
		channels = 1
	}
	maxVal := float64(int64(1) << (stream.Info.BitsPerSample - 1))

	var interleaved []float64
	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, 0, fmt.Errorf("reading flac frame: %w", err)
		}

		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			for c := 0; c < channels && c < len(frame.Subframes); c++ {
				interleaved = append(interleaved, float64(frame.Subframes[c].Samples[i])/maxVal)
			}
		}
	}

	return downmix(interleaved, channels), int(stream.Info.SampleRate), nil
}
