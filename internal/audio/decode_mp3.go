package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// decodeMp3 reads an MP3 stream via hajimehoshi/go-mp3. go-mp3 always
// yields interleaved 16-bit stereo PCM regardless of the source channel
// count, so downmix is unconditional here.
func decodeMp3(data []byte) ([]float64, int, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("decoding mp3 header: %w", err)
	}

	sampleRate := decoder.SampleRate()

	buf := make([]byte, 8192)
	var interleaved []float64
	for {
		n, err := decoder.Read(buf)
		if n > 0 {
			for i := 0; i+1 < n; i += 2 {
				sample := int16(binary.LittleEndian.Uint16(buf[i : i+2]))
				interleaved = append(interleaved, float64(sample)/32768.0)
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, 0, fmt.Errorf("reading mp3 frame: %w", err)
		}
	}

	return downmix(interleaved, 2), sampleRate, nil
}
