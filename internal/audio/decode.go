// Package audio decodes an opaque byte blob of a supported container into
// mono PCM at a fixed sample rate, peak-normalized to [-1, 1]. The
// container is identified by sniffing a magic header rather than trusting
// a declared extension or MIME type.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"math"
)

// TargetSampleRate is the fixed output rate of the preprocessor.
const TargetSampleRate = 22050

// DecodeError indicates the container was unrecognized or the stream was
// truncated/corrupt.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode audio: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode audio: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ErrEmptyAudio indicates the decoded PCM stream has zero samples.
var ErrEmptyAudio = errors.New("decoded audio is empty")

// Decode turns a raw audio byte blob into mono float64 samples in [-1, 1]
// at TargetSampleRate.
func Decode(data []byte) ([]float64, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Reason: "empty input"}
	}

	samples, sourceRate, err := decodeByContainer(data)
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			return nil, err
		}
		return nil, &DecodeError{Reason: "truncated or corrupt stream", Err: err}
	}

	if len(samples) == 0 {
		return nil, ErrEmptyAudio
	}

	resampled := resample(samples, sourceRate, TargetSampleRate)
	if len(resampled) == 0 {
		return nil, ErrEmptyAudio
	}

	normalize(resampled)
	return resampled, nil
}

func decodeByContainer(data []byte) ([]float64, int, error) {
	switch {
	case isWav(data):
		return decodeWav(data)
	case isFlac(data):
		return decodeFlac(data)
	default:
		// MP3 has no fixed magic number at offset 0 (an ID3v2 tag may
		// precede the first frame sync), so it is attempted before
		// falling back further.
		if samples, rate, err := decodeMp3(data); err == nil {
			return samples, rate, nil
		}

		// m4a/ogg have no pure-Go decoder available here; fall back
		// to an external ffmpeg transcode if one is installed rather
		// than failing outright.
		samples, rate, err := decodeViaFFmpeg(data)
		if err != nil {
			return nil, 0, &DecodeError{Reason: "unrecognized or truncated container", Err: err}
		}
		return samples, rate, nil
	}
}

func isWav(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE"))
}

func isFlac(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[0:4], []byte("fLaC"))
}

// normalize peak-normalizes samples in place so that max(|samples|) == 1,
// or leaves them at 0 if the clip is silent.
func normalize(samples []float64) {
	peak := 0.0
	for _, s := range samples {
		if abs := math.Abs(s); abs > peak {
			peak = abs
		}
	}
	if peak == 0 {
		return
	}
	for i, s := range samples {
		samples[i] = s / peak
	}
}

// downmix averages interleaved multi-channel samples into mono.
func downmix(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		return interleaved
	}
	n := len(interleaved) / channels
	mono := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

// resample converts samples from one sample rate to another using linear
// interpolation, supporting both upsampling and downsampling since decoded
// containers arrive at varied native rates.
func resample(samples []float64, fromRate, toRate int) []float64 {
	if fromRate == toRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(fromRate) / float64(toRate)
	outLen := int(float64(len(samples)) / ratio)
	if outLen <= 0 {
		return nil
	}

	out := make([]float64, outLen)
	for i := 0; i < outLen; i++ {
		srcIdx := float64(i) * ratio
		lower := int(srcIdx)
		upper := lower + 1
		if upper >= len(samples) {
			out[i] = samples[lower]
			continue
		}
		frac := srcIdx - float64(lower)
		out[i] = samples[lower]*(1-frac) + samples[upper]*frac
	}
	return out
}
