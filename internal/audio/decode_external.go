package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// decodeViaFFmpeg is the last-resort fallback for containers none of the
// native decoders recognize (m4a, ogg). It shells out to ffmpeg if present
// on PATH, transcoding the input to a temporary 16-bit PCM WAV and decoding
// that, via a temp-file round trip since Decode's contract is byte-blob in,
// byte-blob out. If ffmpeg is not installed, this returns an error rather
// than failing silently.
func decodeViaFFmpeg(data []byte) ([]float64, int, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, 0, fmt.Errorf("ffmpeg not available: %w", err)
	}

	inFile, err := os.CreateTemp("", "fingerprint-in-*")
	if err != nil {
		return nil, 0, fmt.Errorf("creating temp input file: %w", err)
	}
	defer os.Remove(inFile.Name())
	defer inFile.Close()

	if _, err := inFile.Write(data); err != nil {
		return nil, 0, fmt.Errorf("writing temp input file: %w", err)
	}
	inFile.Close()

	outPath := inFile.Name() + ".wav"
	defer os.Remove(outPath)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", inFile.Name(),
		"-c", "pcm_s16le",
		"-ar", "44100",
		"-ac", "1",
		outPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, 0, fmt.Errorf("ffmpeg transcode failed: %w (output: %s)", err, output)
	}

	wavBytes, err := os.ReadFile(outPath)
	if err != nil {
		return nil, 0, fmt.Errorf("reading transcoded wav: %w", err)
	}

	return decodeWav(wavBytes)
}
