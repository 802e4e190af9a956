// Command spectrogram-png is a debug aid: it decodes an audio file and
// writes a grayscale PNG of its spectrogram (frequency on the horizontal
// axis, time on the vertical axis, brightness = magnitude), useful for
// eyeballing whether the peak picker's amplitude floor is in a sane place
// for a given recording.
package main

import (
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"math"
	"os"

	"github.com/shazoom/fingerprint/internal/audio"
	"github.com/shazoom/fingerprint/internal/dsp"
)

func main() {
	inPath := flag.String("in", "", "path to an audio file")
	outPath := flag.String("out", "spectrogram.png", "output PNG path")
	flag.Parse()

	if *inPath == "" {
		log.Fatal("-in is required")
	}

	data, err := os.ReadFile(*inPath)
	if err != nil {
		log.Fatalf("reading %s: %v", *inPath, err)
	}

	samples, err := audio.Decode(data)
	if err != nil {
		log.Fatalf("decoding audio: %v", err)
	}

	magnitude := dsp.Spectrogram(samples)
	if err := writePNG(magnitude, *outPath); err != nil {
		log.Fatalf("writing PNG: %v", err)
	}
}

// writePNG renders magnitude[f][t] as a grayscale heatmap: frequency on the
// horizontal axis, time on the vertical axis, brightness proportional to
// magnitude relative to the matrix-wide peak.
func writePNG(magnitude [][]float64, outputPath string) error {
	numBins := len(magnitude)
	if numBins == 0 {
		return nil
	}
	numFrames := len(magnitude[0])

	img := image.NewGray(image.Rect(0, 0, numBins, numFrames))

	maxMagnitude := 0.0
	for f := range magnitude {
		for t := range magnitude[f] {
			if magnitude[f][t] > maxMagnitude {
				maxMagnitude = magnitude[f][t]
			}
		}
	}
	if maxMagnitude == 0 {
		maxMagnitude = 1
	}

	for f := range magnitude {
		for t := range magnitude[f] {
			intensity := uint8(math.Floor(255 * (magnitude[f][t] / maxMagnitude)))
			img.SetGray(f, t, color.Gray{Y: intensity})
		}
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}
