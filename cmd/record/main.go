// Command record is a dev/test aid: it captures a short clip from the
// default microphone and POSTs it to a running server's /api/recognize.
// Only built with the micinput tag since portaudio requires cgo and a
// system PortAudio install neither present nor desired in a default build.
//
//go:build micinput

package main

import (
	"bytes"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/gordonklaus/portaudio"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8085", "fingerprint server base URL")
	seconds := flag.Float64("seconds", 5, "recording duration in seconds")
	flag.Parse()

	if err := portaudio.Initialize(); err != nil {
		log.Fatalf("portaudio init: %v", err)
	}
	defer portaudio.Terminate()

	device, err := portaudio.DefaultInputDevice()
	if err != nil {
		log.Fatalf("default input device: %v", err)
	}

	sampleRate := device.DefaultSampleRate
	if sampleRate < 44100 {
		sampleRate = 44100
	}

	params := portaudio.HighLatencyParameters(device, nil)
	params.Input.Channels = 1
	params.SampleRate = sampleRate
	params.FramesPerBuffer = 2048

	buffer := make([]int16, 2048)
	stream, err := portaudio.OpenStream(params, buffer)
	if err != nil {
		log.Fatalf("open stream: %v", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		log.Fatalf("start stream: %v", err)
	}

	fmt.Printf("recording %.0fs from %s (%.0f Hz)\n", *seconds, device.Name, sampleRate)
	var samples []int16
	deadline := time.Now().Add(time.Duration(*seconds * float64(time.Second)))
	for time.Now().Before(deadline) {
		if err := stream.Read(); err != nil {
			log.Fatalf("read stream: %v", err)
		}
		samples = append(samples, buffer...)
	}
	stream.Stop()

	wavBytes := encodeWAV(samples, int(sampleRate))
	if err := postRecognize(*serverURL, wavBytes); err != nil {
		log.Fatalf("recognize request: %v", err)
	}
}

// encodeWAV writes a minimal mono 16-bit PCM WAV container around samples.
func encodeWAV(samples []int16, sampleRate int) []byte {
	var buf bytes.Buffer

	dataSize := len(samples) * 2
	byteRate := sampleRate * 2

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(2))  // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16)) // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

func postRecognize(baseURL string, wavBytes []byte) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "clip.wav")
	if err != nil {
		return err
	}
	if _, err := part.Write(wavBytes); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/recognize", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	fmt.Println("server responded:", resp.Status)
	os.Stdout.Sync()
	return nil
}
