// Command ingest-dir walks a directory of audio files named "Title -
// Artist.ext" and POSTs each to a running server's /api/ingest. MIME type
// is derived from the file extension to populate the multipart
// Content-Type, since the service only validates the audio/* prefix
// rather than trusting the extension itself.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

var mimeTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
}

func main() {
	serverURL := flag.String("server", "http://localhost:8085", "fingerprint server base URL")
	dir := flag.String("dir", ".", "directory of audio files to ingest")
	flag.Parse()

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("reading %s: %v", *dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		mimeType, supported := mimeTypes[ext]
		if !supported {
			continue
		}

		title, artist, ok := parseTitleArtist(entry.Name())
		if !ok {
			fmt.Printf("could not parse title and artist from: %s\n", entry.Name())
			continue
		}

		path := filepath.Join(*dir, entry.Name())
		if err := ingestFile(*serverURL, path, mimeType, title, artist); err != nil {
			fmt.Printf("error ingesting %s: %v\n", entry.Name(), err)
			continue
		}
		fmt.Printf("ingested: %s - %s\n", title, artist)
	}
}

// parseTitleArtist splits "Title - Artist.ext" the way ingest_songs.py's
// rsplit(" - ", 1) does.
func parseTitleArtist(filename string) (title, artist string, ok bool) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	idx := strings.LastIndex(base, " - ")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(base[:idx]), strings.TrimSpace(base[idx+len(" - "):]), true
}

func ingestFile(serverURL, path, mimeType, title, artist string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(path)))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}

	_ = writer.WriteField("title", title)
	_ = writer.WriteField("artist", artist)
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, serverURL+"/api/ingest", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: %s", resp.Status, string(respBody))
	}
	return nil
}
