package ingest

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"detect_dashboard/internal/detectapi"
	"detect_dashboard/internal/normalize"
)

var mediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
}

// ContentType guesses the MIME type from the name, then from the bytes.
func ContentType(name string, data []byte) string {
	if ct, ok := mediaTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return http.DetectContentType(data)
}

// Accepts reports whether a file of this name and content fits the flow.
func Accepts(m normalize.Media, name string, data []byte) bool {
	switch m {
	case normalize.Video:
		return strings.HasPrefix(ContentType(name, data), "video/")
	case normalize.Image:
		return strings.HasPrefix(ContentType(name, data), "image/")
	case normalize.Text:
		switch strings.ToLower(filepath.Ext(name)) {
		case ".txt", ".md", ".text", ".markdown", ".docx", ".pdf":
			return true
		}
	}
	return false
}

// DataURL inlines a file for previews.
func DataURL(name string, data []byte) string {
	return "data:" + ContentType(name, data) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Load reads a file from disk into a submission for the given flow. Text
// files are extracted; video and image files are sent as-is.
func Load(m normalize.Media, path string) (detectapi.Submission, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return detectapi.Submission{}, fmt.Errorf("read file: %w", err)
	}
	return FromUpload(m, filepath.Base(path), raw)
}

// FromUpload builds a submission from an uploaded file body.
func FromUpload(m normalize.Media, name string, raw []byte) (detectapi.Submission, error) {
	if !Accepts(m, name, raw) {
		return detectapi.Submission{}, fmt.Errorf("%s is not a supported %s file", name, m)
	}
	s := detectapi.Submission{Media: m, FileName: name}
	if m == normalize.Text {
		text, err := ExtractText(name, raw)
		if err != nil {
			return detectapi.Submission{}, err
		}
		s.Text = text
		return s, nil
	}
	s.Data = raw
	return s, nil
}
