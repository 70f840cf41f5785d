package ingest

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"detect_dashboard/internal/normalize"
)

func TestDocxText(t *testing.T) {
	raw := buildDOCX(t, `<w:document><w:body><w:p><w:r><w:t>Intro</w:t></w:r></w:p><w:p><w:r><w:t>Hello</w:t><w:tab/><w:t>world.</w:t></w:r></w:p></w:body></w:document>`)
	got, err := ExtractText("essay.docx", raw)
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if got != "Intro\nHello world." {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestReadTextPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.md")
	if err := os.WriteFile(path, []byte("  first   line \r\n\r\n second line\n"), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	doc, err := ReadText(path)
	if err != nil {
		t.Fatalf("read text: %v", err)
	}
	if doc.Name != "note.md" || doc.Text != "first line\nsecond line" {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestExtractTextRejects(t *testing.T) {
	if _, err := ExtractText("clip.mp4", []byte("x")); err == nil {
		t.Fatal("expected unsupported type error")
	}
	if _, err := ExtractText("blank.txt", []byte(" \n\t ")); err == nil {
		t.Fatal("expected error for blank text")
	}
	if _, err := ExtractText("broken.pdf", []byte("not a pdf")); err == nil {
		t.Fatal("expected error for invalid pdf")
	}
}

func TestLoadMedia(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "photo.PNG")
	if err := os.WriteFile(img, []byte{0x89, 'P', 'N', 'G'}, 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	s, err := Load(normalize.Image, img)
	if err != nil {
		t.Fatalf("load image: %v", err)
	}
	if s.Media != normalize.Image || s.FileName != "photo.PNG" || len(s.Data) != 4 {
		t.Fatalf("unexpected submission %+v", s)
	}
	if _, err := Load(normalize.Video, img); err == nil {
		t.Fatal("expected image to be rejected by the video flow")
	}
}

func TestFromUploadText(t *testing.T) {
	s, err := FromUpload(normalize.Text, "a.txt", []byte("Hello there."))
	if err != nil {
		t.Fatalf("from upload: %v", err)
	}
	if s.Text != "Hello there." || len(s.Data) != 0 {
		t.Fatalf("unexpected submission %+v", s)
	}
}

func TestDataURL(t *testing.T) {
	got := DataURL("x.jpg", []byte("abc"))
	if got != "data:image/jpeg;base64,YWJj" {
		t.Fatalf("unexpected data url %q", got)
	}
	if !strings.HasPrefix(DataURL("unknown", []byte("plain words")), "data:text/plain") {
		t.Fatal("expected sniffed content type")
	}
}

func buildDOCX(t *testing.T, bodyXML string) []byte {
	t.Helper()
	var b bytes.Buffer
	zw := zip.NewWriter(&b)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := f.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` + bodyXML)); err != nil {
		t.Fatalf("write xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return b.Bytes()
}
