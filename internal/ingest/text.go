package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Document is text pulled from a file for the text flow.
type Document struct {
	Name string
	Path string
	Text string
}

func ReadText(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	text, err := ExtractText(filepath.Base(path), raw)
	if err != nil {
		return nil, err
	}
	return &Document{Name: filepath.Base(path), Path: path, Text: text}, nil
}

// ExtractText decodes an uploaded document by extension.
func ExtractText(name string, raw []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".txt", ".md", ".text", ".markdown":
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("%s is not valid UTF-8 text", name)
		}
		text = string(raw)
	case ".docx":
		text, err = docxText(raw)
	case ".pdf":
		text, err = pdfText(raw)
	default:
		return "", fmt.Errorf("unsupported text file type: %q", ext)
	}
	if err != nil {
		return "", err
	}
	text = tidy(text)
	if text == "" {
		return "", fmt.Errorf("no text found in %s", name)
	}
	return text, nil
}

func docxText(raw []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open docx zip: %w", err)
	}
	var body io.ReadCloser
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		body, err = f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		break
	}
	if body == nil {
		return "", fmt.Errorf("word/document.xml not found")
	}
	defer body.Close()

	dec := xml.NewDecoder(body)
	var b strings.Builder
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				if b.Len() > 0 {
					b.WriteByte('\n')
				}
			case "tab":
				b.WriteByte(' ')
			case "t":
				depth++
			}
		case xml.EndElement:
			if el.Name.Local == "t" && depth > 0 {
				depth--
			}
		case xml.CharData:
			if depth > 0 {
				b.Write(el)
			}
		}
	}
	return b.String(), nil
}

func pdfText(raw []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteByte('\n')
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no extractable text found in pdf")
	}
	return b.String(), nil
}

// tidy collapses runs of spaces and drops blank lines, keeping line breaks.
func tidy(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if fields := strings.Fields(line); len(fields) > 0 {
			out = append(out, strings.Join(fields, " "))
		}
	}
	return strings.Join(out, "\n")
}
