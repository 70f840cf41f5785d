package detectapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"detect_dashboard/internal/normalize"
)

const (
	videoPath = "/video-detect"
	imagePath = "/image-detect"
	textPath  = "/text-detect"
)

// ErrBackend marks failures reported by the detection service itself, either
// through a non-2xx status or an {"error": ...} body.
var ErrBackend = errors.New("detection backend error")

type Client struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Detect(ctx context.Context, s Submission) (Result, error) {
	switch s.Media {
	case normalize.Video:
		return c.DetectVideo(ctx, s.FileName, s.Data)
	case normalize.Image:
		return c.DetectImage(ctx, s.FileName, s.Data)
	case normalize.Text:
		return c.DetectText(ctx, s.Text)
	default:
		return Result{}, fmt.Errorf("unsupported media %q", s.Media)
	}
}

func (c *Client) DetectVideo(ctx context.Context, fileName string, data []byte) (Result, error) {
	body, err := c.postFile(ctx, videoPath, fileName, data)
	if err != nil {
		return Result{}, err
	}
	var parsed videoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("decode video response: %w", err)
	}
	if parsed.Error != "" {
		return Result{}, fmt.Errorf("%w: %s", ErrBackend, parsed.Error)
	}
	if parsed.Final == nil {
		return Result{}, fmt.Errorf("decode video response: missing final verdict")
	}
	return Result{
		Media:            normalize.Video,
		Label:            parsed.Final.Label,
		Confidence:       parsed.Final.Confidence,
		FramePredictions: parsed.FramePredictions,
	}, nil
}

func (c *Client) DetectImage(ctx context.Context, fileName string, data []byte) (Result, error) {
	body, err := c.postFile(ctx, imagePath, fileName, data)
	if err != nil {
		return Result{}, err
	}
	return decodeExplained(normalize.Image, body)
}

func (c *Client) DetectText(ctx context.Context, text string) (Result, error) {
	payload, err := json.Marshal(textRequest{Text: strings.TrimSpace(text), Explain: true})
	if err != nil {
		return Result{}, fmt.Errorf("encode text request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+textPath, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	body, err := c.do(req)
	if err != nil {
		return Result{}, err
	}
	return decodeExplained(normalize.Text, body)
}

func (c *Client) postFile(ctx context.Context, path, fileName string, data []byte) ([]byte, error) {
	if strings.TrimSpace(fileName) == "" {
		fileName = "upload"
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("read response: %w", readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrBackend, resp.StatusCode, truncate(strings.TrimSpace(string(body)), 200))
	}
	return body, nil
}

func decodeExplained(media normalize.Media, body []byte) (Result, error) {
	var parsed explainedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("decode %s response: %w", media, err)
	}
	if parsed.Error != "" {
		return Result{}, fmt.Errorf("%w: %s", ErrBackend, parsed.Error)
	}
	return Result{
		Media:            media,
		Label:            parsed.Label,
		Confidence:       parsed.Confidence,
		LimeExplanations: parsed.LimeExplanations,
		HeatmapImage:     parsed.HeatmapImage,
		Image:            parsed.Image,
	}, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
