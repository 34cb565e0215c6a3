package page

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// Submission is one summarization request as collected by the form.
type Submission struct {
	FileName    string
	ContentType string
	File        io.Reader
	Prompt      string
	ClientIP    string // sent as X-Forwarded-For
}

// Submitter sends a submission to the proxy endpoint and returns its raw answer.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) (status int, body string, err error)
}

// HTTPSubmitter posts submissions as multipart form data to the proxy endpoint.
type HTTPSubmitter struct {
	endpoint string
	client   *http.Client
}

func NewHTTPSubmitter(endpoint string, client *http.Client) *HTTPSubmitter {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPSubmitter{endpoint: endpoint, client: client}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (s *HTTPSubmitter) Submit(ctx context.Context, sub Submission) (int, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	contentType := sub.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(sub.FileName)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return 0, "", err
	}
	if _, err := io.Copy(part, sub.File); err != nil {
		return 0, "", fmt.Errorf("read upload: %w", err)
	}
	if err := w.WriteField("prompt", sub.Prompt); err != nil {
		return 0, "", err
	}
	if err := w.Close(); err != nil {
		return 0, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, buf)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if sub.ClientIP != "" {
		req.Header.Set("X-Forwarded-For", sub.ClientIP)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode, string(body), nil
}
