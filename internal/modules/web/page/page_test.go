package page

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakeSubmitter struct {
	calls  int
	got    Submission
	data   string
	status int
	body   string
	err    error
}

func (f *fakeSubmitter) Submit(_ context.Context, sub Submission) (int, string, error) {
	f.calls++
	f.got = sub
	if sub.File != nil {
		b, _ := io.ReadAll(sub.File)
		f.data = string(b)
	}
	return f.status, f.body, f.err
}

func newRouter(sub Submitter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(sub, zap.NewNop()).RegisterRoutes(r.Group(""))
	return r
}

func formRequest(t *testing.T, fileName, content, prompt string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
		h.Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write([]byte(content))
	}
	if prompt != "" {
		w.WriteField("prompt", prompt)
	}
	w.Close()
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestIndexRendersEmptyForm(t *testing.T) {
	rec := serve(newRouter(&fakeSubmitter{}), httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	html := rec.Body.String()
	for _, want := range []string{
		`accept=".docx"`,
		`id="submit" disabled>Generate Summary`,
		`id="copy" disabled`,
		`Save as .md`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in page", want)
		}
	}
	if strings.Contains(html, `role="alert"`) {
		t.Fatalf("empty form must not show an error")
	}
}

func TestSubmitWithoutInputSkipsNetwork(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		prompt   string
		wantText string
	}{
		{"nothing", "", "", "Please select a file and enter a prompt."},
		{"no prompt", "a.docx", "", "Please select a file and enter a prompt."},
		{"no file", "", "Summarize", "Please select a file and enter a prompt."},
		{"wrong type", "a.pdf", "Summarize", "Please select a valid .docx file."},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sub := &fakeSubmitter{}
			rec := serve(newRouter(sub), formRequest(t, test.file, "x", test.prompt))
			if sub.calls != 0 {
				t.Fatalf("expected no submission, got %d", sub.calls)
			}
			if !strings.Contains(rec.Body.String(), test.wantText) {
				t.Fatalf("expected %q in page, got %s", test.wantText, rec.Body.String())
			}
		})
	}
}

func TestSubmitRendersSummary(t *testing.T) {
	sub := &fakeSubmitter{status: http.StatusOK, body: `{"summary":"S"}`}
	rec := serve(newRouter(sub), formRequest(t, "meeting.docx", "DOCX", "Summarize"))

	if sub.calls != 1 {
		t.Fatalf("expected one submission, got %d", sub.calls)
	}
	if sub.got.FileName != "meeting.docx" || sub.got.Prompt != "Summarize" || sub.data != "DOCX" {
		t.Fatalf("unexpected submission %+v data=%q", sub.got, sub.data)
	}
	if !strings.Contains(sub.got.ContentType, "wordprocessingml") {
		t.Fatalf("content type not forwarded: %q", sub.got.ContentType)
	}
	if sub.got.ClientIP != "192.0.2.1" {
		t.Fatalf("client address not forwarded: %q", sub.got.ClientIP)
	}

	html := rec.Body.String()
	if !strings.Contains(html, `<textarea id="summary" readonly>S</textarea>`) {
		t.Fatalf("summary not rendered: %s", html)
	}
	if strings.Contains(html, `id="copy" disabled`) || strings.Contains(html, `id="save" data-filename="summary.txt" disabled`) {
		t.Fatalf("copy and save must be enabled")
	}
	if !strings.Contains(html, `<p>S</p>`) {
		t.Fatalf("preview not rendered")
	}
}

func TestSubmitRendersErrors(t *testing.T) {
	tests := []struct {
		name string
		sub  *fakeSubmitter
		want string
	}{
		{
			"backend error",
			&fakeSubmitter{status: http.StatusServiceUnavailable, body: `{"error":"Flask backend error: Service unavailable"}`},
			"An error occurred while generating the summary: HTTP error! status: 503.",
		},
		{
			"missing summary",
			&fakeSubmitter{status: http.StatusOK, body: `{}`},
			"No summary or error returned from the server",
		},
		{
			"unreachable",
			&fakeSubmitter{err: errors.New("connection refused")},
			"An error occurred while generating the summary: connection refused",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := serve(newRouter(test.sub), formRequest(t, "a.docx", "x", "p"))
			html := rec.Body.String()
			if !strings.Contains(html, `role="alert"`) || !strings.Contains(html, test.want) {
				t.Fatalf("expected error %q in page, got %s", test.want, html)
			}
			if !strings.Contains(html, `<textarea id="summary" readonly></textarea>`) {
				t.Fatalf("summary must be empty on error")
			}
		})
	}
}

func TestHTTPSubmitterPostsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, fh, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if fh.Filename != "t.docx" || string(data) != "DOCX" || fh.Header.Get("Content-Type") != "application/x-test" {
			http.Error(w, "bad file part", http.StatusBadRequest)
			return
		}
		if r.FormValue("prompt") != "P" {
			http.Error(w, "bad prompt", http.StatusBadRequest)
			return
		}
		if r.Header.Get("X-Forwarded-For") != "203.0.113.5" {
			http.Error(w, "missing forwarded address", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"summary":"ok"}`)
	}))
	defer srv.Close()

	s := NewHTTPSubmitter(srv.URL, srv.Client())
	status, body, err := s.Submit(context.Background(), Submission{
		FileName:    "t.docx",
		ContentType: "application/x-test",
		File:        strings.NewReader("DOCX"),
		Prompt:      "P",
		ClientIP:    "203.0.113.5",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if status != http.StatusOK || body != `{"summary":"ok"}` {
		t.Fatalf("unexpected answer %d %q", status, body)
	}
}

func TestHTTPSubmitterTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, _, err := NewHTTPSubmitter(url, nil).Submit(context.Background(), Submission{FileName: "a.docx", File: strings.NewReader(""), Prompt: "p"})
	if err == nil {
		t.Fatalf("expected transport error")
	}
}
