package relay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/docsum/transcript-summary/internal/config"
	"go.uber.org/zap"
)

// Client forwards summarization requests to the backend collaborator.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient builds a relay client for baseURL. An empty baseURL is accepted; every
// Forward then fails at the config stage.
func NewClient(baseURL string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// Endpoint returns the backend URL requests are posted to, or "" when unconfigured.
func (c *Client) Endpoint() string {
	if c.baseURL == "" {
		return ""
	}
	return c.baseURL + config.SummarizePath
}

// CheckConfig reports the config-stage failure, if any.
func (c *Client) CheckConfig() *Failure {
	if c.baseURL == "" {
		return configFailure(config.BackendURLEnv)
	}
	return nil
}

// exchange accumulates what each step learns about the backend response.
type exchange struct {
	contentType string
	body        io.Reader

	status   int
	raw      []byte
	document any
	summary  string
}

type step func(ctx context.Context, ex *exchange) *Failure

// Forward posts body to the backend and runs the response through the ordered
// chain network → status → parse → summary. The first failing step wins.
func (c *Client) Forward(ctx context.Context, body io.Reader, contentType string) (*Result, *Failure) {
	ex := &exchange{contentType: contentType, body: body}
	steps := []step{
		c.checkConfigStep,
		c.send,
		checkStatus,
		parseJSON,
		requireSummary,
	}
	for _, run := range steps {
		if failure := run(ctx, ex); failure != nil {
			return nil, failure
		}
	}
	return &Result{Body: ex.raw, Summary: ex.summary}, nil
}

func (c *Client) checkConfigStep(context.Context, *exchange) *Failure {
	return c.CheckConfig()
}

func (c *Client) send(ctx context.Context, ex *exchange) *Failure {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), ex.body)
	if err != nil {
		return transportFailure(err)
	}
	req.Header.Set("Content-Type", ex.contentType)
	req.Header.Set("Accept", "application/json")

	c.log.Info("sending request to summarizer backend", zap.String("url", req.URL.String()))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportFailure(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportFailure(err)
	}
	ex.status = resp.StatusCode
	ex.raw = raw

	c.log.Info("received response from summarizer backend",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
	)
	c.log.Debug("summarizer backend response body", zap.ByteString("body", raw))
	return nil
}

func checkStatus(_ context.Context, ex *exchange) *Failure {
	if ex.status < 200 || ex.status > 299 {
		return statusFailure(ex.status, ex.raw)
	}
	return nil
}

func parseJSON(_ context.Context, ex *exchange) *Failure {
	var doc any
	if err := json.Unmarshal(ex.raw, &doc); err != nil {
		return parseFailure(ex.raw, err)
	}
	ex.document = doc
	return nil
}

func requireSummary(_ context.Context, ex *exchange) *Failure {
	obj, ok := ex.document.(map[string]any)
	if !ok {
		return summaryFailure()
	}
	summary, ok := obj["summary"]
	if !ok || !truthy(summary) {
		return summaryFailure()
	}
	if s, ok := summary.(string); ok {
		ex.summary = s
	}
	return nil
}

// truthy follows the falsy set of a decoded JSON value: null, false, 0 and "".
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	default:
		return true
	}
}
