// Package analyzer holds the outbound client for the external analysis
// engine. The engine answers asynchronously via POST /webhook/analyzer; this
// client only delivers the trigger request.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"kyccase/internal/config"
)

// ScreeningReportRef identifies the screening report the analyzer should
// process.
type ScreeningReportRef struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	StoragePath string `json:"storagePath"`
	MimeType    string `json:"mimeType"`
}

// TriggerPayload is the case bundle sent to the analyzer.
type TriggerPayload struct {
	CaseID          string             `json:"caseId"`
	CaseNumber      string             `json:"caseNumber"`
	ClientName      string             `json:"clientName"`
	ClientType      string             `json:"clientType"`
	Country         string             `json:"country"`
	BusinessType    string             `json:"businessType,omitempty"`
	Industry        string             `json:"industry,omitempty"`
	SourceOfWealth  string             `json:"sourceOfWealth,omitempty"`
	ScreeningReport ScreeningReportRef `json:"screeningReport"`
}

// Client delivers analysis trigger requests to the external engine.
type Client interface {
	// Trigger sends the payload to the analyzer. A non-2xx response or a
	// timeout is an error; no retry is attempted here.
	Trigger(ctx context.Context, p TriggerPayload) error
}

// httpClient is the HTTP implementation of Client.
type httpClient struct {
	url    string
	apiKey string
	client *http.Client
}

// NewHTTP creates a Client that POSTs triggers to cfg.WebhookURL with the
// configured timeout. The transport is traced via otelhttp.
func NewHTTP(cfg config.AnalyzerConfig) (Client, error) {
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("analyzer webhook url is required")
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &httpClient{
		url:    cfg.WebhookURL,
		apiKey: cfg.APIKey,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

func (c *httpClient) Trigger(ctx context.Context, p TriggerPayload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode trigger payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build trigger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send trigger: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("analyzer responded %d", resp.StatusCode)
	}
	return nil
}
