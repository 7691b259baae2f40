package room

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"arena-server/internal/telemetry"
)

// Result is reported to the external ledger when a player's game ends,
// either by death, cash-out or leaving while alive.
type Result struct {
	GameMode        string  `json:"gameMode"`
	WagerAmount     int     `json:"wagerAmount"`
	FinalScore      int     `json:"finalScore"`
	FinalLength     int     `json:"finalLength"`
	FinalCash       int     `json:"finalCash"`
	DurationSeconds float64 `json:"durationSeconds"`
	UserID          string  `json:"userId"`
}

// ResultReporter delivers finished-game results. Rooms call it off the
// tick goroutine.
type ResultReporter interface {
	Report(ctx context.Context, r Result) error
}

// LogReporter writes results to a logger.
type LogReporter struct {
	Logger telemetry.Logger
}

func (l LogReporter) Report(_ context.Context, r Result) error {
	if l.Logger == nil {
		return nil
	}
	l.Logger.Printf("result %s: mode=%s wager=%d cash=%d length=%d score=%d %.1fs",
		r.UserID, r.GameMode, r.WagerAmount, r.FinalCash, r.FinalLength, r.FinalScore, r.DurationSeconds)
	return nil
}

// HTTPReporter POSTs results as JSON to URL.
type HTTPReporter struct {
	URL    string
	Client *http.Client
}

// NewHTTPReporter returns a reporter with a bounded client timeout.
func NewHTTPReporter(url string) *HTTPReporter {
	return &HTTPReporter{URL: url, Client: &http.Client{Timeout: 5 * time.Second}}
}

func (h *HTTPReporter) Report(ctx context.Context, r Result) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build result request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post result: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("post result: status %d", resp.StatusCode)
	}
	return nil
}
