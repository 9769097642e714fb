// Package suggest implements the HTTP client for the external
// intervention-suggestion model. The core treats it as an opaque function
// from (student, rates) to free-text suggestions.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type suggestRequest struct {
	StudentName    string  `json:"studentName"`
	AttendanceRate float64 `json:"attendanceRate"`
	HomeworkRate   float64 `json:"homeworkCompletionRate"`
}

type suggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// Suggest asks the external model for intervention ideas. Rates are
// fractions in [0,1], validated by the calling service.
func (c *Client) Suggest(ctx context.Context, studentName string, attendanceRate, homeworkRate float64) ([]string, error) {
	body, err := json.Marshal(suggestRequest{
		StudentName:    studentName,
		AttendanceRate: attendanceRate,
		HomeworkRate:   homeworkRate,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/suggest", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggest: unexpected status %d", res.StatusCode)
	}
	var out suggestResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("suggest: decode: %w", err)
	}
	return out.Suggestions, nil
}
