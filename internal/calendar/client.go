package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type Event struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	StartDT       string  `json:"start_dt"`
	EndDT         string  `json:"end_dt"`
	Who           string  `json:"who"`
	Notes         *string `json:"notes"`
	SubcalendarID int64   `json:"subcalendar_id"`
	Custom        struct {
		CoverageLevel []string `json:"coverage_level"`
	} `json:"custom"`
}

type eventsResponse struct {
	Events []Event `json:"events"`
}

// EventSource 按子日历和日期范围获取事件
type EventSource interface {
	Events(ctx context.Context, subcalendar string, start time.Time, end time.Time) ([]Event, error)
}

// Client 是 Teamup 风格的日历 HTTP 客户端
type Client struct {
	baseURL     string
	apiKey      string
	calendarKey string
	httpClient  *http.Client
}

func NewClient(baseURL string, apiKey string, calendarKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		calendarKey: calendarKey,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) Events(ctx context.Context, subcalendar string, start time.Time, end time.Time) ([]Event, error) {
	query := url.Values{}
	query.Set("startDate", start.Format(dateLayout))
	query.Set("endDate", end.Format(dateLayout))
	query.Add("subcalendarId[]", subcalendar)

	endpoint := fmt.Sprintf("%s/%s/events?%s", c.baseURL, url.PathEscape(c.calendarKey), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Teamup-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("获取日历事件失败，状态码 %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	return payload.Events, nil
}
