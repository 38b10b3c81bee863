package calendar_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/calendar"
)

func TestClientEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ks123/events", r.URL.Path)
		assert.Equal(t, "token", r.Header.Get("Teamup-Token"))
		assert.Equal(t, "2022-01-08", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2022-01-10", r.URL.Query().Get("endDate"))
		assert.Equal(t, []string{"1002"}, r.URL.Query()["subcalendarId[]"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"events": [{
			"id": "e1",
			"title": "Alice",
			"start_dt": "2022-01-08T11:00:00-05:00",
			"end_dt": "2022-01-08T18:00:00-05:00",
			"who": "Alice",
			"notes": "email: alice@example.com",
			"subcalendar_id": 1002,
			"custom": {"coverage_level": ["Crew Chief"]}
		}]}`))
	}))
	defer srv.Close()

	client := calendar.NewClient(srv.URL+"/", "token", "ks123", 5*time.Second)
	start := time.Date(2022, time.January, 8, 0, 0, 0, 0, time.UTC)

	events, err := client.Events(context.Background(), "1002", start, start.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Alice", events[0].Who)
	require.NotNil(t, events[0].Notes)
	assert.Equal(t, "email: alice@example.com", *events[0].Notes)
	assert.Equal(t, []string{"Crew Chief"}, events[0].Custom.CoverageLevel)
}

func TestClientEventsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := calendar.NewClient(srv.URL, "bad", "ks123", 5*time.Second)
	_, err := client.Events(context.Background(), "1002", time.Now(), time.Now().AddDate(0, 0, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
