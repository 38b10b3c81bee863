package calendar_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

type fakeSource struct {
	events map[string][]calendar.Event
	err    error
}

func (f *fakeSource) Events(ctx context.Context, subcalendar string, start time.Time, end time.Time) ([]calendar.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events[subcalendar], nil
}

var est = time.FixedZone("EST", -5*60*60)

func event(id string, who string, start string, end string, levels ...string) calendar.Event {
	e := calendar.Event{ID: id, Title: who, Who: who, StartDT: start, EndDT: end}
	e.Custom.CoverageLevel = levels
	return e
}

func TestFeedRequiredWindows(t *testing.T) {
	source := &fakeSource{events: map[string][]calendar.Event{
		"1001": {
			event("r1", "", "2022-01-08T16:00:00Z", "2022-01-09T06:00:00Z"),
			event("r2", "", "not a time", "2022-01-09T06:00:00Z"),
		},
	}}
	feed := calendar.NewFeed(source, nil, est)

	windows, problems, err := feed.RequiredWindows(context.Background(), "1001", domain.PolicyStandardCrew, time.Now(), time.Now())
	require.NoError(t, err)

	require.Len(t, windows, 1)
	assert.Equal(t, "r1", windows[0].ID)
	assert.Equal(t, domain.PolicyStandardCrew, windows[0].Policy)
	assert.Equal(t, 11, windows[0].Start.Hour())
	assert.Equal(t, est, windows[0].Start.Location())

	require.Len(t, problems, 1)
	assert.ErrorIs(t, problems[0], domain.ErrDataException)
}

func TestFeedOfferedWindowsMapsRoles(t *testing.T) {
	notes := "email: alice@example.com"
	alice := event("o1", "Alice", "2022-01-08T11:00:00-05:00", "2022-01-08T18:00:00-05:00", "Crew Chief")
	alice.Notes = &notes

	source := &fakeSource{events: map[string][]calendar.Event{
		"1002": {
			alice,
			event("o2", "Bob", "2022-01-08T11:00:00-05:00", "2022-01-08T18:00:00-05:00", "driver"),
			event("o3", "Mallory", "2022-01-08T11:00:00-05:00", "2022-01-08T18:00:00-05:00", "Paramedic"),
			event("o4", "Nobody", "2022-01-08T11:00:00-05:00", "2022-01-08T18:00:00-05:00"),
		},
	}}
	roles := map[string]domain.Role{"Crew Chief": domain.RoleCrewChief}
	feed := calendar.NewFeed(source, roles, est)

	offers, problems, err := feed.OfferedWindows(context.Background(), "1002", time.Now(), time.Now())
	require.NoError(t, err)

	require.Len(t, offers, 4)
	assert.Equal(t, domain.RoleCrewChief, offers[0].Role)
	assert.Equal(t, notes, offers[0].Notes)
	assert.Equal(t, domain.RoleDriver, offers[1].Role)

	// 无法识别的角色保留原值，检查时让对应班次失败
	assert.Equal(t, domain.Role("Paramedic"), offers[2].Role)
	assert.False(t, offers[2].Role.Valid())
	assert.False(t, offers[3].Role.Valid())

	assert.Len(t, problems, 2)
}

func TestFeedSourceError(t *testing.T) {
	feed := calendar.NewFeed(&fakeSource{err: errors.New("timeout")}, nil, est)

	_, _, err := feed.OfferedWindows(context.Background(), "1002", time.Now(), time.Now())
	assert.Error(t, err)
}
