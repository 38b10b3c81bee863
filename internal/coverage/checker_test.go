package coverage_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/coverage"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

// 11:00 到第二天 01:00，共 14 小时
func fourteenHourWindow() domain.RequiredWindow {
	return required("duty", domain.PolicyStandardCrew, 11, 25)
}

func TestCheckWindowFullyCovered(t *testing.T) {
	offers := []domain.OfferedWindow{
		offer("Alice", domain.RoleCrewChief, 11, 18),
		offer("Bob", domain.RoleDriver, 11, 18),
		offer("Carol", domain.RoleCrewChief, 18, 25),
		offer("Dave", domain.RoleEMT, 18, 25),
	}

	report, err := coverage.New(coverage.DefaultRules(), nil, offers).CheckWindow(fourteenHourWindow())
	require.NoError(t, err)

	assert.Empty(t, report.Gaps)
	assert.False(t, report.Understaffed())
	assert.Empty(t, report.Warnings)

	require.Len(t, report.Spans, 2)
	assert.Equal(t, domain.CrewSignature("Alice (CC), Bob (Driver)"), report.Spans[0].Crew)
	assert.True(t, at(11).Equal(report.Spans[0].Start))
	assert.True(t, at(18).Equal(report.Spans[0].End))
	assert.Equal(t, domain.CrewSignature("Carol (CC), Dave (EMT > 18)"), report.Spans[1].Crew)
	assert.True(t, at(25).Equal(report.Spans[1].End))
	assert.Equal(t, 14, report.Spans[0].Hours+report.Spans[1].Hours)

	// 每人 7 小时，四个人合计 28 人时
	assert.Equal(t, domain.PersonHourSummary{"Alice": 7, "Bob": 7, "Carol": 7, "Dave": 7}, report.Summary)
	assert.Equal(t, 28, report.Summary.Total())
}

func TestCheckWindowCrewChiefGap(t *testing.T) {
	offers := []domain.OfferedWindow{
		offer("Alice", domain.RoleCrewChief, 11, 14),
		offer("Alice", domain.RoleCrewChief, 16, 18),
		offer("Bob", domain.RoleDriver, 11, 18),
		offer("Carol", domain.RoleCrewChief, 18, 25),
		offer("Dave", domain.RoleEMT, 18, 25),
	}

	report, err := coverage.New(coverage.DefaultRules(), nil, offers).CheckWindow(fourteenHourWindow())
	require.NoError(t, err)

	require.Len(t, report.Gaps, 1)
	gap := report.Gaps[0]
	assert.True(t, at(14).Equal(gap.Start))
	assert.True(t, at(16).Equal(gap.End))
	assert.Equal(t, 2, gap.Hours)
	assert.Equal(t, domain.CategoryCrewChief, gap.Category)
	assert.True(t, report.Understaffed())

	assert.Equal(t, 5, report.Summary["Alice"])
}

func TestCheckWindowNoOffers(t *testing.T) {
	report, err := coverage.New(coverage.DefaultRules(), nil, nil).CheckWindow(required("empty", domain.PolicyStandardCrew, 11, 14))
	require.NoError(t, err)

	require.Len(t, report.Gaps, 2)
	assert.Equal(t, domain.CategoryCrewChief, report.Gaps[0].Category)
	assert.Equal(t, 3, report.Gaps[0].Hours)
	assert.Equal(t, domain.CategoryDriverOrEMT, report.Gaps[1].Category)
	assert.Empty(t, report.Spans)
	assert.Empty(t, report.Summary)
}

func TestCheckWindowSupervisorPolicy(t *testing.T) {
	offers := []domain.OfferedWindow{
		offer("Sam", domain.RoleSupervisor, 8, 12),
		offer("Sue", domain.RoleSupervisor, 11, 14),
	}

	report, err := coverage.New(coverage.DefaultRules(), nil, offers).CheckWindow(required("sup", domain.PolicySupervisor, 8, 16))
	require.NoError(t, err)

	require.Len(t, report.Gaps, 1)
	assert.Equal(t, domain.CategorySupervisor, report.Gaps[0].Category)
	assert.True(t, at(14).Equal(report.Gaps[0].Start))
	assert.Equal(t, 2, report.Gaps[0].Hours)

	require.Len(t, report.Warnings, 1)
	assert.True(t, at(11).Equal(report.Warnings[0].Hour))
	assert.Equal(t, []string{coverage.WarningTooManySupervisors}, report.Warnings[0].Warnings)
}

func TestCheckWindowIgnoresOffersOutsideWindow(t *testing.T) {
	offers := []domain.OfferedWindow{
		offer("Alice", domain.RoleCrewChief, 0, 30),
		offer("Bob", domain.RoleDriver, 0, 30),
		offer("Eve", domain.RoleCrewChief, 30, 34),
	}

	report, err := coverage.New(coverage.DefaultRules(), nil, offers).CheckWindow(required("duty", domain.PolicyStandardCrew, 11, 18))
	require.NoError(t, err)

	assert.Empty(t, report.Gaps)
	assert.Equal(t, domain.PersonHourSummary{"Alice": 7, "Bob": 7}, report.Summary)
}

func TestCheckWindowUnknownRole(t *testing.T) {
	bad := offer("Mallory", domain.Role("paramedic"), 12, 13)
	offers := []domain.OfferedWindow{
		offer("Alice", domain.RoleCrewChief, 11, 18),
		offer("Bob", domain.RoleDriver, 11, 18),
		bad,
	}

	_, err := coverage.New(coverage.DefaultRules(), nil, offers).CheckWindow(required("duty", domain.PolicyStandardCrew, 11, 18))
	require.Error(t, err)

	var dataErr *domain.DataException
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, bad, dataErr.Record)
}

func TestCheckWindowUnknownRoleShorterThanAnHour(t *testing.T) {
	bad := domain.OfferedWindow{
		ID:         "mallory",
		Person:     "Mallory",
		Role:       domain.Role("paramedic"),
		TimeWindow: domain.TimeWindow{Start: at(12), End: at(12).Add(30 * time.Minute)},
	}
	offers := []domain.OfferedWindow{
		offer("Alice", domain.RoleCrewChief, 11, 18),
		offer("Bob", domain.RoleDriver, 11, 18),
		bad,
	}
	checker := coverage.New(coverage.DefaultRules(), nil, offers)

	_, err := checker.CheckWindow(required("duty", domain.PolicyStandardCrew, 11, 18))
	var dataErr *domain.DataException
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, bad, dataErr.Record)

	// 不重叠的班次不受影响
	_, err = checker.CheckWindow(required("later", domain.PolicyStandardCrew, 35, 42))
	assert.NoError(t, err)
}

func TestCheckWindowUnknownPolicy(t *testing.T) {
	_, err := coverage.New(coverage.DefaultRules(), nil, nil).CheckWindow(required("duty", domain.Policy("overnight"), 11, 18))
	assert.ErrorIs(t, err, domain.ErrDataException)
}

func TestCheckWindowInvalidWindow(t *testing.T) {
	_, err := coverage.New(coverage.DefaultRules(), nil, nil).CheckWindow(required("duty", domain.PolicyStandardCrew, 18, 11))
	assert.ErrorIs(t, err, domain.ErrDataException)
}

func TestCheckContainsDataExceptions(t *testing.T) {
	offers := []domain.OfferedWindow{
		offer("Mallory", domain.Role("paramedic"), 11, 12),
		offer("Alice", domain.RoleCrewChief, 35, 42),
		offer("Bob", domain.RoleDriver, 35, 42),
	}
	windows := []domain.RequiredWindow{
		required("saturday", domain.PolicyStandardCrew, 11, 18),
		required("sunday", domain.PolicyStandardCrew, 35, 42),
		required("monday", domain.PolicyStandardCrew, 59, 66),
	}

	reports, summary := coverage.New(coverage.DefaultRules(), nil, offers).Check(windows)

	require.Len(t, reports, 3)

	// 数据异常不能被当作没有缺口
	assert.True(t, reports[0].Failed())
	assert.ErrorIs(t, reports[0].Err, domain.ErrDataException)

	assert.False(t, reports[1].Failed())
	assert.False(t, reports[1].Understaffed())

	assert.False(t, reports[2].Failed())
	assert.True(t, reports[2].Understaffed())

	assert.Equal(t, coverage.RunSummary{Windows: 3, Understaffed: 1, WithWarnings: 0, DataExceptions: 1}, summary)
}

func TestSkipStartedBefore(t *testing.T) {
	windows := []domain.RequiredWindow{
		required("late", domain.PolicyStandardCrew, 40, 48),
		required("started", domain.PolicyStandardCrew, 6, 14),
		required("early", domain.PolicyStandardCrew, 11, 18),
	}

	kept := coverage.SkipStartedBefore(windows, at(10))

	require.Len(t, kept, 2)
	assert.Equal(t, "early", kept[0].ID)
	assert.Equal(t, "late", kept[1].ID)
}

func TestShiftName(t *testing.T) {
	tests := map[string]struct {
		hour     int
		expected string
	}{
		"late night":    {hour: 0, expected: "Saturday (Late Night shift) January 08, 2022"},
		"early morning": {hour: 4, expected: "Saturday (Early Morning shift) January 08, 2022"},
		"morning":       {hour: 11, expected: "Saturday (Morning shift) January 08, 2022"},
		"noon":          {hour: 12, expected: "Saturday (Noon shift) January 08, 2022"},
		"evening":       {hour: 18, expected: "Saturday (Evening shift) January 08, 2022"},
		"night":         {hour: 23, expected: "Saturday (Night shift) January 08, 2022"},
		"next day":      {hour: 31, expected: "Sunday (Early Morning shift) January 09, 2022"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, coverage.ShiftName(at(tc.hour)))
		})
	}
}
