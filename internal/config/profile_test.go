package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/coverage"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

const sampleProfile = `
agency: riverside
notify_shift_within_days: 2
admin_emails: [admin@example.com]
shift_error_recipients: [officer@example.com]
level_mappings:
  "Crew Chief": crew_chief
  "EMT over 18": emt
  "Supervisor": supervisor
rules:
  max_crew_size: 6
  multiple_crew_chiefs_cover_driver: false
calendars:
  - name: Duty crew
    policy: standard_crew
    required_subcalendar: "1001"
    offered_subcalendar: "1002"
    notify: true
  - name: Supervisors
    policy: supervisor
    report_type: supervisor
    required_subcalendar: "2001"
    offered_subcalendar: "2002"
`

func TestParseAgencyProfile(t *testing.T) {
	profile, err := config.ParseAgencyProfile([]byte(sampleProfile))
	require.NoError(t, err)

	assert.Equal(t, "riverside", profile.Agency)
	assert.Equal(t, 2, profile.NotifyShiftWithinDays)
	assert.Equal(t, []string{"officer@example.com"}, profile.ShiftErrorRecipients)

	assert.Equal(t, coverage.Rules{MaxCrewSize: 6, MultipleCrewChiefsCoverDriver: false}, profile.CoverageRules())
	assert.Equal(t, domain.DefaultSeverityOrder, profile.Severity())
	assert.Equal(t, domain.RoleEMT, profile.Roles()["EMT over 18"])

	calendars, err := profile.ResolvedCalendars()
	require.NoError(t, err)
	require.Len(t, calendars, 2)
	assert.Equal(t, domain.PolicyStandardCrew, calendars[0].Policy)
	assert.Equal(t, domain.ReportTypeDuty, calendars[0].ReportType)
	assert.True(t, calendars[0].Notify)
	assert.Equal(t, domain.PolicySupervisor, calendars[1].Policy)
	assert.Equal(t, domain.ReportTypeSupervisor, calendars[1].ReportType)
}

func TestCoverageRulesDefaults(t *testing.T) {
	profile := &config.AgencyProfile{}
	assert.Equal(t, coverage.DefaultRules(), profile.CoverageRules())
}

func TestSeverityKeepsLiteralOrder(t *testing.T) {
	profile := &config.AgencyProfile{SeverityOrder: []string{"Missing supervisor coverage", "Crew Chief"}}
	assert.Equal(t, []domain.Category{domain.CategorySupervisor, domain.CategoryCrewChief}, profile.Severity())
}

func TestParseAgencyProfileErrors(t *testing.T) {
	tests := map[string]string{
		"missing agency": `
calendars:
  - {name: a, policy: standard_crew, required_subcalendar: "1", offered_subcalendar: "2"}
`,
		"no calendars": `agency: riverside`,
		"unknown policy": `
agency: riverside
calendars:
  - {name: a, policy: overnight, required_subcalendar: "1", offered_subcalendar: "2"}
`,
		"missing subcalendar": `
agency: riverside
calendars:
  - {name: a, policy: standard_crew, required_subcalendar: "1"}
`,
		"unknown mapped role": `
agency: riverside
level_mappings:
  "Paramedic": paramedic
calendars:
  - {name: a, policy: standard_crew, required_subcalendar: "1", offered_subcalendar: "2"}
`,
		"empty severity category": `
agency: riverside
severity_order: ["Crew Chief", ""]
calendars:
  - {name: a, policy: standard_crew, required_subcalendar: "1", offered_subcalendar: "2"}
`,
		"invalid yaml": `agency: [riverside`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.ParseAgencyProfile([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadAgencyProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleProfile), 0o600))

	profile, err := config.LoadAgencyProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "riverside", profile.Agency)

	_, err = config.LoadAgencyProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
