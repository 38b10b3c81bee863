package main

import (
	"log/slog"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/config"
)

type ValidateCmd struct{}

func (c *ValidateCmd) Run(app *Context) error {
	profile, err := config.LoadAgencyProfile(app.Profile)
	if err != nil {
		return err
	}

	calendars, err := profile.ResolvedCalendars()
	if err != nil {
		return err
	}

	rules := profile.CoverageRules()
	slog.Info(
		"机构配置有效",
		"agency", profile.Agency,
		"calendars", len(calendars),
		"maxCrewSize", rules.MaxCrewSize,
		"multipleCrewChiefsCoverDriver", rules.MultipleCrewChiefsCoverDriver,
		"severityOrder", profile.Severity(),
	)
	for _, cal := range calendars {
		slog.Info("日历", "name", cal.Name, "policy", cal.Policy, "reportType", cal.ReportType, "notify", cal.Notify)
	}
	return nil
}
