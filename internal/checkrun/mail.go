package checkrun

import (
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/coverage"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

const mailTimeLayout = "Mon Jan 02 15:04"

func shiftReport(report *coverage.WindowReport, shiftName string, loc *time.Location) domain.ShiftReportMailData {
	spans := make([]domain.MailSpan, 0, len(report.Spans))
	for _, span := range report.Spans {
		spans = append(spans, domain.MailSpan{
			Start: span.Start.In(loc).Format(mailTimeLayout),
			End:   span.End.In(loc).Format(mailTimeLayout),
			Hours: span.Hours,
			Crew:  strings.Split(string(span.Crew), ", "),
		})
	}

	return domain.ShiftReportMailData{
		ShiftName: shiftName,
		Start:     report.Window.Start.In(loc).Format(mailTimeLayout),
		End:       report.Window.End.In(loc).Format(mailTimeLayout),
		Spans:     spans,
		Summary:   report.Summary,
	}
}

func errorWindow(report *coverage.WindowReport, loc *time.Location) domain.MailErrorWindow {
	w := domain.MailErrorWindow{
		ShiftName: coverage.ShiftName(report.Window.Start.In(loc)),
		Start:     report.Window.Start.In(loc).Format(mailTimeLayout),
		End:       report.Window.End.In(loc).Format(mailTimeLayout),
		Gaps:      make([]domain.MailGap, 0, len(report.Gaps)),
		Warnings:  make([]string, 0),
	}

	if report.Err != nil {
		w.Exception = report.Err.Error()
	}

	for _, gap := range report.Gaps {
		w.Gaps = append(w.Gaps, domain.MailGap{
			Start:    gap.Start.In(loc).Format(mailTimeLayout),
			End:      gap.End.In(loc).Format(mailTimeLayout),
			Hours:    gap.Hours,
			Category: string(gap.Category),
		})
	}

	for _, hw := range report.Warnings {
		for _, warning := range hw.Warnings {
			w.Warnings = append(w.Warnings, hw.Hour.In(loc).Format(mailTimeLayout)+": "+warning)
		}
	}

	return w
}
