package coverage

import (
	"log/slog"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

type Checker struct {
	rules         Rules
	severityOrder []domain.Category
	offers        []domain.OfferedWindow
	offersByHour  map[domain.HourSlot][]domain.OfferedWindow // {hour: [offer1, offer2, ...]}
}

type WindowReport struct {
	Window   domain.RequiredWindow    `json:"window"`
	Gaps     []domain.GapRange        `json:"gaps"`
	Warnings []domain.HourWarning     `json:"warnings"`
	Spans    []domain.CollapsedSpan   `json:"spans"`
	Summary  domain.PersonHourSummary `json:"summary"`
	Err      error                    `json:"-"`
}

func (r *WindowReport) Understaffed() bool {
	return len(r.Gaps) > 0
}

func (r *WindowReport) Failed() bool {
	return r.Err != nil
}

// RunSummary 一次检查中各类结果的计数
type RunSummary struct {
	Windows        int `json:"windows"`
	Understaffed   int `json:"understaffed"`
	WithWarnings   int `json:"withWarnings"`
	DataExceptions int `json:"dataExceptions"`
}

func New(rules Rules, severityOrder []domain.Category, offers []domain.OfferedWindow) *Checker {
	if len(severityOrder) == 0 {
		severityOrder = domain.DefaultSeverityOrder
	}

	return &Checker{
		rules:         rules,
		severityOrder: severityOrder,
		offers:        offers,
		offersByHour:  ExpandOffers(offers),
	}
}

// CheckWindow 检查单个 RequiredWindow，遇到数据异常时立即返回
func (c *Checker) CheckWindow(w domain.RequiredWindow) (*WindowReport, error) {
	report := &WindowReport{
		Window:   w,
		Gaps:     make([]domain.GapRange, 0),
		Warnings: make([]domain.HourWarning, 0),
		Spans:    make([]domain.CollapsedSpan, 0),
		Summary:  make(domain.PersonHourSummary),
	}

	if err := w.Validate(); err != nil {
		return report, &domain.DataException{Record: w, Reason: err.Error()}
	}
	if !w.Policy.Valid() {
		return report, &domain.DataException{Record: w, Reason: "required window 没有合法的排班规则"}
	}

	// 不足一小时的 offer 不会展开到任何小时上，角色异常需要单独检查
	for _, offer := range c.offers {
		if !offer.Role.Valid() && w.Overlap(offer.TimeWindow) > 0 {
			return report, &domain.DataException{Record: offer, Reason: "offer 的角色不在已知角色列表中"}
		}
	}

	loc := w.Start.Location()
	missing := make(map[domain.HourSlot][]domain.Category)
	crews := make(map[domain.HourSlot][]domain.OfferedWindow)

	for _, slot := range ExpandHours(w.TimeWindow) {
		active := c.offersByHour[slot]

		roles := make([]domain.Role, 0, len(active))
		for _, offer := range active {
			roles = append(roles, offer.Role)
		}

		verdict, err := c.rules.Evaluate(w.Policy, roles)
		if err != nil {
			return report, err
		}

		if len(verdict.Missing) > 0 {
			missing[slot] = verdict.Missing
		}
		if len(verdict.Warnings) > 0 {
			report.Warnings = append(report.Warnings, domain.HourWarning{Hour: slot.Time(loc), Warnings: verdict.Warnings})
		}
		if len(active) > 0 {
			crews[slot] = active
		}
	}

	report.Gaps = ConsolidateGaps(missing, c.severityOrder, loc)
	report.Spans = CollapseCrew(crews, loc)

	overlapping := make([]domain.OfferedWindow, 0)
	for _, offer := range c.offers {
		if w.Overlap(offer.TimeWindow) > 0 {
			overlapping = append(overlapping, offer)
		}
	}
	report.Summary = SummarizeHours(w.TimeWindow, overlapping)

	return report, nil
}

// Check 逐个检查所有 RequiredWindow。某个 window 的数据异常只记录在它自己的报告里，不影响其它 window。
func (c *Checker) Check(windows []domain.RequiredWindow) ([]*WindowReport, RunSummary) {
	reports := make([]*WindowReport, 0, len(windows))
	summary := RunSummary{}

	for _, w := range windows {
		report, err := c.CheckWindow(w)
		summary.Windows++
		if err != nil {
			slog.Error("检查班次时出现数据异常", "window", w.ID, "start", w.Start, "error", err)
			report.Err = err
			summary.DataExceptions++
			reports = append(reports, report)
			continue
		}

		if report.Understaffed() {
			summary.Understaffed++
		}
		if len(report.Warnings) > 0 {
			summary.WithWarnings++
		}
		reports = append(reports, report)
	}

	return reports, summary
}

// SkipStartedBefore 过滤掉开始时间早于 from 的班次，数据源可能会返回查询范围之外的记录
func SkipStartedBefore(windows []domain.RequiredWindow, from time.Time) []domain.RequiredWindow {
	kept := make([]domain.RequiredWindow, 0, len(windows))
	for _, w := range windows {
		if w.Start.Before(from) {
			slog.Info("跳过已经开始的班次", "window", w.ID, "start", w.Start)
			continue
		}
		kept = append(kept, w)
	}

	slices.SortStableFunc(kept, func(a, b domain.RequiredWindow) int {
		return a.Start.Compare(b.Start)
	})

	return kept
}
