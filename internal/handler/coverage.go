package handler

import (
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/checkrun"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/coverage"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/utils"
)

// 报告接口允许查询的最大天数
const maxReportDays = 31

type windowRequest struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required,gtfield=Start"`
}

type offerRequest struct {
	ID     string    `json:"id"`
	Person string    `json:"person" validate:"required"`
	Role   string    `json:"role" validate:"required"`
	Notes  string    `json:"notes"`
	Start  time.Time `json:"start" validate:"required"`
	End    time.Time `json:"end" validate:"required,gtfield=Start"`
}

type windowReportResponse struct {
	*coverage.WindowReport
	ShiftName string `json:"shiftName"`
	Exception string `json:"exception,omitempty"`
}

type calendarReportResponse struct {
	Name       string                 `json:"name"`
	Policy     domain.Policy          `json:"policy"`
	ReportType domain.ReportType      `json:"reportType"`
	Reports    []windowReportResponse `json:"reports"`
	Summary    coverage.RunSummary    `json:"summary"`
	FeedErrors []string               `json:"feedErrors"`
}

// CheckCoverage 对请求中给出的班次和 offer 直接进行检查，不访问日历
func (h *Handler) CheckCoverage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Policy   string          `json:"policy" validate:"required,oneof=standard_crew supervisor"`
		Required []windowRequest `json:"required" validate:"required,min=1,dive"`
		Offered  []offerRequest  `json:"offered" validate:"dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	policy := domain.Policy(req.Policy)
	required := make([]domain.RequiredWindow, 0, len(req.Required))
	for _, rw := range req.Required {
		required = append(required, domain.RequiredWindow{
			ID:     rw.ID,
			Title:  rw.Title,
			Policy: policy,
			TimeWindow: domain.TimeWindow{
				Start: rw.Start.In(h.location),
				End:   rw.End.In(h.location),
			},
		})
	}

	roles := h.profile.Roles()
	offers := make([]domain.OfferedWindow, 0, len(req.Offered))
	for _, o := range req.Offered {
		// 无法识别的角色原样保留，由检查逻辑把对应班次标记为数据异常
		role, ok := roles[o.Role]
		if !ok {
			role = domain.Role(o.Role)
		}
		offers = append(offers, domain.OfferedWindow{
			ID:     o.ID,
			Person: o.Person,
			Role:   role,
			Notes:  o.Notes,
			TimeWindow: domain.TimeWindow{
				Start: o.Start.In(h.location),
				End:   o.End.In(h.location),
			},
		})
	}

	if err := utils.ValidateRequiredWindows(required); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateOfferedWindows(offers); err != nil {
		h.badRequest(w, r, err)
		return
	}

	checker := coverage.New(h.profile.CoverageRules(), h.profile.Severity(), offers)
	reports, summary := checker.Check(required)

	h.successResponse(w, r, "检查完成", map[string]any{
		"reports": h.windowReports(reports),
		"summary": summary,
	})
}

// GetCoverageReport 从日历拉取 [start, end) 内的数据并返回每个日历的检查结果，不发送通知
func (h *Handler) GetCoverageReport(w http.ResponseWriter, r *http.Request) {
	now := time.Now().In(h.location)
	start, err := h.readTimeParam(r, "start", now)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	end, err := h.readTimeParam(r, "end", start.AddDate(0, 0, h.config.Check.DaysAhead))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateSearchRange(start, end, maxReportDays); err != nil {
		h.badRequest(w, r, err)
		return
	}

	calendars := make([]calendarReportResponse, 0)
	for _, cal := range h.runner.Calendars() {
		result, err := h.runner.Evaluate(r.Context(), cal, start, end)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		calendars = append(calendars, h.calendarReport(result))
	}

	h.successResponse(w, r, "获取覆盖报告成功", calendars)
}

func (h *Handler) calendarReport(result *checkrun.CalendarResult) calendarReportResponse {
	return calendarReportResponse{
		Name:       result.Calendar.Name,
		Policy:     result.Calendar.Policy,
		ReportType: result.Calendar.ReportType,
		Reports:    h.windowReports(result.Reports),
		Summary:    result.Summary,
		FeedErrors: result.FeedErrors,
	}
}

func (h *Handler) windowReports(reports []*coverage.WindowReport) []windowReportResponse {
	resp := make([]windowReportResponse, 0, len(reports))
	for _, report := range reports {
		item := windowReportResponse{
			WindowReport: report,
			ShiftName:    coverage.ShiftName(report.Window.Start.In(h.location)),
		}
		if report.Err != nil {
			item.Exception = report.Err.Error()
		}
		resp = append(resp, item)
	}
	return resp
}
