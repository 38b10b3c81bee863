package checkrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/coverage"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/mailer"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/notification"
)

// 获取 offer 时向前后多取一段时间，跨越查询边界的 offer 也能参与计算
const (
	offerLookbehindDays = 1
	offerLookaheadDays  = 2
)

type WindowSource interface {
	RequiredWindows(ctx context.Context, subcalendar string, policy domain.Policy, start time.Time, end time.Time) ([]domain.RequiredWindow, []error, error)
	OfferedWindows(ctx context.Context, subcalendar string, start time.Time, end time.Time) ([]domain.OfferedWindow, []error, error)
}

type Contacts interface {
	Learn(ctx context.Context, offers []domain.OfferedWindow) error
	Addresses(ctx context.Context, names []string) ([]string, []string, error)
}

type Runner struct {
	profile   *config.AgencyProfile
	calendars []config.ResolvedCalendar
	source    WindowSource
	contacts  Contacts
	store     notification.Store
	engine    *notification.Engine
	publisher mailer.Publisher
	loc       *time.Location
	live      bool
	runID     string
	now       func() time.Time
}

type Option func(*Runner)

// WithLive 打开之后才会查询去重记录并真正发送邮件
func WithLive(live bool) Option {
	return func(r *Runner) {
		r.live = live
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

func WithRunID(runID string) Option {
	return func(r *Runner) {
		r.runID = runID
	}
}

func NewRunner(
	profile *config.AgencyProfile,
	source WindowSource,
	contacts Contacts,
	store notification.Store,
	publisher mailer.Publisher,
	loc *time.Location,
	opts ...Option,
) (*Runner, error) {
	if contacts == nil {
		return nil, errors.New("没有提供联系方式查询")
	}

	calendars, err := profile.ResolvedCalendars()
	if err != nil {
		return nil, err
	}

	r := &Runner{
		profile:   profile,
		calendars: calendars,
		source:    source,
		contacts:  contacts,
		store:     store,
		publisher: publisher,
		loc:       loc,
		runID:     uuid.NewString(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.engine = notification.NewEngine(
		profile.Agency,
		store,
		notification.WithClock(r.now),
		notification.WithRunID(r.runID),
	)

	return r, nil
}

func (r *Runner) RunID() string {
	return r.runID
}

func (r *Runner) Calendars() []config.ResolvedCalendar {
	return r.calendars
}

// CalendarResult 一个日历在一次检查中的全部结果
type CalendarResult struct {
	Calendar   config.ResolvedCalendar  `json:"calendar"`
	Reports    []*coverage.WindowReport `json:"reports"`
	Summary    coverage.RunSummary      `json:"summary"`
	FeedErrors []string                 `json:"feedErrors"`
}

// Result 一次完整检查的统计
type Result struct {
	RunID      string            `json:"runID"`
	Live       bool              `json:"live"`
	Calendars  []*CalendarResult `json:"calendars"`
	Sent       int               `json:"sent"`
	Suppressed int               `json:"suppressed"`
	Failures   int               `json:"failures"`
}

// Evaluate 拉取一个日历在 [start, end] 内的数据并计算覆盖情况，不发送任何通知
func (r *Runner) Evaluate(ctx context.Context, cal config.ResolvedCalendar, start time.Time, end time.Time) (*CalendarResult, error) {
	result := &CalendarResult{
		Calendar:   cal,
		FeedErrors: make([]string, 0),
	}

	required, requiredErrs, err := r.source.RequiredWindows(ctx, cal.Required, cal.Policy, start, end)
	if err != nil {
		return nil, fmt.Errorf("无法获取日历 %s 的班次: %w", cal.Name, err)
	}
	required = coverage.SkipStartedBefore(required, start)

	offers, offerErrs, err := r.source.OfferedWindows(ctx, cal.Offered, start.AddDate(0, 0, -offerLookbehindDays), end.AddDate(0, 0, offerLookaheadDays))
	if err != nil {
		return nil, fmt.Errorf("无法获取日历 %s 的值班申请: %w", cal.Name, err)
	}

	for _, feedErr := range slices.Concat(requiredErrs, offerErrs) {
		slog.Error("日历数据异常", "calendar", cal.Name, "error", feedErr)
		result.FeedErrors = append(result.FeedErrors, feedErr.Error())
	}

	if err := r.contacts.Learn(ctx, offers); err != nil {
		slog.Warn("无法从备注中更新联系方式", "calendar", cal.Name, "error", err)
	}

	checker := coverage.New(r.profile.CoverageRules(), r.profile.Severity(), offers)
	result.Reports, result.Summary = checker.Check(required)

	return result, nil
}

// Run 检查所有日历；live 模式下为人员齐全的班次发送班次通知，并把有问题的班次汇总成一封当天的错误通知
func (r *Runner) Run(ctx context.Context, start time.Time, end time.Time) (*Result, error) {
	result := &Result{
		RunID:     r.runID,
		Live:      r.live,
		Calendars: make([]*CalendarResult, 0, len(r.calendars)),
	}

	now := r.now().In(r.loc)
	notifyBefore := now.AddDate(0, 0, r.profile.NotifyShiftWithinDays)
	problems := make(map[domain.ReportType][]domain.MailErrorWindow)
	reportTypes := make([]domain.ReportType, 0)

	for _, cal := range r.calendars {
		calResult, err := r.Evaluate(ctx, cal, start, end)
		if err != nil {
			return nil, err
		}
		result.Calendars = append(result.Calendars, calResult)
		record(cal, calResult)

		if !slices.Contains(reportTypes, cal.ReportType) {
			reportTypes = append(reportTypes, cal.ReportType)
		}

		for _, feedErr := range calResult.FeedErrors {
			problems[cal.ReportType] = append(problems[cal.ReportType], domain.MailErrorWindow{
				ShiftName: cal.Name,
				Gaps:      make([]domain.MailGap, 0),
				Warnings:  make([]string, 0),
				Exception: feedErr,
			})
		}

		for _, report := range calResult.Reports {
			if report.Failed() || report.Understaffed() {
				problems[cal.ReportType] = append(problems[cal.ReportType], errorWindow(report, r.loc))
				continue
			}
			if !cal.Notify || !report.Window.Start.Before(notifyBefore) {
				continue
			}
			r.tally(result, r.notifyShift(ctx, cal, report))
		}
	}

	for _, reportType := range reportTypes {
		windows := problems[reportType]
		if len(windows) == 0 {
			continue
		}
		r.tally(result, r.notifyErrors(ctx, reportType, now, windows))
	}

	metrics.LastRunTimestamp.SetToCurrentTime()
	slog.Info(
		"覆盖检查完成",
		"runID", r.runID,
		"live", r.live,
		"sent", result.Sent,
		"suppressed", result.Suppressed,
		"failures", result.Failures,
	)

	return result, nil
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeSent
	outcomeSuppressed
	outcomeFailed
)

func (r *Runner) tally(result *Result, o outcome) {
	switch o {
	case outcomeSent:
		result.Sent++
	case outcomeSuppressed:
		result.Suppressed++
	case outcomeFailed:
		result.Failures++
	}
}

func (r *Runner) notifyShift(ctx context.Context, cal config.ResolvedCalendar, report *coverage.WindowReport) outcome {
	start := report.Window.Start.In(r.loc)
	shiftName := coverage.ShiftName(start)
	people := report.Summary.People()

	addresses, missing, err := r.contacts.Addresses(ctx, people)
	if err != nil {
		slog.Error("无法获取值班人员的联系方式", "shift", shiftName, "error", err)
		return outcomeFailed
	}

	if len(missing) > 0 {
		slog.Warn("部分值班人员没有联系方式", "shift", shiftName, "members", missing)
		message := domain.MailMessage{
			Type:    domain.MailTypeMissingContact,
			To:      r.profile.AdminEmails,
			Subject: fmt.Sprintf("Missing contact information for %s", shiftName),
			Data: domain.MissingContactMailData{
				ShiftName: shiftName,
				Start:     start.Format(time.DateTime),
				Members:   missing,
			},
		}
		n := notification.Notification{
			Category:   domain.NotificationError,
			ReportType: cal.ReportType,
			ContextKey: fmt.Sprintf("%s-missing-%s", domain.ErrorContextKey(r.now().In(r.loc)), domain.ShiftContextKey(start)),
			Recipients: r.profile.AdminEmails,
		}
		return r.deliver(ctx, n, message)
	}

	digest, err := notification.Digest(report.Summary)
	if err != nil {
		slog.Error("无法计算通知摘要", "shift", shiftName, "error", err)
		return outcomeFailed
	}

	message := domain.MailMessage{
		Type:    domain.MailTypeShiftReport,
		To:      addresses,
		Subject: fmt.Sprintf("Shift report for %s", shiftName),
		Data:    shiftReport(report, shiftName, r.loc),
	}
	n := notification.Notification{
		Category:      domain.NotificationShift,
		ReportType:    cal.ReportType,
		ContextKey:    domain.ShiftContextKey(start),
		Recipients:    addresses,
		ContentDigest: digest,
	}
	return r.deliver(ctx, n, message)
}

func (r *Runner) notifyErrors(ctx context.Context, reportType domain.ReportType, now time.Time, windows []domain.MailErrorWindow) outcome {
	recipients := r.profile.ShiftErrorRecipients
	if len(recipients) == 0 {
		slog.Warn("没有配置错误通知的收件人", "reportType", reportType, "windows", len(windows))
		return outcomeSkipped
	}

	message := domain.MailMessage{
		Type:    domain.MailTypeErrorReport,
		To:      recipients,
		Subject: fmt.Sprintf("%s coverage problems (%s)", r.profile.Agency, reportType),
		Data: domain.ErrorReportMailData{
			Date:    now.Format(time.DateOnly),
			Windows: windows,
		},
	}
	n := notification.Notification{
		Category:   domain.NotificationError,
		ReportType: reportType,
		ContextKey: domain.ErrorContextKey(now),
		Recipients: recipients,
	}
	return r.deliver(ctx, n, message)
}

// deliver 经过去重之后把邮件放入队列，dry run 时只打印日志
func (r *Runner) deliver(ctx context.Context, n notification.Notification, message domain.MailMessage) outcome {
	category := string(n.Category)

	if !r.live {
		slog.Info("dry run，不发送通知", "key", r.engine.Key(n).String(), "to", message.To, "subject", message.Subject)
		return outcomeSkipped
	}

	send, err := r.engine.ShouldSend(ctx, n)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			slog.Error("通知记录存储不可用，本次不发送", "key", r.engine.Key(n).String(), "error", err)
		} else {
			slog.Error("无法判断是否需要发送通知", "key", r.engine.Key(n).String(), "error", err)
		}
		metrics.NotificationDecisions.WithLabelValues(category, "failed").Inc()
		return outcomeFailed
	}
	if !send {
		slog.Info("通知内容没有变化，不再发送", "key", r.engine.Key(n).String())
		metrics.NotificationDecisions.WithLabelValues(category, "suppressed").Inc()
		return outcomeSuppressed
	}

	// 没有成功放入队列的通知不留记录，下次运行会重新发送
	if err := r.publisher.Publish(ctx, message); err != nil {
		slog.Error("无法将邮件放入消息队列", "key", r.engine.Key(n).String(), "error", err)
		metrics.NotificationDecisions.WithLabelValues(category, "failed").Inc()
		return outcomeFailed
	}

	if err := r.engine.Record(ctx, n); err != nil {
		slog.Error("邮件已放入队列，但无法保存发送记录，下次运行可能重复发送", "key", r.engine.Key(n).String(), "error", err)
		metrics.NotificationDecisions.WithLabelValues(category, "failed").Inc()
		return outcomeFailed
	}

	slog.Info("已发送通知", "key", r.engine.Key(n).String(), "to", message.To)
	metrics.NotificationDecisions.WithLabelValues(category, "sent").Inc()
	return outcomeSent
}

func record(cal config.ResolvedCalendar, result *CalendarResult) {
	reportType := string(cal.ReportType)
	metrics.WindowsChecked.WithLabelValues(reportType).Add(float64(result.Summary.Windows))
	metrics.WindowsUnderstaffed.WithLabelValues(reportType).Add(float64(result.Summary.Understaffed))
	metrics.DataExceptions.WithLabelValues(reportType).Add(float64(result.Summary.DataExceptions))
	metrics.FeedErrors.WithLabelValues(reportType).Add(float64(len(result.FeedErrors)))

	for _, report := range result.Reports {
		for _, gap := range report.Gaps {
			metrics.GapHours.WithLabelValues(string(gap.Category)).Add(float64(gap.Hours))
		}
	}

	slog.Info(
		"日历检查结果",
		"calendar", cal.Name,
		"windows", result.Summary.Windows,
		"understaffed", result.Summary.Understaffed,
		"withWarnings", result.Summary.WithWarnings,
		"dataExceptions", result.Summary.DataExceptions,
		"feedErrors", len(result.FeedErrors),
	)
}
