// Package metrics 定义覆盖检查相关的 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry 是本服务自己的指标注册表
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// WindowsChecked 按报告类型统计检查过的班次数
var WindowsChecked = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coverage",
	Name:      "windows_checked_total",
	Help:      "Number of required windows evaluated",
}, []string{"report_type"})

// WindowsUnderstaffed 存在缺口的班次数
var WindowsUnderstaffed = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coverage",
	Name:      "windows_understaffed_total",
	Help:      "Number of required windows with at least one gap range",
}, []string{"report_type"})

var GapHours = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coverage",
	Name:      "gap_hours_total",
	Help:      "Understaffed hours by missing category",
}, []string{"category"})

var DataExceptions = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coverage",
	Name:      "data_exceptions_total",
	Help:      "Records rejected because they lack a valid role or policy classification",
}, []string{"report_type"})

// FeedErrors 日历中无法转换的事件数，与班次的数据异常分开统计
var FeedErrors = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coverage",
	Name:      "feed_errors_total",
	Help:      "Calendar events that could not be converted into windows",
}, []string{"report_type"})

// NotificationDecisions 按类别和结果 (sent, suppressed, failed) 统计
var NotificationDecisions = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coverage",
	Name:      "notification_decisions_total",
	Help:      "Notification dedup decisions by category and outcome",
}, []string{"category", "outcome"})

var LastRunTimestamp = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "coverage",
	Name:      "last_run_timestamp_seconds",
	Help:      "Unix time of the last completed coverage check run",
})

// MailsHandled mail worker 处理邮件的结果 (sent, dropped, requeued)
var MailsHandled = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coverage",
	Name:      "mails_handled_total",
	Help:      "Mail queue messages handled by the worker by type and outcome",
}, []string{"type", "outcome"})
