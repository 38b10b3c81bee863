package domain

const (
	MailTypeShiftReport    = "shift_report"
	MailTypeErrorReport    = "error_report"
	MailTypeMissingContact = "missing_contact"
)

type MailMessage struct {
	Type    string   `json:"type"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Data    any      `json:"data"`
}

type ShiftReportMailData struct {
	ShiftName string            `json:"shiftName"`
	Start     string            `json:"start"`
	End       string            `json:"end"`
	Spans     []MailSpan        `json:"spans"`
	Summary   PersonHourSummary `json:"summary"`
}

type MailSpan struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	Hours int      `json:"hours"`
	Crew  []string `json:"crew"`
}

type ErrorReportMailData struct {
	Date    string            `json:"date"`
	Windows []MailErrorWindow `json:"windows"`
}

type MailErrorWindow struct {
	ShiftName string    `json:"shiftName"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	Gaps      []MailGap `json:"gaps"`
	Warnings  []string  `json:"warnings"`
	Exception string    `json:"exception,omitempty"`
}

type MailGap struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Hours    int    `json:"hours"`
	Category string `json:"category"`
}

type MissingContactMailData struct {
	ShiftName string   `json:"shiftName"`
	Start     string   `json:"start"`
	Members   []string `json:"members"`
}
