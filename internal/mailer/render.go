package mailer

import (
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/wneessen/go-mail"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

// 邮件类型对应的模板文件
var mailTemplates = map[string]string{
	domain.MailTypeShiftReport:    "shift_report_email.html",
	domain.MailTypeErrorReport:    "error_report_email.html",
	domain.MailTypeMissingContact: "missing_contact_email.html",
}

type TemplateRenderer struct {
	from        string
	templateDir string
}

func NewTemplateRenderer(from string, templateDir string) *TemplateRenderer {
	return &TemplateRenderer{
		from:        from,
		templateDir: templateDir,
	}
}

func (r *TemplateRenderer) Render(message domain.MailMessage) (*mail.Msg, error) {
	templateName, ok := mailTemplates[message.Type]
	if !ok {
		return nil, fmt.Errorf("不支持的邮件类型 %s", message.Type)
	}
	if len(message.To) == 0 {
		return nil, fmt.Errorf("邮件没有收件人")
	}

	tmpl, err := template.ParseFiles(filepath.Join(r.templateDir, templateName))
	if err != nil {
		return nil, fmt.Errorf("无法解析邮件模板: %w", err)
	}

	m := mail.NewMsg()
	if err := m.From(r.from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := m.To(message.To...); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}
	m.Subject(message.Subject)

	if err := m.SetBodyHTMLTemplate(tmpl, message.Data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}

	return m, nil
}
