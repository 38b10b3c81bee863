package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/coverage"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

// AgencyProfile 是某个机构的完整检查配置，在进入核心逻辑之前一次性解析完成
type AgencyProfile struct {
	Agency                string            `yaml:"agency"`
	NotifyShiftWithinDays int               `yaml:"notify_shift_within_days"`
	AdminEmails           []string          `yaml:"admin_emails"`
	ShiftErrorRecipients  []string          `yaml:"shift_error_recipients"`
	LevelMappings         map[string]string `yaml:"level_mappings"`
	SeverityOrder         []string          `yaml:"severity_order"`
	Rules                 RulesProfile      `yaml:"rules"`
	Calendars             []CalendarProfile `yaml:"calendars"`
}

type RulesProfile struct {
	MaxCrewSize                   int   `yaml:"max_crew_size"`
	MultipleCrewChiefsCoverDriver *bool `yaml:"multiple_crew_chiefs_cover_driver"`
}

// CalendarProfile 一组 required/offered 子日历，以及适用的规则
type CalendarProfile struct {
	Name       string `yaml:"name"`
	Policy     string `yaml:"policy"`
	ReportType string `yaml:"report_type"`
	Required   string `yaml:"required_subcalendar"`
	Offered    string `yaml:"offered_subcalendar"`
	Notify     bool   `yaml:"notify"`
}

// ResolvedCalendar 是已经校验过的 CalendarProfile
type ResolvedCalendar struct {
	Name       string
	Policy     domain.Policy
	ReportType domain.ReportType
	Required   string
	Offered    string
	Notify     bool
}

func LoadAgencyProfile(path string) (*AgencyProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取机构配置文件 %s: %w", path, err)
	}

	return ParseAgencyProfile(data)
}

func ParseAgencyProfile(data []byte) (*AgencyProfile, error) {
	profile := &AgencyProfile{}
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("无法解析机构配置文件: %w", err)
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return profile, nil
}

func (p *AgencyProfile) Validate() error {
	if p.Agency == "" {
		return fmt.Errorf("机构配置缺少 agency")
	}
	if len(p.Calendars) == 0 {
		return fmt.Errorf("机构 %s 没有配置任何日历", p.Agency)
	}
	for label, role := range p.LevelMappings {
		if _, err := domain.ParseRole(role); err != nil {
			return fmt.Errorf("level_mappings 中 %q 的映射错误: %w", label, err)
		}
	}
	for _, category := range p.SeverityOrder {
		if category == "" {
			return fmt.Errorf("severity_order 中存在空的类别")
		}
	}
	if _, err := p.ResolvedCalendars(); err != nil {
		return err
	}
	return nil
}

// Roles 返回日历中的 coverage level 到角色的映射
func (p *AgencyProfile) Roles() map[string]domain.Role {
	roles := make(map[string]domain.Role, len(p.LevelMappings))
	for label, role := range p.LevelMappings {
		roles[label] = domain.Role(role)
	}
	return roles
}

func (p *AgencyProfile) CoverageRules() coverage.Rules {
	rules := coverage.DefaultRules()
	if p.Rules.MaxCrewSize > 0 {
		rules.MaxCrewSize = p.Rules.MaxCrewSize
	}
	if p.Rules.MultipleCrewChiefsCoverDriver != nil {
		rules.MultipleCrewChiefsCoverDriver = *p.Rules.MultipleCrewChiefsCoverDriver
	}
	return rules
}

func (p *AgencyProfile) Severity() []domain.Category {
	if len(p.SeverityOrder) == 0 {
		return domain.DefaultSeverityOrder
	}
	order := make([]domain.Category, 0, len(p.SeverityOrder))
	for _, category := range p.SeverityOrder {
		order = append(order, domain.Category(category))
	}
	return order
}

func (p *AgencyProfile) ResolvedCalendars() ([]ResolvedCalendar, error) {
	calendars := make([]ResolvedCalendar, 0, len(p.Calendars))
	for _, c := range p.Calendars {
		policy, err := domain.ParsePolicy(c.Policy)
		if err != nil {
			return nil, fmt.Errorf("日历 %s 的配置错误: %w", c.Name, err)
		}
		if c.Required == "" || c.Offered == "" {
			return nil, fmt.Errorf("日历 %s 缺少 required_subcalendar 或 offered_subcalendar", c.Name)
		}
		reportType := domain.ReportType(c.ReportType)
		if reportType == "" {
			reportType = domain.ReportTypeDuty
		}
		calendars = append(calendars, ResolvedCalendar{
			Name:       c.Name,
			Policy:     policy,
			ReportType: reportType,
			Required:   c.Required,
			Offered:    c.Offered,
			Notify:     c.Notify,
		})
	}
	return calendars, nil
}
