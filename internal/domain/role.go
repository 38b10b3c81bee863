package domain

import "fmt"

// Role 是值班人员在一次 offer 中担任的角色，只允许下列取值
type Role string

const (
	RoleCrewChief  Role = "crew_chief"
	RoleEMT        Role = "emt"
	RoleEMTUnder18 Role = "emt_under_18"
	RoleDriver     Role = "driver"
	RoleAssistant  Role = "assistant"
	RoleSupervisor Role = "supervisor"
)

var roleAbbreviations = map[Role]string{
	RoleCrewChief:  "CC",
	RoleEMT:        "EMT > 18",
	RoleEMTUnder18: "EMT < 18",
	RoleDriver:     "Driver",
	RoleAssistant:  "Assistant",
	RoleSupervisor: "Supervisor",
}

var roleDescriptions = map[Role]string{
	RoleCrewChief:  "Crew Chief",
	RoleEMT:        "EMT over 18",
	RoleEMTUnder18: "EMT under 18",
	RoleDriver:     "Driver",
	RoleAssistant:  "Assistant",
	RoleSupervisor: "Station Supervisor",
}

func (r Role) Valid() bool {
	_, ok := roleAbbreviations[r]
	return ok
}

func (r Role) Abbreviation() string {
	return roleAbbreviations[r]
}

func (r Role) Description() string {
	return roleDescriptions[r]
}

func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", fmt.Errorf("未知的角色 %q", s)
	}
	return role, nil
}

// Policy 决定一个 RequiredWindow 使用哪一套人员配置规则
type Policy string

const (
	PolicyStandardCrew Policy = "standard_crew"
	PolicySupervisor   Policy = "supervisor"
)

func (p Policy) Valid() bool {
	return p == PolicyStandardCrew || p == PolicySupervisor
}

func ParsePolicy(s string) (Policy, error) {
	policy := Policy(s)
	if !policy.Valid() {
		return "", fmt.Errorf("未知的排班规则 %q", s)
	}
	return policy, nil
}

// Category 是某个小时缺失的岗位类别
type Category string

const (
	CategoryCrewChief   Category = "Crew Chief"
	CategoryDriverOrEMT Category = "Driver or EMT over 18"
	CategorySupervisor  Category = "Missing supervisor coverage"
)

// DefaultSeverityOrder 缺口报告的严重程度顺序，越靠前越严重
var DefaultSeverityOrder = []Category{
	CategoryCrewChief,
	CategoryDriverOrEMT,
	CategorySupervisor,
}
