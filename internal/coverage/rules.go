package coverage

import (
	"fmt"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

const (
	WarningMultipleCrewChiefs = "Warning: more than one CC"
	WarningTooManySupervisors = "Too many supervisors"
	warningCrewTooLargeFormat = "Crew too large - %d maximum"
	DefaultMaxCrewSize        = 5
)

// Rules 是已经解析好的人员配置规则
type Rules struct {
	// 一个班次最多允许的人数，超过只产生警告
	MaxCrewSize int
	// 为 true 时，同一小时内有两名以上 crew chief 也可以满足 driver/EMT 的要求
	MultipleCrewChiefsCoverDriver bool
}

func DefaultRules() Rules {
	return Rules{
		MaxCrewSize:                   DefaultMaxCrewSize,
		MultipleCrewChiefsCoverDriver: true,
	}
}

// Evaluate 根据 policy 检查某一个小时内的 offer 角色，返回缺失的岗位类别和警告
func (r Rules) Evaluate(policy domain.Policy, roles []domain.Role) (domain.HourlyVerdict, error) {
	tally := make(map[domain.Role]int)
	for _, role := range roles {
		if !role.Valid() {
			return domain.HourlyVerdict{}, &domain.DataException{Record: role, Reason: "offer 的角色不在已知角色列表中"}
		}
		tally[role]++
	}

	switch policy {
	case domain.PolicyStandardCrew:
		return r.evaluateStandardCrew(tally, len(roles)), nil
	case domain.PolicySupervisor:
		return r.evaluateSupervisor(tally), nil
	default:
		return domain.HourlyVerdict{}, &domain.DataException{Record: policy, Reason: "未知的排班规则"}
	}
}

func (r Rules) evaluateStandardCrew(tally map[domain.Role]int, headcount int) domain.HourlyVerdict {
	verdict := domain.HourlyVerdict{
		Missing:  make([]domain.Category, 0),
		Warnings: make([]string, 0),
	}

	if headcount > r.MaxCrewSize {
		verdict.Warnings = append(verdict.Warnings, fmt.Sprintf(warningCrewTooLargeFormat, r.MaxCrewSize))
	}

	crewChiefs := tally[domain.RoleCrewChief]
	if crewChiefs == 0 {
		verdict.Missing = append(verdict.Missing, domain.CategoryCrewChief)
	} else if crewChiefs > 1 {
		verdict.Warnings = append(verdict.Warnings, WarningMultipleCrewChiefs)
	}

	hasDriverOrEMT := tally[domain.RoleDriver] > 0 || tally[domain.RoleEMT] > 0
	if !hasDriverOrEMT && !(r.MultipleCrewChiefsCoverDriver && crewChiefs > 1) {
		verdict.Missing = append(verdict.Missing, domain.CategoryDriverOrEMT)
	}

	return verdict
}

func (r Rules) evaluateSupervisor(tally map[domain.Role]int) domain.HourlyVerdict {
	verdict := domain.HourlyVerdict{
		Missing:  make([]domain.Category, 0),
		Warnings: make([]string, 0),
	}

	switch supervisors := tally[domain.RoleSupervisor]; {
	case supervisors == 0:
		verdict.Missing = append(verdict.Missing, domain.CategorySupervisor)
	case supervisors > 1:
		verdict.Warnings = append(verdict.Warnings, WarningTooManySupervisors)
	}

	return verdict
}
