package utils

import (
	"fmt"
	"math/rand"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateRandomMember 生成一个用于测试的成员，邮箱由姓名拼音加随机数字组成
func GenerateRandomMember(agency string, emailDomain string) *domain.Member {
	name := GenerateRandomChineseName()
	slug := MemberSlug(name)

	suffix := ""
	for i := 0; i < rand.Intn(3)+1; i++ {
		suffix += string(digits[rand.Intn(len(digits))])
	}

	return &domain.Member{
		Agency:       agency,
		Name:         name,
		Slug:         slug,
		EmailAddress: fmt.Sprintf("%s%s@%s", slug, suffix, emailDomain),
	}
}
