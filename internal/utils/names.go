package utils

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
)

// MemberSlug 把成员姓名转换为小写、以 "-" 连接的标识，汉字转换为不带声调的拼音
func MemberSlug(name string) string {
	parts := make([]string, 0)
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			parts = append(parts, strings.ToLower(word.String()))
			word.Reset()
		}
	}

	for _, r := range name {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			parts = append(parts, pinyin.LazyConvert(string(r), nil)...)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	return strings.Join(parts, "-")
}
