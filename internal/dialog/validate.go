package dialog

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	mobilePattern   = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	areaWardPattern = regexp.MustCompile(`^([^,]+),\s*(?i:ward)\s+([0-9]+)$`)
)

// ValidMobile принимает ровно 10 цифр, первая из 6-9
func ValidMobile(raw string) bool {
	return mobilePattern.MatchString(strings.TrimSpace(raw))
}

// ParseAreaWard разбирает ввод вида "Ring Road, Ward 5"
func ParseAreaWard(raw string) (area, ward string, ok bool) {
	m := areaWardPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", "", false
	}
	area = strings.TrimSpace(m[1])
	if area == "" {
		return "", "", false
	}
	return area, "Ward " + m[2], true
}

// ParseChoice возвращает номер пункта меню из диапазона [1, max]
func ParseChoice(raw string, max int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n, true
}

type Answer int

const (
	AnswerInvalid Answer = iota
	AnswerYes
	AnswerNo
)

var (
	yesTokens = map[string]bool{"yes": true, "y": true, "ha": true, "haan": true, "हाँ": true, "હા": true}
	noTokens  = map[string]bool{"no": true, "n": true, "nahi": true, "na": true, "नहीं": true, "ના": true}
)

// ParseYesNo ищет утвердительные и отрицательные слова среди токенов ответа.
// Ответ, содержащий и те и другие или ни одного, считается неразборчивым.
func ParseYesNo(raw string) Answer {
	var yes, no bool
	for _, tok := range tokenize(raw) {
		yes = yes || yesTokens[tok]
		no = no || noTokens[tok]
	}
	switch {
	case yes && !no:
		return AnswerYes
	case no && !yes:
		return AnswerNo
	default:
		return AnswerInvalid
	}
}

// tokenize режет строку по всему, что не буква, не цифра и не диакритика
func tokenize(raw string) []string {
	return strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
	})
}
