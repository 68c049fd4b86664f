package sanitizer

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used to read phone numbers written without a country code.
const DefaultRegion = "MA"

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var reValidPhone = regexp.MustCompile(`^\+?[0-9 ().\-]{6,20}$`)

func dropControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SanitizeText collapses whitespace and strips control characters. It suits
// titles, names and cities.
func SanitizeText(input string) string {
	return Pipeline{dropControl, collapseSpaces}.Apply(input)
}

// SanitizeMessage keeps line breaks but trims each line and drops blank
// lines at both ends.
func SanitizeMessage(input string) string {
	lines := strings.Split(dropControl(input), "\n")
	for i, line := range lines {
		lines[i] = collapseSpaces(line)
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

func SanitizeEmail(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// SanitizeCategory lowercases and trims a category or condition slug.
func SanitizeCategory(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// SanitizePhone formats a phone number as E.164. Numbers that cannot be
// parsed become empty.
func SanitizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || !reValidPhone.MatchString(phone) {
		return ""
	}

	parsed, err := phonenumbers.Parse(phone, DefaultRegion)
	if err != nil {
		return ""
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

func SanitizeURL(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}

	u.Scheme = "https"
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")

	q := u.Query()
	for k := range q {
		if strings.HasPrefix(strings.ToLower(k), "utm_") {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	return u.String()
}

func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}

// SearchPattern turns free text into a literal regular expression, or ""
// when nothing is left to match.
func SearchPattern(input string) string {
	s := SanitizeText(input)
	if s == "" {
		return ""
	}
	return regexp.QuoteMeta(s)
}
