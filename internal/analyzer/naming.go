package analyzer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// Decimal, signed Infinity, and 0x/0o/0b literals; blank counts as zero.
	numericTokenRegex = regexp.MustCompile(`^\s*([+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?|[+-]?Infinity|0[xX][0-9a-fA-F]+|0[oO][0-7]+|0[bB][01]+)?\s*$`)
	invalidFieldRegex = regexp.MustCompile(`[^a-zA-Z0-9_]`)
)

const fieldPrefix = "field_"

// NameSanitizer turns JSON keys and array positions into Python identifiers.
// It is not safe for concurrent use; create one per analysis pass.
type NameSanitizer struct {
	pascalCase bool
	upper      cases.Caser
}

// NewNameSanitizer creates a NameSanitizer. With pascalCase set, class
// names are converted with strcase instead of capitalizing the first letter.
func NewNameSanitizer(pascalCase bool) *NameSanitizer {
	return &NameSanitizer{
		pascalCase: pascalCase,
		upper:      cases.Upper(language.Und),
	}
}

// ClassName derives a class name from a key or positional token.
// Numeric tokens such as array indices become Item<token>.
func (n *NameSanitizer) ClassName(token string) string {
	var name string
	switch {
	case token == "" || numericTokenRegex.MatchString(token):
		name = "Item" + strings.TrimSpace(token)
	case n.pascalCase:
		name = strcase.ToCamel(token)
	default:
		name = n.capitalize(token)
	}

	name = strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, name)

	if first, _ := utf8.DecodeRuneInString(name); name == "" || !unicode.IsLetter(first) {
		name = "Item" + name
	}
	return name
}

// FieldName replaces every character outside [A-Za-z0-9_] with an
// underscore. Empty and digit-leading names get a field_ prefix.
func (n *NameSanitizer) FieldName(key string) string {
	name := invalidFieldRegex.ReplaceAllString(key, "_")
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = fieldPrefix + name
	}
	return name
}

func (n *NameSanitizer) capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	n.upper.Reset()
	return n.upper.String(string(first)) + s[size:]
}
