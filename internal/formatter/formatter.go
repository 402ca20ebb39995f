package formatter

import (
	"strings"
)

// Formatter tidies generated Python source before it is written out
type Formatter struct {
	header string
}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// NewFormatterWithHeader creates a Formatter that prepends header as a
// comment block.
func NewFormatterWithHeader(header string) *Formatter {
	return &Formatter{header: header}
}

// Format normalizes line endings, strips trailing whitespace, prepends the
// header comment and ends the text with exactly one newline.
func (f *Formatter) Format(code string) string {
	if strings.TrimSpace(code) == "" {
		return ""
	}

	code = strings.ReplaceAll(code, "\r\n", "\n")
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	body := strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"

	if comment := f.headerComment(); comment != "" {
		return comment + "\n" + body
	}
	return body
}

// headerComment renders the header with every line prefixed by "# ".
func (f *Formatter) headerComment() string {
	header := strings.TrimSpace(strings.ReplaceAll(f.header, "\r\n", "\n"))
	if header == "" {
		return ""
	}

	var b strings.Builder
	for _, line := range strings.Split(header, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			b.WriteString("#\n")
			continue
		}
		b.WriteString("# " + line + "\n")
	}
	return b.String()
}
