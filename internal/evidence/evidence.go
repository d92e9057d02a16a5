package evidence

import (
	"regexp"
	"strings"
)

// #region evidence-mode
// Mode is the caller-declared provenance of the answer being validated.
type Mode string

const (
	ModePerazziSourced   Mode = "perazzi_sourced"
	ModeGeneralUnsourced Mode = "general_unsourced"
)

// ParseMode maps a wire value to a Mode. Unknown values are treated as sourced,
// which disables the unsourced-answer rules.
func ParseMode(raw string) Mode {
	if strings.EqualFold(strings.TrimSpace(raw), string(ModeGeneralUnsourced)) {
		return ModeGeneralUnsourced
	}
	return ModePerazziSourced
}

// #endregion evidence-mode

// #region label
// GeneralUnsourcedLabel must open the first line of every general (unsourced) answer.
const GeneralUnsourcedLabel = "General answer (not sourced from Perazzi docs): "

var (
	lineBreakRe  = regexp.MustCompile(`\r\n|\r|\n`)
	trimmedLabel = strings.TrimSpace(GeneralUnsourcedLabel)
)

// EnsureGeneralUnsourcedLabelFirstLine strips any echoed copies of the label from
// the start of every line, then prepends it exactly once. The function is
// idempotent. A line that legitimately begins with the label text is also
// stripped; that over-normalization is accepted.
func EnsureGeneralUnsourcedLabelFirstLine(text string) string {
	lines := lineBreakRe.Split(text, -1)
	for i, line := range lines {
		lines[i] = stripLabel(line)
	}
	body := strings.TrimLeft(strings.Join(lines, "\n"), " \t\n\r\f\v")
	return GeneralUnsourcedLabel + body
}

// HasGeneralUnsourcedLabel reports whether text already opens with the label.
func HasGeneralUnsourcedLabel(text string) bool {
	return strings.HasPrefix(text, GeneralUnsourcedLabel)
}

// stripLabel removes repeated leading labels; a line without one is returned as-is.
func stripLabel(line string) string {
	out := line
	stripped := false
	for {
		trimmed := strings.TrimLeft(out, " \t\f\v")
		switch {
		case strings.HasPrefix(trimmed, GeneralUnsourcedLabel):
			out = trimmed[len(GeneralUnsourcedLabel):]
		case strings.HasPrefix(trimmed, trimmedLabel):
			out = trimmed[len(trimmedLabel):]
		default:
			if stripped {
				return trimmed
			}
			return line
		}
		stripped = true
	}
}

// #endregion label
