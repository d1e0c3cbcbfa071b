package otpchallenge

import (
	"regexp"
	"strings"
)

// CodeLength is the number of digit cells.
const CodeLength = 4

var reCode = regexp.MustCompile(`^[0-9]{4}$`)

// cells is the fixed size code buffer. Each cell is "" or one ASCII digit.
type cells [CodeLength]string

func (c cells) full() bool {
	for _, d := range c {
		if d == "" {
			return false
		}
	}
	return true
}

func (c cells) code() string { return strings.Join(c[:], "") }

func isDigit(s string) bool {
	return len(s) == 1 && s[0] >= '0' && s[0] <= '9'
}

func validCell(i int) bool { return i >= 0 && i < CodeLength }

// nextFocus is where focus goes after a digit lands in cell i.
func nextFocus(i int) int {
	if i < CodeLength-1 {
		return i + 1
	}
	return i
}

// prevFocus is where focus goes after backspace on an empty cell i.
func prevFocus(i int) int {
	if i > 0 {
		return i - 1
	}
	return i
}
