package time

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

type tokenKind int

const (
	literalToken tokenKind = iota
	yearToken
	monthToken
	dayToken
	hour24Token
	hour12Token
	minuteToken
	secondToken
	fractionToken
	trimmedFractionToken
	meridiemToken
	zoneKindToken
	zoneOffsetToken
	eraToken
)

type token struct {
	kind    tokenKind
	width   int
	text    string
	trimDot bool
}

// Pattern is a compiled custom date and time format string using the
// invariant culture specifiers (yyyy, MM, dd, HH, hh, mm, ss, f..., F..., tt, K, z, gg).
type Pattern struct {
	source string
	tokens []token
	layout string
	exact  bool
}

var patterns sync.Map // map[string]*Pattern

// Compile parses pattern, caching compiled patterns by source.
func Compile(pattern string) (*Pattern, error) {
	if cached, ok := patterns.Load(pattern); ok {
		return cached.(*Pattern), nil
	}
	tokens, err := tokenize(pattern)
	if err != nil {
		return nil, err
	}
	ret := &Pattern{source: pattern, tokens: tokens}
	ret.layout, ret.exact = translate(tokens)
	actual, _ := patterns.LoadOrStore(pattern, ret)
	return actual.(*Pattern), nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string) *Pattern {
	ret, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return ret
}

func (p *Pattern) String() string { return p.source }

// Layout returns the equivalent Go layout; ok is false when the pattern
// uses a specifier or literal Go layouts cannot represent faithfully.
func (p *Pattern) Layout() (layout string, ok bool) {
	return p.layout, p.exact
}

// Format formats t in its own location.
func (p *Pattern) Format(t time.Time) string {
	return string(p.AppendFormat(make([]byte, 0, len(p.source)+10), t))
}

// AppendFormat appends formatted t to dst.
func (p *Pattern) AppendFormat(dst []byte, t time.Time) []byte {
	for _, tok := range p.tokens {
		switch tok.kind {
		case literalToken:
			dst = append(dst, tok.text...)
		case yearToken:
			year := t.Year()
			if tok.width <= 2 {
				year %= 100
			}
			dst = appendPadded(dst, year, tok.width)
		case monthToken:
			switch tok.width {
			case 1, 2:
				dst = appendPadded(dst, int(t.Month()), tok.width)
			case 3:
				dst = append(dst, t.Month().String()[:3]...)
			default:
				dst = append(dst, t.Month().String()...)
			}
		case dayToken:
			switch tok.width {
			case 1, 2:
				dst = appendPadded(dst, t.Day(), tok.width)
			case 3:
				dst = append(dst, t.Weekday().String()[:3]...)
			default:
				dst = append(dst, t.Weekday().String()...)
			}
		case hour24Token:
			dst = appendPadded(dst, t.Hour(), tok.width)
		case hour12Token:
			hour := t.Hour() % 12
			if hour == 0 {
				hour = 12
			}
			dst = appendPadded(dst, hour, tok.width)
		case minuteToken:
			dst = appendPadded(dst, t.Minute(), tok.width)
		case secondToken:
			dst = appendPadded(dst, t.Second(), tok.width)
		case fractionToken:
			dst = append(dst, fraction(t, tok.width)...)
		case trimmedFractionToken:
			digits := strings.TrimRight(fraction(t, tok.width), "0")
			if digits == "" && tok.trimDot && len(dst) > 0 && dst[len(dst)-1] == '.' {
				dst = dst[:len(dst)-1]
			}
			dst = append(dst, digits...)
		case meridiemToken:
			designator := "AM"
			if t.Hour() >= 12 {
				designator = "PM"
			}
			dst = append(dst, designator[:tok.width]...)
		case zoneKindToken:
			if t.Location() == time.UTC {
				dst = append(dst, 'Z')
			} else {
				dst = appendOffset(dst, t, 3)
			}
		case zoneOffsetToken:
			dst = appendOffset(dst, t, tok.width)
		case eraToken:
			dst = append(dst, "A.D."...)
		}
	}
	return dst
}

func fraction(t time.Time, width int) string {
	digits := fmt.Sprintf("%09d", t.Nanosecond())
	return digits[:width]
}

func appendPadded(dst []byte, value int, width int) []byte {
	if value < 0 {
		dst = append(dst, '-')
		value = -value
	}
	digits := strconv.Itoa(value)
	for i := len(digits); i < width; i++ {
		dst = append(dst, '0')
	}
	return append(dst, digits...)
}

func appendOffset(dst []byte, t time.Time, width int) []byte {
	_, offset := t.Zone()
	sign := byte('+')
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	hours, minutes := offset/3600, (offset%3600)/60
	dst = append(dst, sign)
	switch width {
	case 1:
		dst = strconv.AppendInt(dst, int64(hours), 10)
	case 2:
		dst = appendPadded(dst, hours, 2)
	default:
		dst = appendPadded(dst, hours, 2)
		dst = append(dst, ':')
		dst = appendPadded(dst, minutes, 2)
	}
	return dst
}

func tokenize(pattern string) ([]token, error) {
	if pattern == "" {
		return nil, fmt.Errorf("format: empty date time pattern")
	}
	var tokens []token
	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			tokens = append(tokens, token{kind: literalToken, text: literal.String()})
			literal.Reset()
		}
	}
	for i := 0; i < len(pattern); {
		c := pattern[i]
		switch c {
		case '\'', '"':
			end := strings.IndexByte(pattern[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("format: unterminated quoted literal in %q", pattern)
			}
			literal.WriteString(pattern[i+1 : i+1+end])
			i += end + 2
			continue
		case '\\':
			if i+1 >= len(pattern) {
				return nil, fmt.Errorf("format: trailing escape in %q", pattern)
			}
			literal.WriteByte(pattern[i+1])
			i += 2
			continue
		case '%':
			if i+1 >= len(pattern) || pattern[i+1] == '%' {
				return nil, fmt.Errorf("format: invalid %% specifier in %q", pattern)
			}
			i++
			continue
		}
		kind, limit, ok := specifier(c)
		if !ok {
			literal.WriteByte(c)
			i++
			continue
		}
		width := 1
		for i+width < len(pattern) && pattern[i+width] == c {
			width++
		}
		if width > limit {
			return nil, fmt.Errorf("format: too many '%c' specifiers in %q", c, pattern)
		}
		trimDot := kind == trimmedFractionToken && literal.Len() > 0 && strings.HasSuffix(literal.String(), ".")
		if kind == trimmedFractionToken && literal.Len() == 0 && len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			trimDot = last.kind == literalToken && strings.HasSuffix(last.text, ".")
		}
		flush()
		tokens = append(tokens, token{kind: kind, width: width, trimDot: trimDot})
		i += width
	}
	flush()
	return tokens, nil
}

func specifier(c byte) (tokenKind, int, bool) {
	switch c {
	case 'y':
		return yearToken, 5, true
	case 'M':
		return monthToken, 4, true
	case 'd':
		return dayToken, 4, true
	case 'H':
		return hour24Token, 2, true
	case 'h':
		return hour12Token, 2, true
	case 'm':
		return minuteToken, 2, true
	case 's':
		return secondToken, 2, true
	case 'f':
		return fractionToken, 9, true
	case 'F':
		return trimmedFractionToken, 9, true
	case 't':
		return meridiemToken, 2, true
	case 'K':
		return zoneKindToken, 1, true
	case 'z':
		return zoneOffsetToken, 3, true
	case 'g':
		return eraToken, 2, true
	}
	return 0, 0, false
}

// translate maps tokens to a Go layout, reporting false for anything the
// Go layout grammar would misread or cannot express.
func translate(tokens []token) (string, bool) {
	var layout strings.Builder
	previous := ""
	for i, tok := range tokens {
		if tok.kind == literalToken {
			if !safeLiteral(tok.text) {
				return "", false
			}
			text := tok.text
			if i+1 < len(tokens) && isFraction(tokens[i+1].kind) {
				if !strings.HasSuffix(text, ".") {
					return "", false
				}
				text = strings.TrimSuffix(text, ".")
			}
			layout.WriteString(text)
			previous = ""
			continue
		}
		var chunk string
		switch tok.kind {
		case yearToken:
			chunk = map[int]string{2: "06", 4: "2006"}[tok.width]
		case monthToken:
			chunk = [...]string{"", "1", "01", "Jan", "January"}[tok.width]
		case dayToken:
			chunk = [...]string{"", "2", "02", "Mon", "Monday"}[tok.width]
		case hour24Token:
			if tok.width == 2 {
				chunk = "15"
			}
		case hour12Token:
			chunk = [...]string{"", "3", "03"}[tok.width]
		case minuteToken:
			chunk = [...]string{"", "4", "04"}[tok.width]
		case secondToken:
			chunk = [...]string{"", "5", "05"}[tok.width]
		case fractionToken, trimmedFractionToken:
			if i == 0 || tokens[i-1].kind != literalToken {
				return "", false
			}
			digit := "0"
			if tok.kind == trimmedFractionToken {
				digit = "9"
			}
			chunk = "." + strings.Repeat(digit, tok.width)
		case meridiemToken:
			if tok.width == 2 {
				chunk = "PM"
			}
		case zoneKindToken:
			chunk = "Z07:00"
		case zoneOffsetToken:
			chunk = [...]string{"", "", "-07", "-07:00"}[tok.width]
		}
		if chunk == "" {
			return "", false
		}
		// "1" followed by "5" would read as the hour
		if len(previous) == 1 && chunk[0] >= '0' && chunk[0] <= '9' {
			return "", false
		}
		layout.WriteString(chunk)
		previous = chunk
	}
	return layout.String(), true
}

func isFraction(kind tokenKind) bool {
	return kind == fractionToken || kind == trimmedFractionToken
}

var layoutWords = []string{"Jan", "Mon", "MST", "PM", "pm", "_"}

func safeLiteral(text string) bool {
	for _, c := range text {
		if c >= '0' && c <= '9' {
			return false
		}
	}
	for _, word := range layoutWords {
		if strings.Contains(text, word) {
			return false
		}
	}
	return !strings.HasSuffix(text, "P") && !strings.HasSuffix(text, "p")
}
