package json

// ScannerHooks contains block-scan hooks for decoder whitespace and token scans.
type ScannerHooks interface {
	SkipWhitespace(data []byte, pos int) int
	FindQuoteOrEscape(data []byte, pos int) (quotePos int, escapePos int)
}

type scalarScannerHooks struct{}

func (s scalarScannerHooks) SkipWhitespace(data []byte, pos int) int {
	for pos < len(data) {
		switch data[pos] {
		case ' ', '\n', '\r', '\t':
			pos++
		default:
			return pos
		}
	}
	return pos
}

func (s scalarScannerHooks) FindQuoteOrEscape(data []byte, pos int) (int, int) {
	for i := pos; i < len(data); i++ {
		if data[i] == '"' {
			return i, -1
		}
		if data[i] == '\\' {
			return -1, i
		}
	}
	return -1, -1
}

// commentScannerHooks treats // line and /* block */ comments as whitespace.
// An unterminated block comment is left in place so the scan fails on it.
type commentScannerHooks struct {
	scalarScannerHooks
}

func (c commentScannerHooks) SkipWhitespace(data []byte, pos int) int {
	for {
		pos = c.scalarScannerHooks.SkipWhitespace(data, pos)
		if pos+1 >= len(data) || data[pos] != '/' {
			return pos
		}
		switch data[pos+1] {
		case '/':
			pos += 2
			for pos < len(data) && data[pos] != '\n' {
				pos++
			}
		case '*':
			start := pos
			pos += 2
			for {
				if pos+1 >= len(data) {
					return start
				}
				if data[pos] == '*' && data[pos+1] == '/' {
					pos += 2
					break
				}
				pos++
			}
		default:
			return pos
		}
	}
}
