package interp

import (
	"strconv"
	"strings"
)

// DataElement is one item of a DATA statement or of an INPUT reply.
type DataElement struct {
	IsString bool
	Str      string
	Num      float64
}

func (e DataElement) value() Value {

	if e.IsString {
		return StringValue(e.Str)
	}

	return NumberValue(e.Num)
}

//
// Render an element so that re-tokenizing the listing yields the same
// element.  Strings that would otherwise read back as numbers, lose
// surrounding blanks or split on a separator get quoted
//

func (e DataElement) listing() string {

	if !e.IsString {
		return formatNumber(e.Num)
	}

	s := e.Str
	if s == "" {
		return s
	}

	_, isNum := parseDataNumber(s)
	if isNum || strings.ContainsAny(s, ",:") || strings.TrimSpace(s) != s {
		return `"` + s + `"`
	}

	return s
}

//
// Parse a comma separated list of elements as found after DATA, or in
// a reply to INPUT.  Parsing stops at an unquoted colon or the end of
// the string; the returned offset is where it stopped, so the caller
// can tell whether anything was left over.  Unquoted fields are
// trimmed and tried as numbers first.  Quoted fields are always
// strings, and keep everything between the quotes (colons included).
// Text between a closing quote and the next separator is dropped.
// There is always at least one element, even for an empty string
//

func parseDataElements(s string) ([]DataElement, int) {

	var elems []DataElement

	i := 0

	for {
		for i < len(s) && isBasicSpace(s[i]) {
			i++
		}

		if i < len(s) && s[i] == '"' {
			end := strings.IndexByte(s[i+1:], '"')
			if end < 0 {
				elems = append(elems, DataElement{IsString: true, Str: s[i+1:]})
				return elems, len(s)
			}

			elems = append(elems, DataElement{IsString: true, Str: s[i+1 : i+1+end]})
			i += end + 2

			for i < len(s) && s[i] != ',' && s[i] != ':' {
				i++
			}
		} else {
			start := i
			for i < len(s) && s[i] != ',' && s[i] != ':' {
				i++
			}

			field := strings.TrimSpace(s[start:i])
			if f, ok := parseDataNumber(field); ok {
				elems = append(elems, DataElement{Num: f})
			} else {
				elems = append(elems, DataElement{IsString: true, Str: field})
			}
		}

		if i >= len(s) || s[i] == ':' {
			return elems, i
		}

		// skip the comma
		i++
	}
}

//
// A DATA field is numeric if it is made up of nothing but digits,
// signs, a decimal point and an exponent, and ParseFloat agrees.
// The character check keeps ParseFloat from accepting things like
// "Inf", "NaN" or hex floats
//

func parseDataNumber(s string) (float64, bool) {

	if s == "" {
		return 0, false
	}

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
		case c == '.', c == '+', c == '-', c == 'e', c == 'E':
		default:
			return 0, false
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return f, true
}
