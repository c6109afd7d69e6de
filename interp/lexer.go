package interp

import (
	"strconv"
	"strings"
)

//
// The tokenizer works on a single line, and is thrown away after
// use.  BASIC "crunches" its input: blanks (but not newlines) may
// appear anywhere inside a keyword, a symbol or an operator, so
// 'G O T O 10' is the same as 'GOTO10'.  Keywords take priority
// over symbols, and a symbol ends as soon as a keyword could start,
// so 'IFXTHENY' is 'IF X THEN Y'
//

type Lexer struct {
	line   string
	pos    int
	tokens []Token
	spans  []Span
}

// Tokenize converts one newline-free line into tokens.  The spans are
// parallel to the tokens and give each token's byte range in line.
func Tokenize(line string) ([]Token, []Span, error) {

	lx := &Lexer{line: line}

	if err := lx.run(); err != nil {
		return nil, nil, err
	}

	return lx.tokens, lx.spans, nil
}

func isBasicSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func toUpper(c byte) byte {

	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}

	return c
}

func (lx *Lexer) emit(tok Token, start, end int) {
	lx.tokens = append(lx.tokens, tok)
	lx.spans = append(lx.spans, Span{Start: start, End: end})
}

//
// Return the offset of the first non-blank byte at or after pos.
// The difference from pos is the number of blanks skipped
//

func (lx *Lexer) skipSpaces(pos int) int {

	for pos < len(lx.line) && isBasicSpace(lx.line[pos]) {
		pos++
	}

	return pos
}

//
// Try to match word (upper case) at pos, ignoring case and any blanks
// between its characters.  On success return the offset just past
// the last matched character
//

func (lx *Lexer) matchFold(pos int, word string) (int, bool) {

	p := pos

	for i := 0; i < len(word); i++ {
		if i > 0 {
			p = lx.skipSpaces(p)
		}

		if p >= len(lx.line) || toUpper(lx.line[p]) != word[i] {
			return 0, false
		}

		p++
	}

	return p, true
}

func (lx *Lexer) matchKeyword(pos int) (TokenKind, int, bool) {

	for _, kw := range keywords {
		if end, ok := lx.matchFold(pos, kw.name); ok {
			return kw.kind, end, true
		}
	}

	return tokInvalid, 0, false
}

func (lx *Lexer) run() error {

	for {
		lx.pos = lx.skipSpaces(lx.pos)
		if lx.pos >= len(lx.line) {
			return nil
		}

		start := lx.pos
		c := lx.line[start]

		if kind, end, ok := lx.matchKeyword(start); ok {
			switch kind {
			case TokRemark:
				lx.emit(remarkToken(lx.line[end:]), start, len(lx.line))
				lx.pos = len(lx.line)

			case TokData:
				elems, n := parseDataElements(lx.line[end:])
				lx.emit(dataToken(elems), start, end+n)
				lx.pos = end + n

			default:
				lx.emit(simpleToken(kind), start, end)
				lx.pos = end
			}

			continue
		}

		var err error

		switch {
		case isAlpha(c):
			lx.scanSymbol()

		case isDigit(c) || c == '.':
			err = lx.scanNumber()

		case c == '"':
			err = lx.scanString()

		default:
			err = lx.scanPunctuation()
		}

		if err != nil {
			return err
		}
	}
}

//
// A symbol is a letter followed by letters and digits, with an
// optional trailing '$' which also ends it.  Before taking each
// further character, check whether a keyword starts there; if so
// the symbol ends (any blanks we skipped are given back)
//

func (lx *Lexer) scanSymbol() {

	var name strings.Builder

	start := lx.pos
	name.WriteByte(lx.line[start])
	end := start + 1

	for {
		q := lx.skipSpaces(end)
		if q >= len(lx.line) {
			break
		}

		if _, _, ok := lx.matchKeyword(q); ok {
			break
		}

		ch := lx.line[q]

		if isAlpha(ch) || isDigit(ch) {
			name.WriteByte(ch)
			end = q + 1
			continue
		}

		if ch == '$' {
			name.WriteByte(ch)
			end = q + 1
		}

		break
	}

	lx.emit(symbolToken(name.String()), start, end)
	lx.pos = end
}

func (lx *Lexer) scanNumber() error {

	var dots int

	start := lx.pos
	p := start

	for p < len(lx.line) && (isDigit(lx.line[p]) || lx.line[p] == '.') {
		if lx.line[p] == '.' {
			dots++
		}
		p++
	}

	text := lx.line[start:p]
	if dots > 1 || text == "." {
		return tokenizationError("INVALID NUMBER", start, p)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return tokenizationError("INVALID NUMBER", start, p)
	}

	lx.emit(numberToken(f), start, p)
	lx.pos = p

	return nil
}

//
// String literals have no escapes; the first '"' after the opening
// one closes it
//

func (lx *Lexer) scanString() error {

	start := lx.pos

	end := strings.IndexByte(lx.line[start+1:], '"')
	if end < 0 {
		return tokenizationError("UNTERMINATED STRING", start, len(lx.line))
	}

	closing := start + 1 + end

	lx.emit(stringToken(lx.line[start+1:closing]), start, closing+1)
	lx.pos = closing + 1

	return nil
}

var punctuation = map[byte]TokenKind{
	':': TokColon,
	',': TokComma,
	';': TokSemicolon,
	'(': TokLParen,
	')': TokRParen,
	'+': TokPlus,
	'-': TokMinus,
	'*': TokStar,
	'/': TokSlash,
	'^': TokCaret,
	'=': TokEqual,
	'<': TokLess,
	'>': TokGreater,
	'?': TokQuestion,
}

func (lx *Lexer) scanPunctuation() error {

	start := lx.pos
	c := lx.line[start]

	kind, ok := punctuation[c]
	if !ok {
		return tokenizationError("UNEXPECTED CHARACTER "+strconv.Quote(string(c)),
			start, start+1)
	}

	end := start + 1

	//
	// Two character operators, possibly with blanks in the middle
	//

	if c == '<' || c == '>' {
		q := lx.skipSpaces(end)
		if q < len(lx.line) {
			switch {
			case c == '<' && lx.line[q] == '=':
				kind, end = TokLessEqual, q+1

			case c == '<' && lx.line[q] == '>':
				kind, end = TokNotEqual, q+1

			case c == '>' && lx.line[q] == '=':
				kind, end = TokGreaterEqual, q+1
			}
		}
	}

	lx.emit(simpleToken(kind), start, end)
	lx.pos = end

	return nil
}
