package interp

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/btree"
)

// ProgramLine names either the immediate (unnumbered) line, or a
// numbered program line.
type ProgramLine struct {
	Number   uint64
	Numbered bool
}

var ImmediateLine = ProgramLine{}

func NumberedLine(n uint64) ProgramLine {
	return ProgramLine{Number: n, Numbered: true}
}

func (l ProgramLine) String() string {

	if !l.Numbered {
		return "immediate"
	}

	return strconv.FormatUint(l.Number, 10)
}

// ProgramLocation is a position within a line.  TokenIndex may equal
// the number of tokens on the line, meaning "at end of line".
type ProgramLocation struct {
	Line       ProgramLine
	TokenIndex int
}

//
// A call stack entry.  GOSUB frames only remember where to return to;
// function frames also bind the function's parameters
//

type stackFrame struct {
	ret      ProgramLocation
	function bool
	params   map[string]Value
}

type loopInfo struct {
	resume ProgramLocation
	name   string
	to     float64
	step   float64
}

type dataItem struct {
	elem DataElement
	line uint64
}

type numberedLine struct {
	number uint64
	tokens []Token
}

func lessLine(a, b *numberedLine) bool {
	return a.number < b.number
}

// Program owns the numbered lines and every piece of control flow
// state: the current position, the GOSUB/function call stack, the
// FOR loop stack, the DATA cursor and any pending breakpoint.
type Program struct {
	lines     *btree.BTreeG[*numberedLine]
	immediate []Token

	loc ProgramLocation
	cur []Token

	callStack    []stackFrame
	loopStack    []loopInfo
	maxCallDepth int
	maxLoopDepth int

	data      []dataItem
	dataBuilt bool
	dataIndex int

	breakpoint    ProgramLocation
	hasBreakpoint bool

	jumped bool
}

func NewProgram(maxCallDepth, maxLoopDepth int) *Program {

	return &Program{
		lines:        btree.NewG[*numberedLine](8, lessLine),
		maxCallDepth: maxCallDepth,
		maxLoopDepth: maxLoopDepth,
	}
}

//
// Line storage
//

// SetNumberedLine stores tokens as line n, replacing any previous
// line n.  No tokens at all deletes the line.
func (p *Program) SetNumberedLine(n uint64, tokens []Token) {

	if len(tokens) == 0 {
		p.lines.Delete(&numberedLine{number: n})
	} else {
		p.lines.ReplaceOrInsert(&numberedLine{number: n, tokens: tokens})
	}

	p.invalidateData()
	p.ClearBreakpoint()
}

func (p *Program) HasLine(n uint64) bool {
	return p.lines.Has(&numberedLine{number: n})
}

func (p *Program) lineTokens(line ProgramLine) ([]Token, bool) {

	if !line.Numbered {
		return p.immediate, true
	}

	nl, ok := p.lines.Get(&numberedLine{number: line.Number})
	if !ok {
		return nil, false
	}

	return nl.tokens, true
}

// Listing renders every line in ascending order, one per text line.
func (p *Program) Listing() string {

	var sb strings.Builder

	p.lines.Ascend(func(nl *numberedLine) bool {
		sb.WriteString(strconv.FormatUint(nl.number, 10))
		for _, tok := range nl.tokens {
			sb.WriteByte(' ')
			sb.WriteString(tok.String())
		}
		sb.WriteByte('\n')
		return true
	})

	return sb.String()
}

//
// Position handling
//

func (p *Program) Location() ProgramLocation {
	return p.loc
}

func (p *Program) CurrentLine() ProgramLine {
	return p.loc.Line
}

func (p *Program) setLocation(loc ProgramLocation) bool {

	tokens, ok := p.lineTokens(loc.Line)
	if !ok {
		return false
	}

	p.loc = loc
	p.cur = tokens

	if p.loc.TokenIndex > len(p.cur) {
		p.loc.TokenIndex = len(p.cur)
	}

	return true
}

// SetImmediateLine makes tokens the immediate line and positions
// execution at its start.  Frames left behind by an earlier immediate
// line are of no further use, and are dropped.
func (p *Program) SetImmediateLine(tokens []Token) {

	p.immediate = tokens
	p.forgetImmediateFrames()
	p.setLocation(ProgramLocation{Line: ImmediateLine})
}

func (p *Program) forgetImmediateFrames() {

	for i, f := range p.callStack {
		if !f.ret.Line.Numbered {
			p.callStack = p.callStack[:i]
			break
		}
	}

	for i, l := range p.loopStack {
		if !l.resume.Line.Numbered {
			p.loopStack = p.loopStack[:i]
			break
		}
	}
}

// Reset drops all run state: stacks, DATA cursor and breakpoint.
func (p *Program) Reset() {

	p.callStack = nil
	p.loopStack = nil
	p.invalidateData()
	p.ClearBreakpoint()
}

// ResetStacks drops the call and loop stacks; used when a run aborts.
func (p *Program) ResetStacks() {
	p.callStack = nil
	p.loopStack = nil
}

// StartAtFirstLine positions execution at the lowest numbered line.
func (p *Program) StartAtFirstLine() bool {

	first, ok := p.lines.Min()
	if !ok {
		return false
	}

	return p.setLocation(ProgramLocation{Line: NumberedLine(first.number)})
}

// AdvanceLine moves to the start of the next numbered line, if any.
// The immediate line has no successor.
func (p *Program) AdvanceLine() bool {

	var next *numberedLine

	if !p.loc.Line.Numbered || p.loc.Line.Number == math.MaxUint64 {
		return false
	}

	p.lines.AscendGreaterOrEqual(&numberedLine{number: p.loc.Line.Number + 1},
		func(nl *numberedLine) bool {
			next = nl
			return false
		})

	if next == nil {
		return false
	}

	return p.setLocation(ProgramLocation{Line: NumberedLine(next.number)})
}

func (p *Program) AtEndOfLine() bool {
	return p.loc.TokenIndex >= len(p.cur)
}

//
// The jumped flag records that a statement transferred control, so
// the caller does not go on to discard the rest of the old line
//

func (p *Program) clearJumped() {
	p.jumped = false
}

func (p *Program) Jumped() bool {
	return p.jumped
}

// GotoLineNumber transfers control to the start of line n.  Targets
// are resolved when the jump happens, since lines can be edited at any
// time.
func (p *Program) GotoLineNumber(n uint64) error {

	if !p.setLocation(ProgramLocation{Line: NumberedLine(n)}) {
		return newError(UndefinedStatement)
	}

	p.jumped = true

	return nil
}

//
// GOSUB and RETURN
//

func (p *Program) pushFrame(f stackFrame) error {

	if len(p.callStack) >= p.maxCallDepth {
		return stackOverflow()
	}

	p.callStack = append(p.callStack, f)

	return nil
}

func (p *Program) Gosub(n uint64) error {

	if !p.HasLine(n) {
		return newError(UndefinedStatement)
	}

	if err := p.pushFrame(stackFrame{ret: p.loc}); err != nil {
		return err
	}

	return p.GotoLineNumber(n)
}

func (p *Program) ReturnFromGosub() error {

	top := len(p.callStack) - 1
	if top < 0 || p.callStack[top].function {
		return newError(ReturnWithoutGosub)
	}

	ret := p.callStack[top].ret
	p.callStack = p.callStack[:top]

	if !p.setLocation(ret) {
		return newError(UndefinedStatement)
	}

	p.jumped = true

	return nil
}

func (p *Program) CallDepth() int {
	return len(p.callStack)
}

//
// User function calls.  The frame remembers where the call was made
// from, and execution moves to the function body
//

func (p *Program) PushFunctionFrame(params map[string]Value, body ProgramLocation) error {

	ret := p.loc

	if err := p.pushFrame(stackFrame{ret: ret, function: true, params: params}); err != nil {
		return err
	}

	if !p.setLocation(body) {
		p.callStack = p.callStack[:len(p.callStack)-1]
		return newError(UndefinedStatement)
	}

	return nil
}

func (p *Program) PopFunctionFrame() error {

	top := len(p.callStack) - 1
	if top < 0 || !p.callStack[top].function {
		return internalError("function frame missing")
	}

	ret := p.callStack[top].ret
	p.callStack = p.callStack[:top]

	if !p.setLocation(ret) {
		return internalError("caller line vanished")
	}

	return nil
}

//
// Parameter lookup walks the whole call stack from the top down, not
// just the innermost frame.  A function's free variables can resolve
// against the arguments of whichever function called it
//

func (p *Program) LookupParam(name string) (Value, bool) {

	for i := len(p.callStack) - 1; i >= 0; i-- {
		if v, ok := p.callStack[i].params[name]; ok {
			return v, true
		}
	}

	return Value{}, false
}

//
// FOR/NEXT
//

func (p *Program) findLoop(name string) int {

	for i := len(p.loopStack) - 1; i >= 0; i-- {
		if p.loopStack[i].name == name {
			return i
		}
	}

	return -1
}

// StartLoop pushes a loop that resumes at the current location.  A
// loop already using name is forgotten, along with every loop pushed
// after it.
func (p *Program) StartLoop(name string, to, step float64) error {

	if i := p.findLoop(name); i >= 0 {
		p.loopStack = p.loopStack[:i]
	}

	if len(p.loopStack) >= p.maxLoopDepth {
		return stackOverflow()
	}

	p.loopStack = append(p.loopStack, loopInfo{resume: p.loc, name: name,
		to: to, step: step})

	return nil
}

// EndLoop closes loop name (the innermost loop if name is empty).
// It returns the next value of the loop variable, which the caller
// must store whether or not the loop continues.  When it continues,
// execution moves back to the top of the loop.
func (p *Program) EndLoop(name string, current float64) (float64, error) {

	i := len(p.loopStack) - 1
	if name != "" {
		i = p.findLoop(name)
	}

	if i < 0 {
		return 0, newError(NextWithoutFor)
	}

	loop := p.loopStack[i]
	p.loopStack = p.loopStack[:i]

	next := current + loop.step

	if (loop.step >= 0 && next <= loop.to) || (loop.step < 0 && next >= loop.to) {
		p.loopStack = append(p.loopStack, loop)
		if !p.setLocation(loop.resume) {
			return 0, newError(UndefinedStatement)
		}
		p.jumped = true
	}

	return next, nil
}

// LoopName returns the variable of the innermost loop, if any.
func (p *Program) LoopName() (string, bool) {

	if len(p.loopStack) == 0 {
		return "", false
	}

	return p.loopStack[len(p.loopStack)-1].name, true
}

func (p *Program) LoopDepth() int {
	return len(p.loopStack)
}

//
// Breakpoints.  Only a location inside a numbered line can be
// resumed; editing the program, RUN and NEW all clear it
//

func (p *Program) Break() (ProgramLine, bool) {

	if !p.loc.Line.Numbered {
		return p.loc.Line, false
	}

	p.breakpoint = p.loc
	p.hasBreakpoint = true

	return p.loc.Line, true
}

func (p *Program) ContinueFromBreakpoint() error {

	if !p.hasBreakpoint {
		return newError(CannotContinue)
	}

	bp := p.breakpoint
	p.ClearBreakpoint()

	if !p.setLocation(bp) {
		return newError(CannotContinue)
	}

	return nil
}

func (p *Program) ClearBreakpoint() {
	p.hasBreakpoint = false
	p.breakpoint = ProgramLocation{}
}

//
// DATA.  The cursor is built on first use by walking every line in
// ascending order, regardless of where READ happens to be
//

func (p *Program) invalidateData() {
	p.data = nil
	p.dataBuilt = false
	p.dataIndex = 0
}

func (p *Program) Restore() {
	p.invalidateData()
}

func (p *Program) buildData() {

	p.lines.Ascend(func(nl *numberedLine) bool {
		for _, tok := range nl.tokens {
			if tok.Kind != TokData {
				continue
			}
			for _, e := range tok.data {
				p.data = append(p.data, dataItem{elem: e, line: nl.number})
			}
		}
		return true
	})

	p.dataBuilt = true
	p.dataIndex = 0
}

// NextDataElement returns the next DATA element and the line it came
// from.
func (p *Program) NextDataElement() (DataElement, uint64, error) {

	if !p.dataBuilt {
		p.buildData()
	}

	if p.dataIndex >= len(p.data) {
		return DataElement{}, 0, newError(OutOfData)
	}

	item := p.data[p.dataIndex]
	p.dataIndex++

	return item.elem, item.line, nil
}

//
// Token stream primitives.  All of them work on the current line,
// starting at the current token index
//

func (p *Program) Peek() (Token, bool) {

	if p.AtEndOfLine() {
		return Token{}, false
	}

	return p.cur[p.loc.TokenIndex], true
}

// PeekKind is Peek for callers that only need the kind; it returns
// the zero kind at end of line.
func (p *Program) PeekKind() TokenKind {

	tok, _ := p.Peek()

	return tok.Kind
}

func (p *Program) Next() (Token, bool) {

	tok, ok := p.Peek()
	if ok {
		p.loc.TokenIndex++
	}

	return tok, ok
}

// TryNext is Next for callers that require a token to be there.
func (p *Program) TryNext() (Token, error) {

	tok, ok := p.Next()
	if !ok {
		return Token{}, syntaxError(UnexpectedEndOfInput)
	}

	return tok, nil
}

func (p *Program) Accept(kind TokenKind) bool {

	if p.PeekKind() == kind && !p.AtEndOfLine() {
		p.loc.TokenIndex++
		return true
	}

	return false
}

func (p *Program) Expect(kind TokenKind) error {

	if p.Accept(kind) {
		return nil
	}

	if p.AtEndOfLine() {
		return syntaxError(UnexpectedEndOfInput)
	}

	return expectedToken(kind)
}

func (p *Program) DiscardRemaining() {
	p.loc.TokenIndex = len(p.cur)
}

// AtStatementEnd reports whether the current statement has no more
// tokens: end of line, a colon, or an ELSE.
func (p *Program) AtStatementEnd() bool {
	return p.AtEndOfLine() || isStatementEnd(p.PeekKind())
}

// RewindBeforeToken moves back to just before the nearest earlier
// occurrence of kind on the current line.
func (p *Program) RewindBeforeToken(kind TokenKind) bool {

	for i := p.loc.TokenIndex - 1; i >= 0; i-- {
		if p.cur[i].Kind == kind {
			p.loc.TokenIndex = i
			return true
		}
	}

	return false
}
