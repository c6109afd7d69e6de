package interp

//
// Statement execution.  step runs one statement starting at the
// current location, and leaves the location at the start of the next
// one (or wherever the statement transferred control to)
//

func (in *Interpreter) step() error {

	p := in.program

	for p.Accept(TokColon) {
	}

	if p.AtEndOfLine() {
		return nil
	}

	p.clearJumped()

	if err := in.executeStatement(); err != nil {
		return err
	}

	if p.Jumped() || p.AtEndOfLine() || p.Accept(TokColon) {
		return nil
	}

	if p.PeekKind() == TokElse {
		p.DiscardRemaining()
		return nil
	}

	return unexpectedToken(p.PeekKind())
}

func (in *Interpreter) executeStatement() error {

	p := in.program

	tok, err := p.TryNext()
	if err != nil {
		return err
	}

	switch tok.Kind {
	case TokRemark, TokData, TokColon:
		return nil

	case TokElse:
		p.DiscardRemaining()
		return nil

	case TokSymbol:
		p.loc.TokenIndex--
		return in.executeLet()

	case TokLet:
		return in.executeLet()

	case TokDim:
		return in.executeDim()

	case TokPrint, TokQuestion:
		return in.executePrint()

	case TokInput:
		return in.executeInput()

	case TokIf:
		return in.executeIf()

	case TokGoto:
		return in.executeGoto()

	case TokGosub:
		return in.executeGosub()

	case TokReturn:
		return p.ReturnFromGosub()

	case TokEnd:
		return signalEnd

	case TokStop:
		return signalStop

	case TokFor:
		return in.executeFor()

	case TokNext:
		return in.executeNext()

	case TokRestore:
		p.Restore()
		return nil

	case TokDef:
		return in.executeDef()

	case TokRead:
		return in.executeRead()
	}

	return unexpectedToken(tok.Kind)
}

func (in *Interpreter) executeLet() error {

	lv, err := in.parseLvalue()
	if err != nil {
		return err
	}

	if err := in.program.Expect(TokEqual); err != nil {
		return err
	}

	v, err := in.evalExpr()
	if err != nil {
		return err
	}

	return in.assign(lv, v)
}

func (in *Interpreter) symbolName() (string, error) {

	tok, err := in.program.TryNext()
	if err != nil {
		return "", err
	}

	if tok.Kind != TokSymbol {
		return "", unexpectedToken(tok.Kind)
	}

	return tok.Text(), nil
}

//
// DIM name(n {, n}) {, name(...)}.  Each bound is the highest index,
// so the axis gets n+1 elements
//

func (in *Interpreter) executeDim() error {

	p := in.program

	if p.AtStatementEnd() {
		in.emit(OutputEvent{Kind: OutputWarning, Text: "DIM WITHOUT SUBSCRIPTS IGNORED",
			Line: p.CurrentLine()})
		return nil
	}

	for {
		name, err := in.symbolName()
		if err != nil {
			return err
		}

		if err := p.Expect(TokLParen); err != nil {
			return err
		}

		bounds, err := in.evalIndexList()
		if err != nil {
			return err
		}

		if _, ok := in.arrays[name]; ok {
			return newError(RedimensionedArray)
		}

		sizes := make([]int, len(bounds))
		for i, b := range bounds {
			sizes[i] = b + 1
		}

		arr, err := newValueArray(name, sizes, in.opts.MaxArrayElements)
		if err != nil {
			return err
		}

		in.arrays[name] = arr

		if !p.Accept(TokComma) {
			return nil
		}
	}
}

//
// PRINT: a comma tabs, a semicolon just separates.  Expressions with
// no separator between them run together.  A trailing semicolon keeps
// the cursor on the line
//

func (in *Interpreter) executePrint() error {

	var text []byte

	p := in.program
	newline := true
	afterSemicolon := false

	for !p.AtStatementEnd() {
		switch p.PeekKind() {
		case TokComma:
			p.Next()
			if !afterSemicolon {
				text = append(text, '\t')
			}
			afterSemicolon = false
			newline = true

		case TokSemicolon:
			p.Next()
			afterSemicolon = true
			newline = false

		default:
			v, err := in.evalExpr()
			if err != nil {
				return err
			}
			text = append(text, v.String()...)
			afterSemicolon = false
			newline = true
		}
	}

	if newline {
		text = append(text, '\n')
	}

	in.print(string(text))

	return nil
}

//
// INPUT ["prompt" ;] target.  With no reply buffered, the statement
// backs up to its INPUT keyword and suspends; once a reply arrives it
// runs again from the top.  A reply that does not fit a numeric target
// asks again rather than failing
//

func (in *Interpreter) executeInput() error {

	p := in.program
	prompt := defaultInputPrompt
	at := ProgramLocation{Line: p.CurrentLine(), TokenIndex: p.Location().TokenIndex - 1}

	if tok, ok := p.Peek(); ok && tok.Kind == TokString {
		p.Next()
		prompt = tok.Text()
		if !p.Accept(TokSemicolon) && !p.Accept(TokComma) {
			return expectedToken(TokSemicolon)
		}
	}

	lv, err := in.parseLvalue()
	if err != nil {
		return err
	}

	if !p.AtStatementEnd() {
		return unexpectedToken(p.PeekKind())
	}

	if !in.hasInput {
		return in.suspendForInput(prompt)
	}

	reply := in.input
	in.input = ""
	in.hasInput = false

	elems, used := parseDataElements(reply)
	elem := elems[0]

	var v Value

	switch {
	case isStringName(lv.name):
		v = StringValue(elem.value().String())

	case elem.IsString:
		in.emit(OutputEvent{Kind: OutputReenter, Line: p.CurrentLine()})
		return in.suspendForInput(prompt)

	default:
		v = NumberValue(elem.Num)
	}

	if err := in.assign(lv, v); err != nil {
		return err
	}

	if len(elems) > 1 || used < len(reply) {
		in.emit(OutputEvent{Kind: OutputExtraIgnored, Line: p.CurrentLine()})
	}

	in.inputPrompt = ""

	if in.hasBranchInput && in.branchInput == at {
		in.hasBranchInput = false
		p.DiscardRemaining()
	}

	return nil
}

func (in *Interpreter) suspendForInput(prompt string) error {

	if !in.program.RewindBeforeToken(TokInput) {
		return internalError("INPUT token not found on line")
	}

	in.inputPrompt = prompt

	return signalAwaitInput
}

//
// IF cond THEN stmt|n [ELSE stmt|n].  Only one statement runs in
// either branch; whatever follows it on the line is dropped
//

func (in *Interpreter) executeIf() error {

	p := in.program

	cond, err := in.evalExpr()
	if err != nil {
		return err
	}

	if !p.Accept(TokThen) && p.PeekKind() != TokGoto {
		if p.AtEndOfLine() {
			return syntaxError(UnexpectedEndOfInput)
		}
		return expectedToken(TokThen)
	}

	if cond.Bool() {
		return in.executeBranch()
	}

	for {
		tok, ok := p.Next()
		if !ok {
			return nil
		}

		switch tok.Kind {
		case TokColon:
			p.DiscardRemaining()
			return nil

		case TokElse:
			return in.executeBranch()
		}
	}
}

func (in *Interpreter) executeBranch() error {

	p := in.program

	if tok, ok := p.Peek(); ok && tok.Kind == TokNumber {
		p.Next()
		n, err := lineNumber(tok.num)
		if err != nil {
			return err
		}
		return p.GotoLineNumber(n)
	}

	if err := in.executeStatement(); err != nil {
		if err == signalAwaitInput {
			in.branchInput = p.Location()
			in.hasBranchInput = true
		}
		return err
	}

	if !p.Jumped() {
		p.DiscardRemaining()
	}

	return nil
}

func (in *Interpreter) targetLine() (uint64, error) {

	f, err := in.evalNumber()
	if err != nil {
		return 0, err
	}

	return lineNumber(f)
}

func (in *Interpreter) executeGoto() error {

	n, err := in.targetLine()
	if err != nil {
		return err
	}

	return in.program.GotoLineNumber(n)
}

func (in *Interpreter) executeGosub() error {

	n, err := in.targetLine()
	if err != nil {
		return err
	}

	return in.program.Gosub(n)
}

//
// FOR var = from TO to [STEP step].  The body always runs at least
// once; NEXT decides whether to go round again
//

func (in *Interpreter) executeFor() error {

	p := in.program

	name, err := in.symbolName()
	if err != nil {
		return err
	}

	if isStringName(name) {
		return newError(TypeMismatch)
	}

	if err := p.Expect(TokEqual); err != nil {
		return err
	}

	from, err := in.evalNumber()
	if err != nil {
		return err
	}

	if err := p.Expect(TokTo); err != nil {
		return err
	}

	to, err := in.evalNumber()
	if err != nil {
		return err
	}

	step := 1.0

	if p.Accept(TokStep) {
		if step, err = in.evalNumber(); err != nil {
			return err
		}
	}

	if !p.AtStatementEnd() {
		return unexpectedToken(p.PeekKind())
	}

	in.variables[name] = NumberValue(from)

	return p.StartLoop(name, to, step)
}

// executeNext handles NEXT, NEXT v and NEXT v1, v2 ...
func (in *Interpreter) executeNext() error {

	p := in.program

	if p.AtStatementEnd() {
		name, ok := p.LoopName()
		if !ok {
			return newError(NextWithoutFor)
		}
		return in.nextLoop(name)
	}

	for {
		name, err := in.symbolName()
		if err != nil {
			return err
		}

		if err := in.nextLoop(name); err != nil {
			return err
		}

		if p.Jumped() || !p.Accept(TokComma) {
			return nil
		}
	}
}

func (in *Interpreter) nextLoop(name string) error {

	cur, err := in.lookupVariable(name).Number()
	if err != nil {
		return err
	}

	next, err := in.program.EndLoop(name, cur)
	if err != nil {
		return err
	}

	in.variables[name] = NumberValue(next)

	return nil
}

//
// DEF FNx(p {, p}) = expr.  Only the body's location is recorded; it
// is parsed again on every call
//

func (in *Interpreter) executeDef() error {

	p := in.program

	if !p.CurrentLine().Numbered {
		return newError(IllegalDirect)
	}

	name, err := in.symbolName()
	if err != nil {
		return err
	}

	if err := p.Expect(TokLParen); err != nil {
		return err
	}

	var params []string

	for {
		param, err := in.symbolName()
		if err != nil {
			return err
		}

		params = append(params, param)

		if !p.Accept(TokComma) {
			break
		}
	}

	if err := p.Expect(TokRParen); err != nil {
		return err
	}

	if err := p.Expect(TokEqual); err != nil {
		return err
	}

	if p.AtStatementEnd() {
		return syntaxError(UnexpectedEndOfInput)
	}

	in.functions[name] = FunctionDefinition{Params: params, Body: p.Location()}

	for !p.AtStatementEnd() {
		p.Next()
	}

	return nil
}

//
// READ target {, target}.  String targets take any element; numeric
// targets reject string elements, and the error names the DATA line
//

func (in *Interpreter) executeRead() error {

	p := in.program

	for {
		lv, err := in.parseLvalue()
		if err != nil {
			return err
		}

		elem, line, err := p.NextDataElement()
		if err != nil {
			return err
		}

		var v Value

		switch {
		case isStringName(lv.name):
			v = StringValue(elem.value().String())

		case elem.IsString:
			e := newError(DataTypeMismatch)
			e.Line = NumberedLine(line)
			return e

		default:
			v = NumberValue(elem.Num)
		}

		if err := in.assign(lv, v); err != nil {
			return err
		}

		if !p.Accept(TokComma) {
			return nil
		}
	}
}
