package script

// Flags is the verification flag bitset spec.md §5 defines. Each bit
// gates one opt-in policy rule on top of bare consensus execution.
type Flags uint32

const (
	ScriptVerifyP2SH Flags = 1 << iota
	ScriptVerifyStrictEnc
	ScriptVerifyDERSig
	ScriptVerifyLowS
	ScriptVerifyNullDummy
	ScriptVerifySigPushOnly
	ScriptVerifyMinimalData
	ScriptVerifyDiscourageUpgradableNops
)

// Has reports whether flag is set.
func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

// Hasher supplies the digest primitives OP_RIPEMD160/SHA1/SHA256/
// HASH160/HASH256 need. It is abstracted behind an interface (rather
// than calling crypto/... directly from the engine) so tests can swap
// in fixed digests and pkg/bitcoin can wire in the real thing.
type Hasher interface {
	Sha1(data []byte) []byte
	Sha256(data []byte) []byte
	Ripemd160(data []byte) []byte
	Hash160(data []byte) []byte
	Hash256(data []byte) []byte
}

// SignatureChecker supplies the ECDSA verification OP_CHECKSIG and
// OP_CHECKMULTISIG need, scoped to one transaction input. sigops.go
// calls it with the current subscript; pkg/bitcoin implements it
// against a real transaction.
type SignatureChecker interface {
	// CheckSig reports whether sig is a valid signature of subScript by
	// pubKey for the input this Context was built for.
	CheckSig(sig, pubKey, subScript []byte) (bool, error)
}

// Tracer receives one callback per executed opcode. It lets a caller
// log interpreter progress (pkg/bitcoin wires this to zap) without
// pkg/script depending on a logging library itself.
type Tracer interface {
	TraceStep(index int, opName string, stackDepth int)
}

// Context carries everything about the surrounding transaction/input
// that opcode execution needs but that script bytes alone don't
// determine.
type Context struct {
	Flags Flags
	Hash  Hasher
	Sig   SignatureChecker
	Trace Tracer
}

// Engine executes one parsed script against a Context, using an
// explicit step loop rather than recursion — scripts are already
// flattened into a token slice by ParseScript, so there is no call
// stack to unwind.
type Engine struct {
	ctx  *Context
	ops  []ParsedOp
	main stack
	alt  stack
	cond []bool

	// lastCodeSeparator is the index into ops of the first token after
	// the most recent executed OP_CODESEPARATOR (0 if none yet). It
	// bounds the subscript handed to CheckSig.
	lastCodeSeparator int
}

// NewEngine prepares an engine to run ops against ctx, seeded with an
// initial stack (e.g. the result of running scriptSig, when evaluating
// scriptPubKey).
func NewEngine(ctx *Context, ops []ParsedOp, initialStack [][]byte) *Engine {
	e := &Engine{ctx: ctx, ops: ops}
	for _, item := range initialStack {
		e.main.push(item)
	}
	return e
}

func (e *Engine) executing() bool {
	for _, c := range e.cond {
		if !c {
			return false
		}
	}
	return true
}

func (e *Engine) checkStackSize() error {
	if e.main.depth()+e.alt.depth() > maxStackSize {
		return ErrStackOverflow
	}
	return nil
}

// Run executes every token in order and returns the first error
// encountered; the resulting stack is then available from e.Stack.
func (e *Engine) Run() error {
	for i, op := range e.ops {
		if err := e.step(i, op); err != nil {
			return err
		}
		if e.ctx.Trace != nil {
			e.ctx.Trace.TraceStep(i, op.info().name, e.main.depth())
		}
		if err := e.checkStackSize(); err != nil {
			return err
		}
	}
	if len(e.cond) != 0 {
		return ErrMissingEndif
	}
	return nil
}

// Stack returns the final main stack, for callers (VerifyScripts) that
// need to inspect or hand it to the next script in a P2SH chain.
func (e *Engine) Stack() [][]byte {
	return [][]byte(e.main)
}

func (e *Engine) step(idx int, op ParsedOp) error {
	info := op.info()

	// Rules that apply unconditionally, even inside a dead branch.
	if info.disabled {
		return ErrDisabledOpcode
	}
	if info.alwaysInvalid {
		return ErrInvalidOpcode
	}
	if info.pushLen != 0 && len(op.Data) > maxScriptElementSize {
		return ErrElementTooBig
	}

	executing := e.executing()

	// Flow-control tokens are evaluated regardless of whether the
	// *current* branch executes, since they are what decides whether
	// the *next* branch does.
	switch op.Op {
	case OpIf, OpNotIf:
		return e.execIf(op.Op, executing)
	case OpElse:
		if len(e.cond) == 0 {
			return ErrUnbalancedConditional
		}
		e.cond[len(e.cond)-1] = !e.cond[len(e.cond)-1]
		return nil
	case OpEndIf:
		if len(e.cond) == 0 {
			return ErrUnbalancedConditional
		}
		e.cond = e.cond[:len(e.cond)-1]
		return nil
	}

	if !executing {
		return nil
	}

	if info.upgradableNop {
		if e.ctx.Flags.Has(ScriptVerifyDiscourageUpgradableNops) {
			return ErrDiscouragedUpgradableNop
		}
		return nil
	}

	if info.pushLen != 0 {
		if e.ctx.Flags.Has(ScriptVerifyMinimalData) && !canonicalPush(op) {
			return ErrNonMinimalPush
		}
		e.main.push(op.Data)
		return nil
	}

	if isSmallInt(op.Op) || op.Op == Op1Negate {
		var n ScriptNum
		if op.Op == Op1Negate {
			n = -1
		} else {
			n = ScriptNum(smallIntValue(op.Op))
		}
		e.main.push(encodeNum(n))
		return nil
	}

	switch op.Op {
	case OpNop:
		return nil

	case OpVerify:
		v, err := e.main.pop()
		if err != nil {
			return err
		}
		if !castToBoolean(v) {
			return ErrVerifyFailed
		}
		return nil

	case OpReturn:
		return ErrInvalidOpcode

	case OpToAltStack:
		v, err := e.main.pop()
		if err != nil {
			return err
		}
		e.alt.push(v)
		return nil

	case OpFromAltStack:
		v, err := e.alt.pop()
		if err != nil {
			return err
		}
		e.main.push(v)
		return nil

	case Op2Drop:
		if _, err := e.main.pop(); err != nil {
			return err
		}
		if _, err := e.main.pop(); err != nil {
			return err
		}
		return nil

	case Op2Dup:
		a, err := e.main.peek(1)
		if err != nil {
			return err
		}
		b, err := e.main.peek(0)
		if err != nil {
			return err
		}
		e.main.push(a)
		e.main.push(b)
		return nil

	case Op3Dup:
		a, err := e.main.peek(2)
		if err != nil {
			return err
		}
		b, err := e.main.peek(1)
		if err != nil {
			return err
		}
		c, err := e.main.peek(0)
		if err != nil {
			return err
		}
		e.main.push(a)
		e.main.push(b)
		e.main.push(c)
		return nil

	case Op2Over:
		a, err := e.main.peek(3)
		if err != nil {
			return err
		}
		b, err := e.main.peek(2)
		if err != nil {
			return err
		}
		e.main.push(a)
		e.main.push(b)
		return nil

	case Op2Rot:
		a, err := e.main.removeNth(5)
		if err != nil {
			return err
		}
		b, err := e.main.removeNth(4)
		if err != nil {
			return err
		}
		e.main.push(a)
		e.main.push(b)
		return nil

	case Op2Swap:
		a, err := e.main.removeNth(3)
		if err != nil {
			return err
		}
		b, err := e.main.removeNth(2)
		if err != nil {
			return err
		}
		e.main.push(a)
		e.main.push(b)
		return nil

	case OpIfDup:
		v, err := e.main.peek(0)
		if err != nil {
			return err
		}
		if castToBoolean(v) {
			e.main.push(v)
		}
		return nil

	case OpDepth:
		e.main.push(encodeNum(ScriptNum(e.main.depth())))
		return nil

	case OpDrop:
		_, err := e.main.pop()
		return err

	case OpDup:
		v, err := e.main.peek(0)
		if err != nil {
			return err
		}
		e.main.push(v)
		return nil

	case OpNip:
		_, err := e.main.removeNth(1)
		return err

	case OpOver:
		v, err := e.main.peek(1)
		if err != nil {
			return err
		}
		e.main.push(v)
		return nil

	case OpPick, OpRoll:
		nItem, err := e.main.pop()
		if err != nil {
			return err
		}
		n, err := decodeNum(nItem, defaultScriptNumLen)
		if err != nil {
			return err
		}
		if n < 0 {
			return ErrInvalidArgument
		}
		if op.Op == OpPick {
			v, err := e.main.peek(int(n))
			if err != nil {
				return err
			}
			e.main.push(v)
		} else {
			v, err := e.main.removeNth(int(n))
			if err != nil {
				return err
			}
			e.main.push(v)
		}
		return nil

	case OpRot:
		v, err := e.main.removeNth(2)
		if err != nil {
			return err
		}
		e.main.push(v)
		return nil

	case OpSwap:
		v, err := e.main.removeNth(1)
		if err != nil {
			return err
		}
		e.main.push(v)
		return nil

	case OpTuck:
		top, err := e.main.pop()
		if err != nil {
			return err
		}
		second, err := e.main.pop()
		if err != nil {
			return err
		}
		e.main.push(top)
		e.main.push(second)
		e.main.push(top)
		return nil

	case OpSize:
		v, err := e.main.peek(0)
		if err != nil {
			return err
		}
		e.main.push(encodeNum(ScriptNum(len(v))))
		return nil

	case OpEqual, OpEqualVerify:
		a, err := e.main.pop()
		if err != nil {
			return err
		}
		b, err := e.main.pop()
		if err != nil {
			return err
		}
		eq := bytesEqual(a, b)
		if op.Op == OpEqualVerify {
			if !eq {
				return ErrVerifyFailed
			}
			return nil
		}
		e.main.push(boolBytes(eq))
		return nil

	case Op1Add, Op1Sub, OpNegate, OpAbs, OpNot, Op0NotEqual:
		return e.execUnaryArith(op.Op)

	case OpAdd, OpSub, OpBoolAnd, OpBoolOr, OpNumEqual, OpNumEqualVerify,
		OpNumNotEqual, OpLessThan, OpGreaterThan, OpLessThanOrEqual,
		OpGreaterThanOrEqual, OpMin, OpMax:
		return e.execBinaryArith(op.Op)

	case OpWithin:
		return e.execWithin()

	case OpRipemd160:
		return e.execHash(e.ctx.Hash.Ripemd160)
	case OpSha1:
		return e.execHash(e.ctx.Hash.Sha1)
	case OpSha256:
		return e.execHash(e.ctx.Hash.Sha256)
	case OpHash160:
		return e.execHash(e.ctx.Hash.Hash160)
	case OpHash256:
		return e.execHash(e.ctx.Hash.Hash256)

	case OpCodeSeparator:
		e.lastCodeSeparator = idx + 1
		return nil

	case OpCheckSig, OpCheckSigVerify:
		return e.execCheckSig(op.Op == OpCheckSigVerify)

	case OpCheckMultiSig, OpCheckMultiSigVerify:
		return e.execCheckMultiSig(op.Op == OpCheckMultiSigVerify)
	}

	// OP_VER, OP_RESERVED, OP_RESERVED1/2, and any unassigned byte reach
	// here: they fail the script only when actually executed.
	return ErrInvalidOpcode
}

func (e *Engine) execIf(op Op, executing bool) error {
	if !executing {
		e.cond = append(e.cond, false)
		return nil
	}
	v, err := e.main.pop()
	if err != nil {
		return err
	}
	taken := castToBoolean(v)
	if op == OpNotIf {
		taken = !taken
	}
	e.cond = append(e.cond, taken)
	return nil
}

func (e *Engine) execHash(fn func([]byte) []byte) error {
	v, err := e.main.pop()
	if err != nil {
		return err
	}
	e.main.push(fn(v))
	return nil
}

// subscript returns the portion of the executed script after the most
// recent OP_CODESEPARATOR, re-serialized for signature hashing.
func (e *Engine) subscript() []byte {
	return UnparseScript(e.ops[e.lastCodeSeparator:])
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func boolBytes(b bool) []byte {
	if b {
		return []byte{1}
	}
	return nil
}

func (e *Engine) execUnaryArith(op Op) error {
	item, err := e.main.pop()
	if err != nil {
		return err
	}
	n, err := decodeNum(item, defaultScriptNumLen)
	if err != nil {
		return err
	}

	var result ScriptNum
	switch op {
	case Op1Add:
		result = n + 1
	case Op1Sub:
		result = n - 1
	case OpNegate:
		result = -n
	case OpAbs:
		if n < 0 {
			result = -n
		} else {
			result = n
		}
	case OpNot:
		e.main.push(boolBytes(n == 0))
		return nil
	case Op0NotEqual:
		e.main.push(boolBytes(n != 0))
		return nil
	}
	e.main.push(encodeNum(result))
	return nil
}

func (e *Engine) execBinaryArith(op Op) error {
	bItem, err := e.main.pop()
	if err != nil {
		return err
	}
	aItem, err := e.main.pop()
	if err != nil {
		return err
	}
	a, err := decodeNum(aItem, defaultScriptNumLen)
	if err != nil {
		return err
	}
	b, err := decodeNum(bItem, defaultScriptNumLen)
	if err != nil {
		return err
	}

	switch op {
	case OpAdd:
		e.main.push(encodeNum(a + b))
	case OpSub:
		e.main.push(encodeNum(b - a))
	case OpBoolAnd:
		e.main.push(boolBytes(a != 0 && b != 0))
	case OpBoolOr:
		e.main.push(boolBytes(a != 0 || b != 0))
	case OpNumEqual:
		e.main.push(boolBytes(a == b))
	case OpNumEqualVerify:
		if a != b {
			return ErrVerifyFailed
		}
	case OpNumNotEqual:
		e.main.push(boolBytes(a != b))
	case OpLessThan:
		e.main.push(boolBytes(a < b))
	case OpGreaterThan:
		e.main.push(boolBytes(a > b))
	case OpLessThanOrEqual:
		e.main.push(boolBytes(a <= b))
	case OpGreaterThanOrEqual:
		e.main.push(boolBytes(a >= b))
	case OpMin:
		if a < b {
			e.main.push(encodeNum(a))
		} else {
			e.main.push(encodeNum(b))
		}
	case OpMax:
		if a > b {
			e.main.push(encodeNum(a))
		} else {
			e.main.push(encodeNum(b))
		}
	}
	return nil
}

func (e *Engine) execWithin() error {
	maxItem, err := e.main.pop()
	if err != nil {
		return err
	}
	minItem, err := e.main.pop()
	if err != nil {
		return err
	}
	xItem, err := e.main.pop()
	if err != nil {
		return err
	}
	max, err := decodeNum(maxItem, defaultScriptNumLen)
	if err != nil {
		return err
	}
	min, err := decodeNum(minItem, defaultScriptNumLen)
	if err != nil {
		return err
	}
	x, err := decodeNum(xItem, defaultScriptNumLen)
	if err != nil {
		return err
	}
	e.main.push(boolBytes(x >= min && x < max))
	return nil
}
