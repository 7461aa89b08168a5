package script

import "strconv"

// Op identifies a single Bitcoin script opcode byte. The mapping from
// byte value to identifier (and back) is the bidirectional dictionary
// spec.md §2 calls for; it is built once in init() and never mutated
// during execution.
type Op byte

// Named opcodes, grouped the way hsk81-btcscript's opcodemap and the
// other_examples opcode tables (pouria-shahmiri, bpfs-defs, smythg4,
// DimaJoyti-go-coffee) all lay them out — the byte values are consensus
// constants, not a design choice.
const (
	Op0         Op = 0x00
	OpFalse     Op = Op0
	// 0x01..0x4b: direct push of N bytes, handled structurally by the
	// parser rather than as named constants.
	OpPushData1 Op = 0x4c
	OpPushData2 Op = 0x4d
	OpPushData4 Op = 0x4e
	Op1Negate   Op = 0x4f
	OpReserved  Op = 0x50
	Op1         Op = 0x51
	OpTrue      Op = Op1
	Op2         Op = 0x52
	Op3         Op = 0x53
	Op4         Op = 0x54
	Op5         Op = 0x55
	Op6         Op = 0x56
	Op7         Op = 0x57
	Op8         Op = 0x58
	Op9         Op = 0x59
	Op10        Op = 0x5a
	Op11        Op = 0x5b
	Op12        Op = 0x5c
	Op13        Op = 0x5d
	Op14        Op = 0x5e
	Op15        Op = 0x5f
	Op16        Op = 0x60

	OpNop      Op = 0x61
	OpVer      Op = 0x62
	OpIf       Op = 0x63
	OpNotIf    Op = 0x64
	OpVerIf    Op = 0x65
	OpVerNotIf Op = 0x66
	OpElse     Op = 0x67
	OpEndIf    Op = 0x68
	OpVerify   Op = 0x69
	OpReturn   Op = 0x6a

	OpToAltStack   Op = 0x6b
	OpFromAltStack Op = 0x6c
	Op2Drop        Op = 0x6d
	Op2Dup         Op = 0x6e
	Op3Dup         Op = 0x6f
	Op2Over        Op = 0x70
	Op2Rot         Op = 0x71
	Op2Swap        Op = 0x72
	OpIfDup        Op = 0x73
	OpDepth        Op = 0x74
	OpDrop         Op = 0x75
	OpDup          Op = 0x76
	OpNip          Op = 0x77
	OpOver         Op = 0x78
	OpPick         Op = 0x79
	OpRoll         Op = 0x7a
	OpRot          Op = 0x7b
	OpSwap         Op = 0x7c
	OpTuck         Op = 0x7d

	OpCat    Op = 0x7e
	OpSubstr Op = 0x7f
	OpLeft   Op = 0x80
	OpRight  Op = 0x81
	OpSize   Op = 0x82
	OpInvert Op = 0x83
	OpAnd    Op = 0x84
	OpOr     Op = 0x85
	OpXor    Op = 0x86

	OpEqual       Op = 0x87
	OpEqualVerify Op = 0x88

	OpReserved1 Op = 0x89
	OpReserved2 Op = 0x8a

	Op1Add               Op = 0x8b
	Op1Sub               Op = 0x8c
	Op2Mul               Op = 0x8d
	Op2Div               Op = 0x8e
	OpNegate             Op = 0x8f
	OpAbs                Op = 0x90
	OpNot                Op = 0x91
	Op0NotEqual          Op = 0x92
	OpAdd                Op = 0x93
	OpSub                Op = 0x94
	OpMul                Op = 0x95
	OpDiv                Op = 0x96
	OpMod                Op = 0x97
	OpLShift             Op = 0x98
	OpRShift             Op = 0x99
	OpBoolAnd            Op = 0x9a
	OpBoolOr             Op = 0x9b
	OpNumEqual           Op = 0x9c
	OpNumEqualVerify     Op = 0x9d
	OpNumNotEqual        Op = 0x9e
	OpLessThan           Op = 0x9f
	OpGreaterThan        Op = 0xa0
	OpLessThanOrEqual    Op = 0xa1
	OpGreaterThanOrEqual Op = 0xa2
	OpMin                Op = 0xa3
	OpMax                Op = 0xa4
	OpWithin             Op = 0xa5

	OpRipemd160           Op = 0xa6
	OpSha1                Op = 0xa7
	OpSha256              Op = 0xa8
	OpHash160             Op = 0xa9
	OpHash256             Op = 0xaa
	OpCodeSeparator       Op = 0xab
	OpCheckSig            Op = 0xac
	OpCheckSigVerify      Op = 0xad
	OpCheckMultiSig       Op = 0xae
	OpCheckMultiSigVerify Op = 0xaf

	OpNop1  Op = 0xb0
	OpNop2  Op = 0xb1
	OpNop3  Op = 0xb2
	OpNop4  Op = 0xb3
	OpNop5  Op = 0xb4
	OpNop6  Op = 0xb5
	OpNop7  Op = 0xb6
	OpNop8  Op = 0xb7
	OpNop9  Op = 0xb8
	OpNop10 Op = 0xb9

	OpInvalidOpcode Op = 0xff
)

// opcodeInfo describes one entry of the byte↔opcode dictionary.
type opcodeInfo struct {
	name string
	// pushLen describes the data that follows this opcode byte:
	//   0  -> no associated data
	//   >0 -> that many literal data bytes follow (OP_DATA_1..OP_DATA_75)
	//   -1/-2/-4 -> a 1/2/4-byte little-endian length prefix follows
	//               (OP_PUSHDATA1/2/4)
	pushLen int

	disabled      bool // always fails, even inside a dead branch
	alwaysInvalid bool // OP_VERIF / OP_VERNOTIF
	upgradableNop bool // OP_NOP1..OP_NOP10
	known         bool // false for unassigned bytes (-> OpInvalidOpcode)
}

var opcodeArray [256]opcodeInfo

// disabledOps is exactly the list spec.md §4.2 names.
var disabledOps = []Op{
	OpCat, OpSubstr, OpLeft, OpRight, OpInvert, OpAnd, OpOr, OpXor,
	Op2Mul, Op2Div, OpMul, OpDiv, OpMod, OpLShift, OpRShift,
}

func init() {
	// 0x00: OP_0.
	opcodeArray[Op0] = opcodeInfo{name: "OP_0", pushLen: 0, known: true}

	// 0x01..0x4b: direct data pushes, OP_DATA_1..OP_DATA_75.
	for b := 1; b <= 75; b++ {
		opcodeArray[b] = opcodeInfo{name: "OP_DATA", pushLen: b, known: true}
	}

	opcodeArray[OpPushData1] = opcodeInfo{name: "OP_PUSHDATA1", pushLen: -1, known: true}
	opcodeArray[OpPushData2] = opcodeInfo{name: "OP_PUSHDATA2", pushLen: -2, known: true}
	opcodeArray[OpPushData4] = opcodeInfo{name: "OP_PUSHDATA4", pushLen: -4, known: true}
	opcodeArray[Op1Negate] = opcodeInfo{name: "OP_1NEGATE", known: true}
	opcodeArray[OpReserved] = opcodeInfo{name: "OP_RESERVED", known: true}

	for i, op := range []Op{Op1, Op2, Op3, Op4, Op5, Op6, Op7, Op8, Op9, Op10,
		Op11, Op12, Op13, Op14, Op15, Op16} {
		opcodeArray[op] = opcodeInfo{name: "OP_" + strconv.Itoa(i+1), known: true}
	}

	simple := map[Op]string{
		OpNop: "OP_NOP", OpVer: "OP_VER", OpIf: "OP_IF", OpNotIf: "OP_NOTIF",
		OpElse: "OP_ELSE", OpEndIf: "OP_ENDIF", OpVerify: "OP_VERIFY", OpReturn: "OP_RETURN",
		OpToAltStack: "OP_TOALTSTACK", OpFromAltStack: "OP_FROMALTSTACK",
		Op2Drop: "OP_2DROP", Op2Dup: "OP_2DUP", Op3Dup: "OP_3DUP", Op2Over: "OP_2OVER",
		Op2Rot: "OP_2ROT", Op2Swap: "OP_2SWAP", OpIfDup: "OP_IFDUP", OpDepth: "OP_DEPTH",
		OpDrop: "OP_DROP", OpDup: "OP_DUP", OpNip: "OP_NIP", OpOver: "OP_OVER",
		OpPick: "OP_PICK", OpRoll: "OP_ROLL", OpRot: "OP_ROT", OpSwap: "OP_SWAP", OpTuck: "OP_TUCK",
		OpSize: "OP_SIZE", OpEqual: "OP_EQUAL", OpEqualVerify: "OP_EQUALVERIFY",
		OpReserved1: "OP_RESERVED1", OpReserved2: "OP_RESERVED2",
		Op1Add: "OP_1ADD", Op1Sub: "OP_1SUB", OpNegate: "OP_NEGATE", OpAbs: "OP_ABS",
		OpNot: "OP_NOT", Op0NotEqual: "OP_0NOTEQUAL", OpAdd: "OP_ADD", OpSub: "OP_SUB",
		OpBoolAnd: "OP_BOOLAND", OpBoolOr: "OP_BOOLOR", OpNumEqual: "OP_NUMEQUAL",
		OpNumEqualVerify: "OP_NUMEQUALVERIFY", OpNumNotEqual: "OP_NUMNOTEQUAL",
		OpLessThan: "OP_LESSTHAN", OpGreaterThan: "OP_GREATERTHAN",
		OpLessThanOrEqual: "OP_LESSTHANOREQUAL", OpGreaterThanOrEqual: "OP_GREATERTHANOREQUAL",
		OpMin: "OP_MIN", OpMax: "OP_MAX", OpWithin: "OP_WITHIN",
		OpRipemd160: "OP_RIPEMD160", OpSha1: "OP_SHA1", OpSha256: "OP_SHA256",
		OpHash160: "OP_HASH160", OpHash256: "OP_HASH256", OpCodeSeparator: "OP_CODESEPARATOR",
		OpCheckSig: "OP_CHECKSIG", OpCheckSigVerify: "OP_CHECKSIGVERIFY",
		OpCheckMultiSig: "OP_CHECKMULTISIG", OpCheckMultiSigVerify: "OP_CHECKMULTISIGVERIFY",
	}
	for op, name := range simple {
		opcodeArray[op] = opcodeInfo{name: name, known: true}
	}

	for i, op := range []Op{OpNop1, OpNop2, OpNop3, OpNop4, OpNop5, OpNop6, OpNop7, OpNop8, OpNop9, OpNop10} {
		opcodeArray[op] = opcodeInfo{name: "OP_NOP" + strconv.Itoa(i+1), upgradableNop: true, known: true}
	}

	for _, op := range disabledOps {
		opcodeArray[op] = opcodeInfo{name: disabledNames[op], disabled: true, known: true}
	}

	opcodeArray[OpVerIf] = opcodeInfo{name: "OP_VERIF", alwaysInvalid: true, known: true}
	opcodeArray[OpVerNotIf] = opcodeInfo{name: "OP_VERNOTIF", alwaysInvalid: true, known: true}
}

var disabledNames = map[Op]string{
	OpCat: "OP_CAT", OpSubstr: "OP_SUBSTR", OpLeft: "OP_LEFT", OpRight: "OP_RIGHT",
	OpInvert: "OP_INVERT", OpAnd: "OP_AND", OpOr: "OP_OR", OpXor: "OP_XOR",
	Op2Mul: "OP_2MUL", Op2Div: "OP_2DIV", OpMul: "OP_MUL", OpDiv: "OP_DIV",
	OpMod: "OP_MOD", OpLShift: "OP_LSHIFT", OpRShift: "OP_RSHIFT",
}

// isSmallInt reports whether op is OP_0 or OP_1..OP_16 — the "simple
// value" opcodes the recognizers and isPushOnly checks treat as data.
func isSmallInt(op Op) bool {
	return op == Op0 || (op >= Op1 && op <= Op16)
}

// smallIntValue returns the integer value represented by a small-int
// opcode; op must satisfy isSmallInt.
func smallIntValue(op Op) int {
	if op == Op0 {
		return 0
	}
	return int(op) - int(Op1) + 1
}

// opcodeForSmallInt returns OP_N for 0 <= n <= 16, used by the multisig
// constructor.
func opcodeForSmallInt(n int) Op {
	if n == 0 {
		return Op0
	}
	return Op(int(Op1) + n - 1)
}

