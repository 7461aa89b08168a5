package script

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// maxScriptSize is the wire-size cap spec.md §3/§6.1 impose on a script
// before it is even parsed.
const maxScriptSize = 10000

// ParsedOp is one token produced by ParseScript: an opcode plus, for push
// opcodes, the payload that follows it.
type ParsedOp struct {
	Op   Op
	Data []byte
}

// info looks up this token's dictionary entry.
func (p ParsedOp) info() opcodeInfo {
	return opcodeArray[p.Op]
}

// bytes re-serializes a single token using its original push encoding
// family (direct / PUSHDATA1/2/4), choosing whichever the info table
// says this opcode byte uses. Used by UnparseScript.
func (p ParsedOp) bytes() []byte {
	info := p.info()
	if info.pushLen == 0 {
		return []byte{byte(p.Op)}
	}

	switch {
	case info.pushLen > 0:
		// OP_DATA_N: opcode byte IS N, followed by N bytes.
		out := make([]byte, 0, 1+len(p.Data))
		out = append(out, byte(p.Op))
		out = append(out, p.Data...)
		return out
	case info.pushLen == -1:
		out := make([]byte, 0, 2+len(p.Data))
		out = append(out, byte(p.Op), byte(len(p.Data)))
		out = append(out, p.Data...)
		return out
	case info.pushLen == -2:
		out := make([]byte, 2+2+len(p.Data))
		out[0] = byte(p.Op)
		binary.LittleEndian.PutUint16(out[1:3], uint16(len(p.Data)))
		copy(out[3:], p.Data)
		return out[:3+len(p.Data)]
	case info.pushLen == -4:
		out := make([]byte, 5+len(p.Data))
		out[0] = byte(p.Op)
		binary.LittleEndian.PutUint32(out[1:5], uint32(len(p.Data)))
		copy(out[5:], p.Data)
		return out
	}
	return []byte{byte(p.Op)}
}

// ParseScript converts raw script bytes into an ordered token sequence.
// Parsing is pure and does not enforce minimal-push encoding — that is
// an interpreter-time check gated on the MINIMALDATA flag.
func ParseScript(b []byte) ([]ParsedOp, error) {
	if len(b) > maxScriptSize {
		return nil, ErrScriptTooLong
	}

	ops := make([]ParsedOp, 0, len(b))
	for i := 0; i < len(b); {
		opByte := b[i]
		info := opcodeArray[opByte]
		if !info.known {
			ops = append(ops, ParsedOp{Op: Op(opByte)})
			i++
			continue
		}

		op := Op(opByte)
		i++

		switch {
		case info.pushLen == 0:
			ops = append(ops, ParsedOp{Op: op})

		case info.pushLen > 0:
			n := info.pushLen
			if i+n > len(b) {
				return nil, ErrTruncatedPush
			}
			ops = append(ops, ParsedOp{Op: op, Data: b[i : i+n]})
			i += n

		default: // PUSHDATA1/2/4
			lenBytes := -info.pushLen
			if i+lenBytes > len(b) {
				return nil, ErrTruncatedPush
			}
			var n int
			switch lenBytes {
			case 1:
				n = int(b[i])
			case 2:
				n = int(binary.LittleEndian.Uint16(b[i : i+2]))
			case 4:
				n = int(binary.LittleEndian.Uint32(b[i : i+4]))
			}
			i += lenBytes
			if i+n > len(b) {
				return nil, ErrTruncatedPush
			}
			ops = append(ops, ParsedOp{Op: op, Data: b[i : i+n]})
			i += n
		}
	}
	return ops, nil
}

// UnparseScript is the inverse of ParseScript.
func UnparseScript(ops []ParsedOp) []byte {
	var out []byte
	for _, op := range ops {
		out = append(out, op.bytes()...)
	}
	return out
}

// canonicalPush reports whether a push token uses the shortest encoding
// that could express its payload — the check MINIMALDATA enforces.
func canonicalPush(p ParsedOp) bool {
	info := p.info()
	if info.pushLen == 0 {
		return true // not a push at all
	}
	dataLen := len(p.Data)

	switch {
	case dataLen == 0:
		return p.Op == Op0
	case dataLen == 1 && p.Data[0] >= 1 && p.Data[0] <= 16:
		return p.Op == opcodeForSmallInt(int(p.Data[0]))
	case dataLen == 1 && p.Data[0] == 0x81:
		return p.Op == Op1Negate
	case dataLen <= 75:
		return info.pushLen == dataLen
	case dataLen <= 255:
		return p.Op == OpPushData1
	case dataLen <= 65535:
		return p.Op == OpPushData2
	default:
		return p.Op == OpPushData4
	}
}

// DisasmString formats a disassembled script for one-line printing,
// mirroring hsk81-btcscript's DisasmString/disasm helpers.
func DisasmString(b []byte) (string, error) {
	ops, err := ParseScript(b)
	if err != nil {
		return "", err
	}

	out := ""
	for i, op := range ops {
		if i > 0 {
			out += " "
		}
		out += disasmOp(op)
	}
	return out, nil
}

func disasmOp(op ParsedOp) string {
	info := op.info()
	if !info.known {
		return fmt.Sprintf("[invalid-0x%02x]", byte(op.Op))
	}
	if info.pushLen != 0 {
		return hex.EncodeToString(op.Data)
	}
	return info.name
}
