package script

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func runScript(t *testing.T, raw []byte, flags Flags) ([][]byte, error) {
	t.Helper()
	ops, err := ParseScript(raw)
	require.NoError(t, err)
	ctx := &Context{Flags: flags}
	e := NewEngine(ctx, ops, nil)
	err = e.Run()
	return e.Stack(), err
}

func TestEngineArithmeticSub(t *testing.T) {
	raw := []byte{byte(Op4), byte(Op3), byte(OpSub)}
	stack, err := runScript(t, raw, 0)
	require.NoError(t, err)
	n, err := decodeNum(stack[len(stack)-1], defaultScriptNumLen)
	require.NoError(t, err)
	require.Equal(t, ScriptNum(-1), n)
}

func TestEngineArithmeticLessThan(t *testing.T) {
	raw := []byte{byte(Op3), byte(Op4), byte(OpLessThan)}
	stack, err := runScript(t, raw, 0)
	require.NoError(t, err)
	require.True(t, castToBoolean(stack[len(stack)-1]))
}

func TestEngineNumericEdgeOneAdd(t *testing.T) {
	raw := []byte{1, 0x81, byte(Op1Add)}
	stack, err := runScript(t, raw, 0)
	require.NoError(t, err)
	require.Len(t, stack, 1)
	require.Empty(t, stack[0])
}

func TestEngineDisabledOpcodeFailsInDeadBranch(t *testing.T) {
	raw := []byte{byte(Op0), byte(OpIf), byte(OpCat), byte(OpEndIf), byte(Op1)}
	_, err := runScript(t, raw, 0)
	require.ErrorIs(t, err, ErrDisabledOpcode)
}

func TestEngineIfElse(t *testing.T) {
	trueBranch := []byte{byte(Op1), byte(OpIf), byte(Op2), byte(OpElse), byte(Op3), byte(OpEndIf)}
	stack, err := runScript(t, trueBranch, 0)
	require.NoError(t, err)
	require.Equal(t, ScriptNum(2), mustDecode(t, stack[0]))

	falseBranch := []byte{byte(Op0), byte(OpIf), byte(Op2), byte(OpElse), byte(Op3), byte(OpEndIf)}
	stack, err = runScript(t, falseBranch, 0)
	require.NoError(t, err)
	require.Equal(t, ScriptNum(3), mustDecode(t, stack[0]))
}

func mustDecode(t *testing.T, b []byte) ScriptNum {
	t.Helper()
	n, err := decodeNum(b, defaultScriptNumLen)
	require.NoError(t, err)
	return n
}

func TestEngineUnbalancedConditional(t *testing.T) {
	_, err := runScript(t, []byte{byte(OpEndIf)}, 0)
	require.ErrorIs(t, err, ErrUnbalancedConditional)
}

func TestEngineMissingEndif(t *testing.T) {
	raw := []byte{byte(Op1), byte(OpIf), byte(Op1)}
	_, err := runScript(t, raw, 0)
	require.ErrorIs(t, err, ErrMissingEndif)
}

func TestEngineStackOverflow(t *testing.T) {
	raw := make([]byte, 1001)
	for i := range raw {
		raw[i] = byte(Op1)
	}
	_, err := runScript(t, raw, 0)
	require.ErrorIs(t, err, ErrStackOverflow)
}

func TestEngineDiscourageUpgradableNop(t *testing.T) {
	raw := []byte{byte(OpNop1)}

	_, err := runScript(t, raw, 0)
	require.NoError(t, err)

	_, err = runScript(t, raw, ScriptVerifyDiscourageUpgradableNops)
	require.ErrorIs(t, err, ErrDiscouragedUpgradableNop)
}

func TestEnginePickRoll(t *testing.T) {
	// OP_1 OP_2 OP_3 OP_2 OP_PICK -> duplicates the bottom value (1)
	raw := []byte{byte(Op1), byte(Op2), byte(Op3), byte(Op2), byte(OpPick)}
	stack, err := runScript(t, raw, 0)
	require.NoError(t, err)
	require.Equal(t, ScriptNum(1), mustDecode(t, stack[len(stack)-1]))

	// OP_1 OP_2 OP_3 OP_2 OP_ROLL -> moves the bottom value (1) to the top
	raw = []byte{byte(Op1), byte(Op2), byte(Op3), byte(Op2), byte(OpRoll)}
	stack, err = runScript(t, raw, 0)
	require.NoError(t, err)
	require.Len(t, stack, 3)
	require.Equal(t, ScriptNum(1), mustDecode(t, stack[len(stack)-1]))
}

func TestEngineMinimalDataFlag(t *testing.T) {
	// OP_DATA_1 0x01 is a non-minimal encoding of the value 1 (OP_1 is
	// shorter).
	raw := []byte{1, 0x01}

	_, err := runScript(t, raw, 0)
	require.NoError(t, err)

	_, err = runScript(t, raw, ScriptVerifyMinimalData)
	require.ErrorIs(t, err, ErrNonMinimalPush)
}

func TestEngineEqualVerify(t *testing.T) {
	raw := []byte{byte(Op1), byte(Op1), byte(OpEqualVerify)}
	_, err := runScript(t, raw, 0)
	require.NoError(t, err)

	raw = []byte{byte(Op1), byte(Op2), byte(OpEqualVerify)}
	_, err = runScript(t, raw, 0)
	require.ErrorIs(t, err, ErrVerifyFailed)
}
