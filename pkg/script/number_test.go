package script

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeEncodeNumRoundTrip(t *testing.T) {
	values := []ScriptNum{0, 1, -1, 127, 128, -128, 255, 256, -256, 1 << 20, -(1 << 20)}
	for _, v := range values {
		encoded := encodeNum(v)
		decoded, err := decodeNum(encoded, 8)
		require.NoError(t, err)
		require.Equal(t, v, decoded, "round trip of %d", v)
	}
}

func TestDecodeNumTooLong(t *testing.T) {
	_, err := decodeNum([]byte{1, 2, 3, 4, 5}, 4)
	require.ErrorIs(t, err, ErrNumberTooLong)
}

func TestDecodeNumEmptyIsZero(t *testing.T) {
	n, err := decodeNum(nil, 4)
	require.NoError(t, err)
	require.Equal(t, ScriptNum(0), n)
}

func TestOneAddOfNegativeOneByte(t *testing.T) {
	// [0x81] decodes to -1; OP_1ADD style arithmetic would leave 0, which
	// encodes back to the empty byte string.
	n, err := decodeNum([]byte{0x81}, 4)
	require.NoError(t, err)
	require.Equal(t, ScriptNum(-1), n)
	require.Empty(t, encodeNum(n+1))
}

func TestCastToBoolean(t *testing.T) {
	cases := []struct {
		data []byte
		want bool
	}{
		{nil, false},
		{[]byte{0x00}, false},
		{[]byte{0x80}, false}, // negative zero
		{[]byte{0x00, 0x00, 0x80}, false},
		{[]byte{0x01}, true},
		{[]byte{0x00, 0x01}, true},
	}
	for _, c := range cases {
		require.Equal(t, c.want, castToBoolean(c.data))
	}
}
