package script

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStackPushPop(t *testing.T) {
	var s stack
	s.push([]byte{1})
	s.push([]byte{2})

	v, err := s.pop()
	require.NoError(t, err)
	require.Equal(t, []byte{2}, v)
	require.Equal(t, 1, s.depth())
}

func TestStackPopUnderflow(t *testing.T) {
	var s stack
	_, err := s.pop()
	require.ErrorIs(t, err, ErrStackUnderflow)
}

func TestStackPeek(t *testing.T) {
	s := stack{{1}, {2}, {3}}
	v, err := s.peek(0)
	require.NoError(t, err)
	require.Equal(t, []byte{3}, v)

	v, err = s.peek(2)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, v)

	_, err = s.peek(3)
	require.ErrorIs(t, err, ErrStackUnderflow)
}

func TestStackRemoveNth(t *testing.T) {
	s := stack{{1}, {2}, {3}}
	v, err := s.removeNth(1)
	require.NoError(t, err)
	require.Equal(t, []byte{2}, v)
	require.Equal(t, stack{{1}, {3}}, s)
}
