package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAtOffset(t *testing.T) {
	err := AtOffset(Truncated, 12, "need %d bytes, have %d", 4, 1)
	require.Equal(t, Truncated, err.Kind())
	require.Equal(t, 12, err.Offset())
	require.Equal(t, -1, err.Line())
	require.Equal(t, "truncated at offset 0xc: need 4 bytes, have 1", err.Error())
}

func TestAtLine(t *testing.T) {
	err := AtLine(MalformedTrace, 7, "unmatched end frame")
	require.Equal(t, MalformedTrace, err.Kind())
	require.Equal(t, -1, err.Offset())
	require.Equal(t, 7, err.Line())
	require.Equal(t, "malformed trace at trace line 7: unmatched end frame", err.Error())
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(Overflow, 3, cause)
	require.True(t, errors.Is(wrapped, cause))
	require.True(t, IsKind(wrapped, Overflow))
}

func TestIsKindThroughFmtWrapping(t *testing.T) {
	base := AtOffset(UnsupportedOpcode, 5, "byte 0x%02x", 0xff)
	chained := fmt.Errorf("decode: %w", base)
	require.True(t, IsKind(chained, UnsupportedOpcode))
	require.False(t, IsKind(chained, Truncated))
}
