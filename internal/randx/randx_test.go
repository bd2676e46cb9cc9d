package randx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexString(t *testing.T) {
	s1, err := HexString(16)
	require.NoError(t, err)
	s2, err := HexString(16)
	require.NoError(t, err)

	assert.Len(t, s1, 32)
	assert.NotEqual(t, s1, s2)
}

func TestPrefixedID(t *testing.T) {
	id := PrefixedID("usr")
	assert.True(t, strings.HasPrefix(id, "usr_"))
	assert.NotEqual(t, id, PrefixedID("usr"))
}

func TestNumericCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := NumericCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "non-digit %q in %q", r, code)
		}
	}
}

func TestWipe(t *testing.T) {
	b := []byte("1234")
	Wipe(b)
	assert.Equal(t, []byte{0, 0, 0, 0}, b)
	Wipe(nil)
}
