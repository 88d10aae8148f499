package otp_test

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/ErlanBelekov/pharmacy-auth/internal/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_SixDigitsInRange(t *testing.T) {
	g := otp.NewGenerator()

	for range 1000 {
		code, err := g.Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err, "code %q is not numeric", code)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestGenerate_ZeroEntropy_ReturnsLowerBound(t *testing.T) {
	g := otp.NewGeneratorFrom(bytes.NewReader(make([]byte, 64)))

	code, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, "100000", code)
}

func TestGenerate_ExhaustedReader_ReturnsError(t *testing.T) {
	g := otp.NewGeneratorFrom(bytes.NewReader(nil))

	_, err := g.Generate()
	assert.Error(t, err)
}
