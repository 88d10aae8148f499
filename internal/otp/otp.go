package otp

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

const (
	minCode = 100000
	maxCode = 999999
)

// Generator draws 6-digit numeric codes uniformly from [100000, 999999].
type Generator struct {
	rand io.Reader
}

func NewGenerator() *Generator {
	return &Generator{rand: rand.Reader}
}

// NewGeneratorFrom reads randomness from r instead of crypto/rand.
func NewGeneratorFrom(r io.Reader) *Generator {
	return &Generator{rand: r}
}

func (g *Generator) Generate() (string, error) {
	n, err := rand.Int(g.rand, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+minCode), nil
}
