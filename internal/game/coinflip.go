package game

import (
	"crypto/rand"
	"math/big"
)

// Flipper decides a two-sided outcome. Heads reports whether the first
// party wins.
type Flipper interface {
	Heads() bool
}

// FlipFunc adapts a function to Flipper.
type FlipFunc func() bool

func (f FlipFunc) Heads() bool { return f() }

// CryptoFlipper draws an unbiased bit from crypto/rand.
type CryptoFlipper struct{}

func (CryptoFlipper) Heads() bool {
	n, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return n.Int64() == 1
}
