package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// cryptoPicker draws lucky numbers from the system's CSPRNG
type cryptoPicker struct{}

// NewNumberPicker creates the production number picker
func NewNumberPicker() NumberPicker {
	return cryptoPicker{}
}

// Pick returns a uniformly distributed number in [1, maxPlayers]
func (cryptoPicker) Pick(maxPlayers int) (int, error) {
	if maxPlayers < 1 {
		return 0, fmt.Errorf("max players must be at least 1, got %d", maxPlayers)
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(maxPlayers)))
	if err != nil {
		return 0, fmt.Errorf("failed to draw number: %w", err)
	}

	return int(n.Int64()) + 1, nil
}
