// Package random implements the winner draw: cryptographically seeded,
// uniform selection without replacement.
package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Shuffle performs a cryptographically secure Fisher-Yates shuffle of the
// slice in place.
func Shuffle[T any](slice []T) error {
	for i := len(slice) - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("failed to generate random number: %w", err)
		}
		j := int(jBig.Int64())
		slice[i], slice[j] = slice[j], slice[i]
	}
	return nil
}

// PickWinners draws up to k distinct entries uniformly at random. With k or
// fewer candidates everyone wins; the returned order is the draw order and
// carries no meaning beyond medal labeling.
func PickWinners[T any](candidates []T, k int) ([]T, error) {
	if k <= 0 || len(candidates) == 0 {
		return []T{}, nil
	}

	drawn := make([]T, len(candidates))
	copy(drawn, candidates)
	if err := Shuffle(drawn); err != nil {
		return nil, err
	}
	if len(drawn) > k {
		drawn = drawn[:k]
	}
	return drawn, nil
}
