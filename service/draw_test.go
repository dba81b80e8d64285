package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberPicker_Pick(t *testing.T) {
	picker := NewNumberPicker()

	t.Run("stays inside the range", func(t *testing.T) {
		for _, max := range []int{1, 2, 10, 100} {
			for i := 0; i < 200; i++ {
				n, err := picker.Pick(max)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, n, 1)
				assert.LessOrEqual(t, n, max)
			}
		}
	})

	t.Run("single player game always draws 1", func(t *testing.T) {
		n, err := picker.Pick(1)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("covers the whole range", func(t *testing.T) {
		seen := make(map[int]bool)
		for i := 0; i < 500; i++ {
			n, err := picker.Pick(5)
			require.NoError(t, err)
			seen[n] = true
		}
		assert.Len(t, seen, 5)
	})

	t.Run("rejects non-positive range", func(t *testing.T) {
		_, err := picker.Pick(0)
		require.Error(t, err)

		_, err = picker.Pick(-3)
		require.Error(t, err)
	})
}
