package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_ProducesValidItems(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		item := generate(rng, now)
		require.Empty(t, item.Violations(now), "item %d: %+v", i, item)
		assert.Equal(t, item.OwnerID, item.Owner.ID)
		assert.NotNil(t, item.Images)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := generate(rand.New(rand.NewSource(3)), now)
	b := generate(rand.New(rand.NewSource(3)), now)
	assert.Equal(t, a.Title, b.Title)
	assert.Equal(t, a.Location, b.Location)
	assert.Equal(t, a.Kind, b.Kind)
}
