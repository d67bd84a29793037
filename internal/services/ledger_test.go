package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReminderLedger_Claim(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ledger := NewMemoryReminderLedger(clock, time.Hour)
	ctx := context.Background()

	ok, err := ledger.Claim(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.Claim(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _ = ledger.Claim(ctx, "other", time.Hour)
	assert.True(t, ok)

	clock.Advance(time.Hour)
	ok, _ = ledger.Claim(ctx, "k", time.Hour)
	assert.True(t, ok, "claims expire with the ttl")
}
