package sequence_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avillegas/facturacr/sequence"
)

var testScope = sequence.Scope{
	CompanyID:    "3101123456",
	DocumentType: "01",
	Terminal:     "01",
	Branch:       "001",
}

func TestMemoryStoreAllocateNext(t *testing.T) {
	ctx := context.Background()
	store := sequence.NewMemoryStore()

	var last int64
	for i := 0; i < 1000; i++ {
		v, err := store.AllocateNext(ctx, testScope)
		require.NoError(t, err)
		assert.Greater(t, v, last)
		last = v
	}
	assert.Equal(t, int64(1000), last)
}

func TestMemoryStoreAllocateNextConcurrent(t *testing.T) {
	ctx := context.Background()
	store := sequence.NewMemoryStore()

	const workers = 50
	const perWorker = 20

	values := make(chan int64, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				v, err := store.AllocateNext(ctx, testScope)
				if err == nil {
					values <- v
				}
			}
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]bool)
	for v := range values {
		assert.False(t, seen[v], "value %d allocated twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestMemoryStoreScopesAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := sequence.NewMemoryStore()

	other := testScope
	other.DocumentType = "04"

	v1, err := store.AllocateNext(ctx, testScope)
	require.NoError(t, err)
	v2, err := store.AllocateNext(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v1)
	assert.Equal(t, int64(1), v2)
}

func TestMemoryStoreResetForEnvironment(t *testing.T) {
	ctx := context.Background()
	store := sequence.NewMemoryStore()

	require.NoError(t, store.ResetForEnvironment(ctx, testScope.CompanyID, sequence.EnvironmentTest))
	for i := 0; i < 5; i++ {
		_, err := store.AllocateNext(ctx, testScope)
		require.NoError(t, err)
	}

	// Same environment: no-op.
	require.NoError(t, store.ResetForEnvironment(ctx, testScope.CompanyID, sequence.EnvironmentTest))
	v, err := store.AllocateNext(ctx, testScope)
	require.NoError(t, err)
	assert.Equal(t, int64(6), v)

	// Environment change zeroes the company's counters.
	require.NoError(t, store.ResetForEnvironment(ctx, testScope.CompanyID, sequence.EnvironmentProduction))
	v, err = store.AllocateNext(ctx, testScope)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestMemoryStoreResetLeavesOtherCompaniesAlone(t *testing.T) {
	ctx := context.Background()
	store := sequence.NewMemoryStore()

	other := testScope
	other.CompanyID = "3101654321"

	_, err := store.AllocateNext(ctx, testScope)
	require.NoError(t, err)
	_, err = store.AllocateNext(ctx, other)
	require.NoError(t, err)

	require.NoError(t, store.ResetForEnvironment(ctx, testScope.CompanyID, sequence.EnvironmentProduction))

	v, err := store.AllocateNext(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestMemoryStoreSecurityCode(t *testing.T) {
	ctx := context.Background()
	store := sequence.NewMemoryStore()

	code, err := store.SecurityCode(ctx, testScope.CompanyID)
	require.NoError(t, err)
	assert.Len(t, code, 8)

	// Idempotent: the same company always gets the same code.
	again, err := store.SecurityCode(ctx, testScope.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, code, again)
}
