package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStateStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	data := domain.Empty().WithEmail("ada@example.com")
	require.NoError(t, store.Save(ctx, "s", data))

	*data.Email = "mallory@example.com"

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", *loaded.Email)

	*loaded.Email = "eve@example.com"
	again, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", *again.Email)
}
