package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_AutoSave(t *testing.T) {
	store := memory.NewStore()
	manager := session.NewManager(store)
	auth := ports.AuthenticatorFunc(func(context.Context, string, string) (string, error) { return "u-1", nil })

	eng, err := stepwise.New(stepwise.WithAuthenticator(auth))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := manager.AutoSave(ctx, "auto", eng)

	require.NoError(t, eng.SelectFlow(ctx, domain.FlowEmailPass))
	require.NoError(t, eng.SubmitEmail(ctx, "ada@example.com"))

	require.Eventually(t, func() bool {
		data, err := store.Load(ctx, "auto")
		return err == nil && data.Email != nil && *data.Email == "ada@example.com"
	}, 2*time.Second, 10*time.Millisecond)

	eng.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("autosave did not stop with the engine")
	}

	data, err := store.Load(context.Background(), "auto")
	require.NoError(t, err)
	assert.Equal(t, domain.FlowEmailPass, data.FlowType)
}

func TestManager_AutoSaveStopsWithContext(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	auth := ports.AuthenticatorFunc(func(context.Context, string, string) (string, error) { return "u-1", nil })
	eng, err := stepwise.New(stepwise.WithAuthenticator(auth))
	require.NoError(t, err)
	defer eng.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := manager.AutoSave(ctx, "auto", eng)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("autosave did not stop with its context")
	}
}
