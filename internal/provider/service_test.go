package provider_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismrgb/prismd/internal/provider"
	"github.com/prismrgb/prismd/internal/sdk"
)

func TestServiceDelegation(t *testing.T) {
	t.Parallel()

	binding := newFakeBinding()
	binding.plug(sdk.SlotKeyboardL, sdk.LayoutANSI)

	svc := provider.NewService(provider.New(binding))

	status := svc.Status()
	assert.False(t, status.Initialized)
	assert.Zero(t, status.Devices)

	ok, err := svc.Rescan(context.Background(), provider.ScanOptions{ExclusiveAccess: true})
	require.NoError(t, err)
	assert.True(t, ok)

	status = svc.Status()
	assert.True(t, status.Initialized)
	assert.True(t, status.ExclusiveAccess)
	assert.Equal(t, 1, status.Devices)
	assert.Equal(t, "x64", status.LoadedArchitecture)

	assert.Len(t, svc.Devices(), 1)
	assert.Len(t, svc.History(), 1)

	svc.Reset(context.Background())
}

func TestServiceSerializesCallers(t *testing.T) {
	t.Parallel()

	binding := newFakeBinding()
	binding.plug(sdk.SlotKeyboardL, sdk.LayoutANSI)
	binding.plug(sdk.SlotKeyboardM, sdk.LayoutISO)

	svc := provider.NewService(provider.New(binding))

	// The provider itself carries no locking; hammering the service from
	// multiple goroutines must not corrupt the published collection.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 10; j++ {
				_, _ = svc.Rescan(context.Background(), provider.ScanOptions{})
				_ = svc.Devices()
				svc.Reset(context.Background())
			}
		}()
	}

	wg.Wait()

	assert.Len(t, svc.Devices(), 2)
	assert.True(t, svc.Status().Initialized)
}
