// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreSetPersistsPair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewStore(path, nil)

	require.NoError(t, s.Set("acc-1", "ref-1"))
	require.True(t, s.Authenticated(), "store should authenticate after Set")
	require.Equal(t, "acc-1", s.Access())
	require.Equal(t, "ref-1", s.Refresh())

	info, err := os.Stat(path)
	require.NoError(t, err, "credentials file should be written")
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "credentials file should be owner-only")

	// A second store against the same path picks up the pair.
	s2 := NewStore(path, nil)
	require.NoError(t, s2.Load())
	require.Equal(t, "acc-1", s2.Access())
}

func TestStoreSetRejectsPartialPair(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "credentials.json"), nil)

	require.Error(t, s.Set("acc-only", ""), "missing refresh token must be rejected")
	require.Error(t, s.Set("", "ref-only"), "missing access token must be rejected")
	require.False(t, s.Authenticated(), "partial Set must not authenticate")
}

func TestStoreLoadMissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "credentials.json"), nil)

	require.NoError(t, s.Load(), "missing file is not an error")
	require.False(t, s.Authenticated(), "missing file must leave store signed out")
}

func TestStoreLoadIncompletePair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"access_token":"only-half"}`), 0o600))

	s := NewStore(path, nil)
	require.NoError(t, s.Load())
	require.False(t, s.Authenticated(), "incomplete on-disk pair must be discarded")
}

func TestStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewStore(path, nil)
	require.NoError(t, s.Set("acc", "ref"))

	require.NoError(t, s.Clear())
	require.False(t, s.Authenticated(), "store still authenticated after Clear")

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "credentials file still present after Clear")

	// Clearing an already-empty store is a no-op.
	require.NoError(t, s.Clear())
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "credentials.json"), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Set("acc", "ref")
		}()
		go func() {
			defer wg.Done()
			_ = s.Access()
			_ = s.Authenticated()
		}()
	}
	wg.Wait()
}

func TestRefresherSkipsWhenSignedOut(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "credentials.json"), nil)

	calls := 0
	r := NewRefresher(s, 5*time.Millisecond, func(ctx context.Context) error {
		calls++
		return nil
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	r.Run(ctx)

	require.Zero(t, calls, "refresh must not run while signed out")
}

func TestRefresherRetriesAfterFailure(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "credentials.json"), nil)
	require.NoError(t, s.Set("acc", "ref"))

	var mu sync.Mutex
	calls := 0
	done := make(chan struct{})
	r := NewRefresher(s, 5*time.Millisecond, func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 2 {
			close(done)
		}
		return errors.New("transient")
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not retry after a failed refresh")
	}
	cancel()

	// The pair survives failed refreshes.
	require.True(t, s.Authenticated(), "failed refresh must not clear credentials")
}
