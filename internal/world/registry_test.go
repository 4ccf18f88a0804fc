package world

import (
	"sync"
	"testing"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	registry := NewRegistry()

	if _, ok := registry.TryGet(1); ok {
		t.Error("expected lookup of an unknown id to report absence")
	}

	player, _ := newTestPlayer(1, "Elwen")
	registry.Register(player)

	got, ok := registry.TryGet(1)
	if !ok {
		t.Fatal("expected player 1 to be registered")
	}
	if got != player {
		t.Error("lookup returned a different session than was registered")
	}
	if registry.Len() != 1 {
		t.Errorf("expected registry length 1, got %d", registry.Len())
	}
}

func TestRegistryUnregister(t *testing.T) {
	registry := NewRegistry()
	player, _ := newTestPlayer(1, "Elwen")
	registry.Register(player)

	if got := registry.Unregister(1); got != player {
		t.Error("expected Unregister to return the removed session")
	}
	if got := registry.Unregister(1); got != nil {
		t.Error("expected a second Unregister of the same id to return nil")
	}
	if _, ok := registry.TryGet(1); ok {
		t.Error("expected player 1 to be gone after Unregister")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		id := uint32(i + 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			player, _ := newTestPlayer(id, "test")
			registry.Register(player)
			registry.TryGet(id)
			registry.Snapshot()
			registry.Unregister(id)
		}()
	}
	wg.Wait()

	if registry.Len() != 0 {
		t.Errorf("expected an empty registry after all sessions left, got %d", registry.Len())
	}
}
