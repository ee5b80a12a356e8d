package tlsedge

import "testing"

func TestTransportPool_GetReusesSameTransport(t *testing.T) {
	pool, err := NewTransportPool(PoolConfig{})
	if err != nil {
		t.Fatalf("NewTransportPool error: %v", err)
	}
	defer pool.CloseAll()

	connector := NewAuto(&pipeDialer{}, nil)

	first := pool.Get("route-a", connector)
	second := pool.Get("route-a", connector)
	if first != second {
		t.Error("Get(same key) returned distinct transports, want reuse")
	}

	third := pool.Get("route-b", connector)
	if third == first {
		t.Error("Get(different key) returned the same transport")
	}
}

func TestTransportPool_EvictRemovesEntry(t *testing.T) {
	pool, err := NewTransportPool(PoolConfig{})
	if err != nil {
		t.Fatalf("NewTransportPool error: %v", err)
	}
	defer pool.CloseAll()

	connector := NewAuto(&pipeDialer{}, nil)
	first := pool.Get("route-a", connector)
	pool.Evict("route-a")
	second := pool.Get("route-a", connector)

	if first == second {
		t.Error("expected a fresh transport after Evict, got the same one")
	}
}

func TestNormalizePoolConfig_FillsDefaults(t *testing.T) {
	got := normalizePoolConfig(PoolConfig{})
	if got.MaxIdleConns != defaultPoolMaxIdleConns {
		t.Errorf("MaxIdleConns = %d, want %d", got.MaxIdleConns, defaultPoolMaxIdleConns)
	}
	if got.Capacity != defaultPoolCapacity {
		t.Errorf("Capacity = %d, want %d", got.Capacity, defaultPoolCapacity)
	}
}
