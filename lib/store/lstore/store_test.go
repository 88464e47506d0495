package lstore

import (
	"testing"

	"github.com/ValentinKolb/rKV/lib/store"
	storetesting "github.com/ValentinKolb/rKV/lib/store/testing"
)

func Test(t *testing.T) {
	storetesting.RunIStoreTests(t, "LocalStore", func() store.IStore {
		return NewLocalStore(0)
	})
}

func Benchmark(b *testing.B) {
	storetesting.RunIStoreBenchmarks(b, "LocalStore", func() store.IStore {
		return NewLocalStore(0)
	})
}

// TestSubscriberBacklog tests that the configured backlog bounds each subscriber
func TestSubscriberBacklog(t *testing.T) {
	st := NewLocalStore(1)
	sub := st.Subscribe("news")

	if n := st.Publish("news", []byte("1")); n != 1 {
		t.Errorf("Expected first publish to reach 1 subscriber, got %d", n)
	}
	if n := st.Publish("news", []byte("2")); n != 0 {
		t.Errorf("Expected overflowing publish to reach 0 subscribers, got %d", n)
	}
	if sub.Err() == nil {
		t.Errorf("Expected subscriber to be dropped")
	}
}
