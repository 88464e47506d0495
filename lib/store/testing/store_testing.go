package testing

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/rKV/lib/pubsub"
	"github.com/ValentinKolb/rKV/lib/store"
)

// RunIStoreTests runs the conformance test suite for an IStore implementation.
// factory must return a new, empty store on every call.
func RunIStoreTests(t *testing.T, name string, factory store.Factory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("CopySemantics", func(t *testing.T) {
			testCopySemantics(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("Snapshot", func(t *testing.T) {
			testSnapshot(t, factory())
		})

		t.Run("PublishSubscribe", func(t *testing.T) {
			testPublishSubscribe(t, factory())
		})

		t.Run("KeysAndChannelsAreSeparate", func(t *testing.T) {
			testNamespaces(t, factory())
		})

		t.Run("ConcurrentAccess", func(t *testing.T) {
			testConcurrentAccess(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, st store.IStore) {
	testKey := "test-key"
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	st.Set(testKey, testValue1)

	result, exists := st.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	st.Set(testKey, testValue2)

	result, exists = st.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	if _, exists = st.Get("nonexistent-key"); exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	if st.Len() != 1 {
		t.Errorf("Expected Len() = 1, got %d", st.Len())
	}
	if st.Index() != 2 {
		t.Errorf("Expected Index() = 2 after two writes, got %d", st.Index())
	}
}

func testCopySemantics(t *testing.T, st store.IStore) {
	value := []byte("original")
	st.Set("key", value)

	// mutating the input after Set must not change the stored value
	value[0] = 'X'
	result, _ := st.Get("key")
	if string(result) != "original" {
		t.Errorf("Stored value changed with the input slice: %s", result)
	}

	// mutating a returned value must not change the stored value
	result[0] = 'Y'
	again, _ := st.Get("key")
	if string(again) != "original" {
		t.Errorf("Stored value changed with the returned slice: %s", again)
	}
}

func testEdgeCases(t *testing.T, st store.IStore) {
	// empty key and empty value are valid
	st.Set("", []byte{})
	result, exists := st.Get("")
	if !exists {
		t.Errorf("Expected empty key to exist")
	}
	if result == nil || len(result) != 0 {
		t.Errorf("Expected empty non-nil value, got %#v", result)
	}

	// nil values are stored as empty values
	st.Set("nil", nil)
	if result, exists = st.Get("nil"); !exists || len(result) != 0 {
		t.Errorf("Expected empty value for nil input, got %#v (exists=%v)", result, exists)
	}

	// binary values survive unchanged
	binary := []byte{0, 1, '\r', '\n', 255}
	st.Set("binary", binary)
	if result, _ = st.Get("binary"); !bytes.Equal(result, binary) {
		t.Errorf("Expected %v, got %v", binary, result)
	}

	// large values
	large := bytes.Repeat([]byte("x"), 1<<20)
	st.Set("large", large)
	if result, _ = st.Get("large"); !bytes.Equal(result, large) {
		t.Errorf("Large value did not round trip (len %d)", len(result))
	}
}

func testSnapshot(t *testing.T, st store.IStore) {
	for i := 0; i < 10; i++ {
		st.Set(fmt.Sprintf("key-%d", i), []byte(fmt.Sprintf("value-%d", i)))
	}

	snapshot := st.Snapshot()
	if len(snapshot) != 10 {
		t.Fatalf("Expected 10 entries in snapshot, got %d", len(snapshot))
	}
	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("key-%d", i)
		if string(snapshot[key]) != fmt.Sprintf("value-%d", i) {
			t.Errorf("Snapshot[%s] = %s", key, snapshot[key])
		}
	}

	// the snapshot is a copy
	snapshot["key-0"][0] = 'X'
	st.Set("key-1", []byte("changed"))
	if result, _ := st.Get("key-0"); string(result) != "value-0" {
		t.Errorf("Store changed through the snapshot: %s", result)
	}
	if string(snapshot["key-1"]) != "value-1" {
		t.Errorf("Snapshot changed with the store: %s", snapshot["key-1"])
	}
}

func testPublishSubscribe(t *testing.T, st store.IStore) {
	if n := st.Publish("news", []byte("nobody")); n != 0 {
		t.Errorf("Expected 0 receivers without subscribers, got %d", n)
	}

	subA := st.Subscribe("news")
	subB := st.Subscribe("news")
	defer subA.Close()
	defer subB.Close()

	payload := []byte("hello")
	if n := st.Publish("news", payload); n != 2 {
		t.Errorf("Expected 2 receivers, got %d", n)
	}
	payload[0] = 'X'

	for name, sub := range map[string]*pubsub.Subscription{"a": subA, "b": subB} {
		select {
		case msg := <-sub.Messages():
			if msg.Channel != "news" || string(msg.Payload) != "hello" {
				t.Errorf("Subscriber %s received %s on %s", name, msg.Payload, msg.Channel)
			}
		case <-time.After(time.Second):
			t.Errorf("Subscriber %s received nothing", name)
		}
	}
}

func testNamespaces(t *testing.T, st store.IStore) {
	st.Set("news", []byte("value"))
	if n := st.Publish("news", []byte("msg")); n != 0 {
		t.Errorf("A key must not create a channel, got %d receivers", n)
	}

	sub := st.Subscribe("other")
	defer sub.Close()
	if _, exists := st.Get("other"); exists {
		t.Errorf("A channel must not create a key")
	}
}

func testConcurrentAccess(t *testing.T, st store.IStore) {
	const (
		writers = 8
		readers = 8
		rounds  = 500
	)

	// every written value is one of these two, a reader must never see anything else
	valueA := bytes.Repeat([]byte("a"), 256)
	valueB := bytes.Repeat([]byte("b"), 256)
	st.Set("shared", valueA)

	var wg sync.WaitGroup
	errs := make(chan error, readers)

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				if (w+i)%2 == 0 {
					st.Set("shared", valueA)
				} else {
					st.Set("shared", valueB)
				}
				st.Set(fmt.Sprintf("key-%d-%d", w, i), []byte("x"))
			}
		}(w)
	}

	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				value, exists := st.Get("shared")
				if !exists || !(bytes.Equal(value, valueA) || bytes.Equal(value, valueB)) {
					errs <- fmt.Errorf("observed torn value %q (exists=%v)", value, exists)
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	if expected := writers*rounds + 1; st.Len() != expected {
		t.Errorf("Expected %d keys, got %d", expected, st.Len())
	}
}
