package testing

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/ValentinKolb/rKV/lib/store"
)

// RunIStoreBenchmarks runs all benchmarks for an IStore implementation
func RunIStoreBenchmarks(b *testing.B, name string, factory store.Factory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Set", func(b *testing.B) {
			benchmarkSet(b, factory())
		})

		b.Run("SetLargeValue", func(b *testing.B) {
			benchmarkSetLargeValue(b, factory())
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory())
		})

		b.Run("Publish", func(b *testing.B) {
			benchmarkPublish(b, factory())
		})

		b.Run("MixedUsage", func(b *testing.B) {
			benchmarkMixedUsage(b, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func benchmarkSet(b *testing.B, st store.IStore) {
	value := []byte("benchmark-value")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			st.Set(fmt.Sprintf("key-%d", counter%10000), value)
			counter++
		}
	})
}

func benchmarkSetLargeValue(b *testing.B, st store.IStore) {
	value := bytes.Repeat([]byte("x"), 64*1024)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			st.Set(fmt.Sprintf("key-%d", counter%100), value)
			counter++
		}
	})
}

func benchmarkGet(b *testing.B, st store.IStore) {
	const keys = 10000
	for i := 0; i < keys; i++ {
		st.Set(fmt.Sprintf("key-%d", i), []byte("benchmark-value"))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			st.Get(fmt.Sprintf("key-%d", r.Intn(keys)))
		}
	})
}

func benchmarkPublish(b *testing.B, st store.IStore) {
	sub := st.Subscribe("bench")
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range sub.Messages() {
		}
	}()

	payload := []byte("benchmark-message")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		st.Publish("bench", payload)
	}
	b.StopTimer()

	sub.Close()
	<-done
}

func benchmarkMixedUsage(b *testing.B, st store.IStore) {
	const keys = 1000
	value := []byte("benchmark-value")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			key := fmt.Sprintf("key-%d", r.Intn(keys))
			// 80% reads, 20% writes
			if r.Intn(10) < 8 {
				st.Get(key)
			} else {
				st.Set(key, value)
			}
		}
	})
}
