package cluster

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/rKV/rpc/client"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/server"
	"github.com/ValentinKolb/rKV/rpc/transport/tcp"
)

// startNodes starts n servers and returns them with their addresses
func startNodes(t *testing.T, n int) ([]*server.Server, []string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	servers := make([]*server.Server, n)
	addrs := make([]string, n)
	for i := range servers {
		s := server.NewServer(common.ServerConfig{
			Endpoint: "127.0.0.1:0",
			LogLevel: "error",
		}, tcp.NewServerConnector())

		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Serve(ctx)
		}()

		select {
		case <-s.Ready():
		case <-time.After(5 * time.Second):
			t.Fatalf("node %d did not become ready", i)
		}
		servers[i] = s
		addrs[i] = s.Addr().String()
	}
	return servers, addrs
}

func newRouter(t *testing.T, nodes []string) *Router {
	t.Helper()
	r, err := NewRouter(nodes, common.ClientConfig{TimeoutSecond: 5, RetryCount: 3}, tcp.NewClientConnector())
	if err != nil {
		t.Fatalf("NewRouter() error: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestNewRouter(t *testing.T) {
	connector := tcp.NewClientConnector()

	if _, err := NewRouter(nil, common.ClientConfig{}, connector); err != ErrNoNodes {
		t.Errorf("NewRouter(nil) error = %v, want ErrNoNodes", err)
	}
	if _, err := NewRouter([]string{"a:1", " "}, common.ClientConfig{}, connector); err == nil {
		t.Errorf("NewRouter() with blank address succeeded")
	}

	nodes := []string{"a:1", "b:2"}
	r, err := NewRouter(nodes, common.ClientConfig{}, connector)
	if err != nil {
		t.Fatalf("NewRouter() error: %v", err)
	}
	nodes[0] = "changed"
	if r.Nodes()[0] != "a:1" {
		t.Errorf("Router shares the caller's node slice")
	}
}

func TestTargetNode(t *testing.T) {
	nodes := []string{"n1:1", "n2:2", "n3:3"}
	r, _ := NewRouter(nodes, common.ClientConfig{}, tcp.NewClientConnector())

	t.Run("Deterministic", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			key := fmt.Sprintf("key-%d", i)
			if r.TargetNode(key) != r.TargetNode(key) {
				t.Fatalf("TargetNode(%s) is not stable", key)
			}
			expected := nodes[HashString(key, 0)%uint64(len(nodes))]
			if got := r.TargetNode(key); got != expected {
				t.Errorf("TargetNode(%s) = %s, want %s", key, got, expected)
			}
		}
	})

	t.Run("UsesAllNodes", func(t *testing.T) {
		seen := make(map[string]int)
		for i := 0; i < 1000; i++ {
			seen[r.TargetNode(fmt.Sprintf("key-%d", i))]++
		}
		for _, node := range nodes {
			if seen[node] < 200 {
				t.Errorf("node %s owns %d of 1000 keys", node, seen[node])
			}
		}
	})

	t.Run("SingleNode", func(t *testing.T) {
		single, _ := NewRouter([]string{"only:1"}, common.ClientConfig{}, tcp.NewClientConnector())
		if got := single.TargetNode("anything"); got != "only:1" {
			t.Errorf("TargetNode() = %s, want only:1", got)
		}
	})
}

func TestHashString(t *testing.T) {
	// FNV-1a reference values
	if got := HashString("", 0); got != 14695981039346656037 {
		t.Errorf("HashString(\"\") = %d", got)
	}
	if got := HashString("a", 0); got != 0xaf63dc4c8601ec8c {
		t.Errorf("HashString(a) = %x", got)
	}
	if HashString("a", 0) == HashString("a", 1) {
		t.Errorf("seed does not change the hash")
	}
}

func TestRouting(t *testing.T) {
	servers, addrs := startNodes(t, 3)
	r := newRouter(t, addrs)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("key-%d", i)
		if err := r.Set(ctx, key, []byte(key)); err != nil {
			t.Fatalf("Set(%s) error: %v", key, err)
		}
	}

	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("key-%d", i)
		value, ok, err := r.Get(ctx, key)
		if err != nil || !ok || string(value) != key {
			t.Errorf("Get(%s) = %q, %v, %v", key, value, ok, err)
		}

		// the key lives on its owner only
		for j, s := range servers {
			_, stored := s.Store().Get(key)
			if owner := addrs[j] == r.TargetNode(key); stored != owner {
				t.Errorf("key %s stored on %s = %v, owner = %v", key, addrs[j], stored, owner)
			}
		}
	}

	if _, ok, err := r.Get(ctx, "missing"); err != nil || ok {
		t.Errorf("Get(missing) = %v, %v; want false, nil", ok, err)
	}
}

func TestPublishRouting(t *testing.T) {
	_, addrs := startNodes(t, 2)
	r := newRouter(t, addrs)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	owner := r.TargetNode("news")
	c, err := client.Connect(ctx, owner, common.ClientConfig{TimeoutSecond: 5}, tcp.NewClientConnector())
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer c.Close()

	sub, err := c.Subscribe(ctx, "news")
	if err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}

	n, err := r.Publish(ctx, "news", []byte("routed"))
	if err != nil || n != 1 {
		t.Fatalf("Publish() = %d, %v; want 1, nil", n, err)
	}
	msg, err := sub.Receive(ctx)
	if err != nil || string(msg.Payload) != "routed" {
		t.Errorf("Receive() = %+v, %v", msg, err)
	}
}

func TestEviction(t *testing.T) {
	_, addrs := startNodes(t, 1)
	r := newRouter(t, addrs)
	ctx := context.Background()

	if err := r.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	first, ok := r.clients.Load(addrs[0])
	if !ok {
		t.Fatalf("no cached client after first request")
	}

	// break the cached connection
	_ = first.Close()
	if _, _, err := r.Get(ctx, "k"); err == nil {
		t.Fatalf("Get() on closed client succeeded")
	}
	if _, ok := r.clients.Load(addrs[0]); ok {
		t.Fatalf("broken client was not evicted")
	}

	// the next request dials again
	value, ok, err := r.Get(ctx, "k")
	if err != nil || !ok || string(value) != "v" {
		t.Errorf("Get() after eviction = %q, %v, %v", value, ok, err)
	}
	second, _ := r.clients.Load(addrs[0])
	if second == first {
		t.Errorf("evicted client is still cached")
	}
}

func TestUnreachableNode(t *testing.T) {
	r, _ := NewRouter([]string{"127.0.0.1:1"}, common.ClientConfig{TimeoutSecond: 1, RetryCount: 1}, tcp.NewClientConnector())
	defer r.Close()

	if err := r.Set(context.Background(), "k", []byte("v")); err == nil {
		t.Errorf("Set() to unreachable node succeeded")
	}
	if r.clients.Size() != 0 {
		t.Errorf("failed dial was cached")
	}
}

func TestConcurrentRouting(t *testing.T) {
	_, addrs := startNodes(t, 2)
	r := newRouter(t, addrs)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				key := fmt.Sprintf("%d-%d", id, j)
				if err := r.Set(context.Background(), key, []byte("v")); err != nil {
					t.Errorf("Set(%s) error: %v", key, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if r.clients.Size() != 2 {
		t.Errorf("cached clients = %d, want 2", r.clients.Size())
	}
}
