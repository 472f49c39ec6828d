package sync

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardedMutex_SerializesSameKey(t *testing.T) {
	m := NewShardedMutex(4)
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Do("agent-1", func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestShardedMutex_Do_ReturnsError(t *testing.T) {
	m := NewShardedMutex(0)
	want := errors.New("boom")
	assert.ErrorIs(t, m.Do("k", func() error { return want }), want)

	// The shard is released after fn returns.
	m.Lock("k")
	m.Unlock("k")
}

func TestShardedMutex_ShardRange(t *testing.T) {
	m := NewShardedMutex(0)
	assert.Len(t, m.shards, defaultShards)
	assert.Equal(t, 0, m.shardFor(""))
	for i := 0; i < 200; i++ {
		s := m.shardFor(fmt.Sprintf("key-%d", i))
		assert.GreaterOrEqual(t, s, 0)
		assert.Less(t, s, defaultShards)
	}
	assert.Equal(t, m.shardFor("same"), m.shardFor("same"))
}
