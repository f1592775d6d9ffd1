package cache

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/IliaW/lead-hunter/config"
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	items  map[string]*memcache.Item
	setErr error
	closed bool
}

func (m *memStore) Get(key string) (*memcache.Item, error) {
	item, ok := m.items[key]
	if !ok {
		return nil, memcache.ErrCacheMiss
	}
	return item, nil
}

func (m *memStore) Set(item *memcache.Item) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.items[item.Key] = item
	return nil
}

func (m *memStore) Close() error {
	m.closed = true
	return nil
}

func TestMemcachedClient_RoundTrip(t *testing.T) {
	store := &memStore{items: map[string]*memcache.Item{}}
	mc := &MemcachedClient{client: store, ttl: 24 * time.Hour}

	_, ok := mc.GetQuery("football academy trials")
	assert.False(t, ok)

	mc.SaveQuery("football academy trials", []string{"https://a.com", "https://b.com"})
	urls, ok := mc.GetQuery("football academy trials")

	require.True(t, ok)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, urls)
	require.Len(t, store.items, 1)
	for key, item := range store.items {
		assert.NotContains(t, key, " ")
		assert.Equal(t, int32(86400), item.Expiration)
	}
}

func TestMemcachedClient_SetFailureIsSwallowed(t *testing.T) {
	store := &memStore{items: map[string]*memcache.Item{}, setErr: errors.New("server down")}
	mc := &MemcachedClient{client: store, ttl: time.Hour}

	mc.SaveQuery("q", []string{"https://a.com"})

	_, ok := mc.GetQuery("q")
	assert.False(t, ok)
}

func TestMemcachedClient_BrokenEntry(t *testing.T) {
	store := &memStore{items: map[string]*memcache.Item{
		queryKey("q"): {Key: queryKey("q"), Value: []byte("not json")},
	}}
	mc := &MemcachedClient{client: store}

	_, ok := mc.GetQuery("q")
	assert.False(t, ok)

	mc.Close()
	assert.True(t, store.closed)
}

func TestNewMemcachedClient_UnreachableServerReturnsError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	mc, err := NewMemcachedClient(&config.CacheConfig{Enabled: true, Servers: []string{addr}})
	assert.Error(t, err)
	assert.Nil(t, mc)

	mc, err = NewMemcachedClient(&config.CacheConfig{Enabled: true})
	assert.Error(t, err)
	assert.Nil(t, mc)
}
