package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IliaW/lead-hunter/config"
	"github.com/IliaW/lead-hunter/internal"
	"github.com/bradfitz/gomemcache/memcache"
	jsoniter "github.com/json-iterator/go"
)

type QueryCache interface {
	GetQuery(query string) ([]string, bool)
	SaveQuery(query string, urls []string)
	Close()
}

type store interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Close() error
}

// MemcachedClient keeps search provider results so reruns within the TTL do not query the
// provider again.
type MemcachedClient struct {
	client store
	ttl    time.Duration
}

// NewMemcachedClient returns an error when no server answers a ping.
func NewMemcachedClient(cacheConfig *config.CacheConfig) (*MemcachedClient, error) {
	slog.Info("connecting to memcached...")
	if len(cacheConfig.Servers) == 0 {
		return nil, errors.New("no memcached servers configured")
	}
	ss := new(memcache.ServerList)
	err := ss.SetServers(cacheConfig.Servers...)
	if err != nil {
		return nil, fmt.Errorf("failed to set memcached servers: %w", err)
	}
	client := memcache.NewFromSelector(ss)
	slog.Info("pinging the memcached.")
	err = client.Ping()
	if err != nil {
		return nil, fmt.Errorf("connection to the memcached is failed: %w", err)
	}
	slog.Info("connected to memcached!")

	return &MemcachedClient{
		client: client,
		ttl:    cacheConfig.TtlForQuery,
	}, nil
}

func (mc *MemcachedClient) GetQuery(query string) ([]string, bool) {
	key := queryKey(query)
	item, err := mc.client.Get(key)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			slog.Warn("failed to read search results from cache.", slog.String("key", key),
				slog.String("err", err.Error()))
		}
		return nil, false
	}
	var urls []string
	if err = jsoniter.Unmarshal(item.Value, &urls); err != nil {
		slog.Warn("broken cache entry.", slog.String("key", key), slog.String("err", err.Error()))
		return nil, false
	}

	return urls, true
}

func (mc *MemcachedClient) SaveQuery(query string, urls []string) {
	key := queryKey(query)
	if err := mc.set(key, urls, int32(mc.ttl.Seconds())); err != nil {
		slog.Error("failed to save search results to cache.", slog.String("key", key),
			slog.String("err", err.Error()))
		return
	}
	slog.Debug("search results saved to cache.", slog.String("key", key), slog.String("query", query))
}

func (mc *MemcachedClient) Close() {
	slog.Info("closing memcached connection.")
	err := mc.client.Close()
	if err != nil {
		slog.Error("failed to close memcached connection.", slog.String("err", err.Error()))
	}
}

func (mc *MemcachedClient) set(key string, value any, expiration int32) error {
	byteValue, err := jsoniter.Marshal(value)
	if err != nil {
		return err
	}
	item := &memcache.Item{
		Key:        key,
		Value:      byteValue,
		Expiration: expiration,
	}

	return mc.client.Set(item)
}

// queryKey hashes the query since memcached keys cannot hold spaces.
func queryKey(query string) string {
	return "search-" + internal.HashURL(query)
}
