package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrMiss is returned by a Store when a key is absent.
var ErrMiss = errors.New("cache: miss")

// Store is the raw cache contract. The production implementation wraps Redis;
// absence or failure of the store must never surface to callers of Accessor.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Policy declares the key scheme and lifetime for one entity type. Every
// cached entity gets exactly one policy so key naming and TTLs cannot drift
// between call sites.
type Policy struct {
	KeyPrefix string
	TTL       time.Duration
}

func (p Policy) Key(id string) string {
	return p.KeyPrefix + ":" + id
}

var (
	OrderPolicy   = Policy{KeyPrefix: "order", TTL: 24 * time.Hour}
	ProductPolicy = Policy{KeyPrefix: "product", TTL: 24 * time.Hour}

	// UserOrdersPolicy covers the per-user order list. List entries are
	// evicted on writes rather than refreshed in place.
	UserOrdersPolicy = Policy{KeyPrefix: "ordersByUser", TTL: 24 * time.Hour}

	// UserCartPolicy covers the per-user cart list, evicted on every cart
	// mutation like the order lists.
	UserCartPolicy = Policy{KeyPrefix: "userCart", TTL: 24 * time.Hour}

	// Statistics are cheap to recompute and polled often, so they live on
	// short TTLs and are never refreshed in place.
	OrderCountPolicy   = Policy{KeyPrefix: "orderCount", TTL: 5 * time.Minute}
	RecentOrdersPolicy = Policy{KeyPrefix: "recentOrdersCount", TTL: time.Hour}
)

// Accessor is the sole owner of cache entry lifecycle. Values are stored as
// JSON; a decode mismatch is treated as a miss and the entry is dropped.
type Accessor struct {
	store Store
	group singleflight.Group
}

func NewAccessor(store Store) *Accessor {
	return &Accessor{store: store}
}

// Get reads through the cache. On a miss (or any cache failure, treated
// identically) the loader is consulted and, when it finds the entity, the
// entry is repopulated best-effort. Concurrent loads of the same key are
// collapsed. A loader returning (nil, nil) means not found and is not cached.
func Get[T any](ctx context.Context, a *Accessor, p Policy, id string, load func(context.Context) (*T, error)) (*T, error) {
	key := p.Key(id)

	if raw, err := a.store.Get(ctx, key); err == nil {
		var v T
		if jerr := json.Unmarshal(raw, &v); jerr == nil {
			return &v, nil
		}
		// Undecodable entry: drop it and fall through to the store.
		a.Evict(ctx, p, id)
	} else if !errors.Is(err, ErrMiss) {
		log.Printf("cache: get %s: %v", key, err)
	}

	v, err, _ := a.group.Do(key, func() (any, error) {
		loaded, err := load(ctx)
		if err != nil {
			return (*T)(nil), err
		}
		if loaded != nil {
			a.set(ctx, key, loaded, p.TTL)
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	loaded := v.(*T)
	if loaded == nil {
		return nil, nil
	}
	// Collapsed callers each get their own copy; a shared pointer would let
	// one caller's mutation race the others.
	out := *loaded
	return &out, nil
}

// Put refreshes the cache entry for an entity after its durable write has
// already succeeded. Failures are logged and swallowed.
func (a *Accessor) Put(ctx context.Context, p Policy, id string, value any) {
	a.set(ctx, p.Key(id), value, p.TTL)
}

// Evict removes an entry, used when a write invalidates cached content that
// cannot cheaply be refreshed in place.
func (a *Accessor) Evict(ctx context.Context, p Policy, id string) {
	if err := a.store.Del(ctx, p.Key(id)); err != nil {
		log.Printf("cache: del %s: %v", p.Key(id), err)
	}
}

func (a *Accessor) set(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: marshal %s: %v", key, err)
		return
	}
	if err := a.store.Set(ctx, key, raw, ttl); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
}
