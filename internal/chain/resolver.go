package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rs/zerolog"

	"github.com/rev-net/revdash/internal/logger"
)

// CachedResolver memoizes another resolver. Misses are cached too, as an empty name, so an
// address without a name is not looked up on every render.
type CachedResolver struct {
	next  NameResolver
	cache *lru.Cache[string, string]
	log   zerolog.Logger
}

func NewCachedResolver(next NameResolver, size int) (*CachedResolver, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create name cache: %w", err)
	}
	return &CachedResolver{next: next, cache: cache, log: logger.GetForComponent("name_resolver")}, nil
}

func (r *CachedResolver) ResolveName(ctx context.Context, address string) (string, error) {
	key := strings.ToLower(address)
	if name, ok := r.cache.Get(key); ok {
		if name == "" {
			return "", ErrNameNotFound
		}
		return name, nil
	}

	name, err := r.next.ResolveName(ctx, address)
	switch {
	case errors.Is(err, ErrNameNotFound):
		r.cache.Add(key, "")
		return "", err
	case err != nil:
		// transient failures are not cached
		r.log.Warn().Err(err).Str("address", address).Msg("Name lookup failed")
		return "", err
	}
	r.cache.Add(key, name)
	return name, nil
}

// DisplayName is the resolved name, or the shortened address when there is none.
func DisplayName(ctx context.Context, r NameResolver, address string) string {
	if r != nil {
		if name, err := r.ResolveName(ctx, address); err == nil && name != "" {
			return name
		}
	}
	return ShortAddress(address)
}

// ShortAddress renders 0x1234...abcd.
func ShortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// StaticResolver serves names from a fixed map. Useful for known project wallets.
type StaticResolver map[string]string

func (s StaticResolver) ResolveName(_ context.Context, address string) (string, error) {
	if name, ok := s[strings.ToLower(address)]; ok {
		return name, nil
	}
	return "", ErrNameNotFound
}
