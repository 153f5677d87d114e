package chain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rev-net/revdash/internal/chain"
)

type countingResolver struct {
	calls int
	names map[string]string
	err   error
}

func (c *countingResolver) ResolveName(_ context.Context, address string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	if name, ok := c.names[address]; ok {
		return name, nil
	}
	return "", chain.ErrNameNotFound
}

const (
	alice = "0xAAAA000000000000000000000000000000000001"
	bob   = "0xbbbb000000000000000000000000000000000002"
)

func TestCachedResolverCachesHitsAndMisses(t *testing.T) {
	inner := &countingResolver{names: map[string]string{alice: "alice.eth"}}
	r, err := chain.NewCachedResolver(inner, 16)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		name, err := r.ResolveName(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, "alice.eth", name)

		_, err = r.ResolveName(ctx, bob)
		require.ErrorIs(t, err, chain.ErrNameNotFound)
	}
	require.Equal(t, 2, inner.calls)
}

func TestCachedResolverSkipsTransientErrors(t *testing.T) {
	inner := &countingResolver{err: errors.New("rpc timeout")}
	r, err := chain.NewCachedResolver(inner, 16)
	require.NoError(t, err)

	_, err = r.ResolveName(context.Background(), alice)
	require.Error(t, err)
	_, err = r.ResolveName(context.Background(), alice)
	require.Error(t, err)
	require.Equal(t, 2, inner.calls)
}

func TestNewCachedResolverRejectsZeroSize(t *testing.T) {
	_, err := chain.NewCachedResolver(chain.StaticResolver{}, 0)
	require.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	static := chain.StaticResolver{"0xaaaa000000000000000000000000000000000001": "alice.eth"}
	ctx := context.Background()

	require.Equal(t, "alice.eth", chain.DisplayName(ctx, static, alice))
	require.Equal(t, "0xbbbb...0002", chain.DisplayName(ctx, static, bob))
	require.Equal(t, "0xbbbb...0002", chain.DisplayName(ctx, nil, bob))
	require.Equal(t, "0x12", chain.ShortAddress("0x12"))
}

func TestNoopSubmitter(t *testing.T) {
	var s chain.TransactionSubmitter = chain.NoopSubmitter{}
	status, err := s.Submit(context.Background(), chain.TxRequest{ChainID: 1})
	require.ErrorIs(t, err, chain.ErrSubmissionDisabled)
	require.Equal(t, chain.TxFailed, status.State)
}
