/*
This file holds the GraphQL client for the revnet subgraph.

One client talks to one chain's subgraph. Responses are decoded into private wire structs and
converted to the validated types in internal/types before anything else sees them.
*/

package datafetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rev-net/revdash/internal/logger"
)

var (
	ErrSubgraph        = errors.New("subgraph returned errors")
	ErrInvalidResponse = errors.New("invalid subgraph response")
	ErrNotFound        = errors.New("record not found in subgraph")
)

const (
	MAX_RETRIES     = 3
	DEFAULT_TIMEOUT = 30 * time.Second
	// NativeDecimals is the precision of the surplus and of payment amounts (ETH).
	NativeDecimals = 18
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// SubgraphClient queries one chain's subgraph over HTTP POST.
type SubgraphClient struct {
	chainID    int64
	url        string
	apiKey     string
	http       *http.Client
	retryDelay time.Duration
	log        zerolog.Logger
}

// NewSubgraphClient creates a client for the subgraph at url indexing chainID.
// A zero timeout uses DEFAULT_TIMEOUT.
func NewSubgraphClient(chainID int64, url, apiKey string, timeout time.Duration) *SubgraphClient {
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	return &SubgraphClient{
		chainID:    chainID,
		url:        url,
		apiKey:     apiKey,
		http:       &http.Client{Timeout: timeout},
		retryDelay: time.Second,
		log:        logger.GetForComponent("subgraph").With().Int64("chainID", chainID).Logger(),
	}
}

// WithRetryDelay sets the base delay between attempts; attempt n waits n times the base.
func (c *SubgraphClient) WithRetryDelay(d time.Duration) *SubgraphClient {
	c.retryDelay = d
	return c
}

func (c *SubgraphClient) ChainID() int64 { return c.chainID }

// query runs a GraphQL query and decodes its data into out. Transport failures and 5xx
// responses are retried; GraphQL errors and malformed payloads are not.
func (c *SubgraphClient) query(ctx context.Context, name, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to encode %s query: %w", name, err)
	}

	var lastErr error
	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		c.log.Debug().
			Str("query", name).
			Int("attempt", attempt).
			Int("maxRetries", MAX_RETRIES).
			Msg("Making subgraph request")

		data, retry, err := c.post(ctx, body)
		if err == nil {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalidResponse, name, err)
			}
			return nil
		}

		lastErr = err
		if !retry || attempt == MAX_RETRIES {
			break
		}
		c.log.Warn().
			Err(err).
			Str("query", name).
			Int("attempt", attempt).
			Msg("Subgraph request failed, will retry if attempts remain")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * c.retryDelay):
		}
	}

	c.log.Error().
		Err(lastErr).
		Str("query", name).
		Msg("Subgraph request failed")
	return fmt.Errorf("%s query on chain %d: %w", name, c.chainID, lastErr)
}

// post performs one request. The bool reports whether the failure is worth retrying.
func (c *SubgraphClient) post(ctx context.Context, body []byte) (json.RawMessage, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("subgraph returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("subgraph returned status %d", resp.StatusCode)
	}

	var gql graphQLResponse
	if err := json.Unmarshal(raw, &gql); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if len(gql.Errors) > 0 {
		msgs := make([]string, 0, len(gql.Errors))
		for _, e := range gql.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, false, fmt.Errorf("%w: %s", ErrSubgraph, strings.Join(msgs, "; "))
	}
	if len(gql.Data) == 0 || string(gql.Data) == "null" {
		return nil, false, fmt.Errorf("%w: empty data", ErrInvalidResponse)
	}
	return gql.Data, false, nil
}
