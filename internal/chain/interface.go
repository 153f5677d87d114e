package chain

import (
	"context"
	"errors"

	"github.com/rev-net/revdash/internal/fixedpoint"
)

var (
	ErrSubmissionDisabled = errors.New("transaction submission is disabled")
	ErrNameNotFound       = errors.New("no name registered for address")
)

// TxState is the lifecycle of a submitted transaction as the dashboard sees it.
type TxState string

const (
	TxPending   TxState = "pending"
	TxConfirmed TxState = "confirmed"
	TxFailed    TxState = "failed"
)

// TxRequest describes one contract call. Data is the ABI encoded calldata; the dashboard
// never signs it.
type TxRequest struct {
	ChainID int64             `json:"chain_id"`
	To      string            `json:"to"`
	Data    []byte            `json:"data"`
	Value   fixedpoint.Amount `json:"value"`
}

type TxStatus struct {
	State  TxState `json:"state"`
	TxHash string  `json:"tx_hash,omitempty"`
}

// TransactionSubmitter abstracts wallet signing, broadcast and receipt polling.
// Implementations live outside this service (a browser wallet, a relayer).
type TransactionSubmitter interface {
	// Submit broadcasts the call and returns its current status.
	Submit(ctx context.Context, req TxRequest) (TxStatus, error)
}

// NameResolver maps an address to a display name, e.g. an ENS name.
type NameResolver interface {
	// ResolveName returns ErrNameNotFound when the address has no name.
	ResolveName(ctx context.Context, address string) (string, error)
}

// NoopSubmitter refuses every transaction. It is what the read-only backend wires in.
type NoopSubmitter struct{}

func (NoopSubmitter) Submit(context.Context, TxRequest) (TxStatus, error) {
	return TxStatus{State: TxFailed}, ErrSubmissionDisabled
}
