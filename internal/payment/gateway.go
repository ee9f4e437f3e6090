// Package payment defines the contract the proposal engine invokes a
// payment gateway through. The gateway itself (Stripe etc.) lives outside
// this repository.
package payment

import (
	"context"

	"github.com/google/uuid"
)

// Gateway charges a deposit and returns a transaction identifier. Calls
// are at-most-once from the engine's perspective: the engine never retries
// automatically, and deduplication of retried charges is the gateway's
// concern (idempotency keys), not ours.
type Gateway interface {
	Charge(ctx context.Context, proposalID string, amount float64) (txID string, err error)
}

// StubGateway mints deterministic-looking transaction ids without any
// external call. Used in development and tests.
type StubGateway struct{}

func (StubGateway) Charge(_ context.Context, _ string, _ float64) (string, error) {
	return "txn_" + uuid.NewString(), nil
}

// FailingGateway always fails; test double for GatewayError paths.
type FailingGateway struct {
	Err error
}

func (g FailingGateway) Charge(context.Context, string, float64) (string, error) {
	return "", g.Err
}
