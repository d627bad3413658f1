package tokenclient

import (
	"context"

	"cosmossdk.io/math"
)

// TransferCommand asks the token service to move tokens to a recipient. The
// request ID is echoed back in the outcome notification on the queue; the
// call itself only acknowledges acceptance.
type TransferCommand struct {
	RequestID string   `json:"request_id"`
	Recipient string   `json:"recipient"`
	Amount    math.Int `json:"amount"`
	Memo      string   `json:"memo,omitempty"`
}

type TokenInterface interface {
	Transfer(ctx context.Context, cmd TransferCommand) error
}
