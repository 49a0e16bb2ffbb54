package notifications

import (
	"context"

	"github.com/9ssi7/exponent"
)

// PushSender abstracts the Expo push client so handlers and tests do not
// depend on the SDK directly.
type PushSender interface {
	Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error)
}
