package ports

import (
	"context"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

// EmailSender delivers one message. Failures are logged by the sender and
// reported as false.
type EmailSender interface {
	Send(ctx context.Context, email domain.Email) bool
}

// EmailQueue hands messages to background delivery.
type EmailQueue interface {
	Enqueue(email domain.Email)
}
