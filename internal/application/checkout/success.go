package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/delus-studio/storefront/internal/domain/payment"
)

var ErrMissingSessionID = errors.New("checkout: session id is required")

// SuccessService looks up a completed checkout for the confirmation page.
type SuccessService struct {
	processor payment.Processor
}

func NewSuccessService(processor payment.Processor) *SuccessService {
	return &SuccessService{processor: processor}
}

func (s *SuccessService) Lookup(ctx context.Context, sessionID string) (*payment.Session, error) {
	if sessionID == "" {
		return nil, ErrMissingSessionID
	}
	sess, err := s.processor.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("checkout: retrieve session: %w", err)
	}
	return sess, nil
}
