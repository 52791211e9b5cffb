package payment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNetwork, KindOf(fmt.Errorf("stripe: create: %w", ErrNetwork)))
	assert.Equal(t, KindInvalidRequest, KindOf(ErrInvalidRequest))
	assert.Equal(t, KindRejected, KindOf(fmt.Errorf("wrapped: %w", ErrRejected)))
	assert.Equal(t, KindUnknown, KindOf(errors.New("other")))
}
