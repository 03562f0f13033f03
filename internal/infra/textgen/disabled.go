package textgen

import (
	"context"
	"errors"

	"complyd/internal/usecase"
)

// DisabledGenerator stands in when no provider credentials are configured.
// Callers see the same failure shape as a provider outage.
type DisabledGenerator struct{}

func (DisabledGenerator) Generate(context.Context, usecase.TextGenRequest) (usecase.TextGenResult, error) {
	return usecase.TextGenResult{}, errors.New("text generation is not configured")
}

var _ usecase.TextGenerator = DisabledGenerator{}
