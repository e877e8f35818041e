package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCost(t *testing.T) {
	usage := TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000}

	cost := usage.EstimateCost("claude-haiku-4-5-20251001")
	assert.InDelta(t, 0.80+2.00, cost, 1e-9)

	cost = usage.EstimateCost("claude-sonnet-4-5-20250929")
	assert.InDelta(t, 3.00+7.50, cost, 1e-9)
}

func TestEstimateCostUnknownModel(t *testing.T) {
	usage := TokenUsage{InputTokens: 100, OutputTokens: 100}
	assert.Zero(t, usage.EstimateCost("some-unknown-model"))
}

func TestEstimateCostZeroUsage(t *testing.T) {
	var usage TokenUsage
	assert.Zero(t, usage.EstimateCost("claude-haiku-4-5-20251001"))
}
