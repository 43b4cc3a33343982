package payoff

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"sterling/pkg/tax"
)

// Result aggregates the three scenario projections and the recommendation.
// It lives for one request/response cycle and is never persisted.
type Result struct {
	Optimistic     ScenarioProjection
	Pessimistic    ScenarioProjection
	Realistic      ScenarioProjection
	Recommendation Recommendation
	CalculatedAt   time.Time
}

// Calculate validates the input, projects all three scenarios, and derives
// the recommendation. Validation failures are returned as the error slice;
// the error return is reserved for unexpected conditions.
func Calculate(logger *zap.Logger, in Input, table *tax.Table) (*Result, []string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if errors := in.Validate(); len(errors) > 0 {
		logger.Warn("payoff input validation failed",
			zap.String("op", "payoff.Calculate"),
			zap.Strings("errors", errors),
		)
		return nil, errors, nil
	}

	if table == nil {
		return nil, nil, fmt.Errorf("no tax table available")
	}

	scenarios := Scenarios(in)
	result := &Result{CalculatedAt: time.Now().UTC()}
	for _, params := range scenarios {
		projection := Project(params, in, table)
		switch params.Type {
		case ScenarioOptimistic:
			result.Optimistic = projection
		case ScenarioPessimistic:
			result.Pessimistic = projection
		case ScenarioRealistic:
			result.Realistic = projection
		}
	}

	result.Recommendation = Recommend(result.Optimistic, result.Pessimistic, result.Realistic)

	logger.Debug("payoff calculation complete",
		zap.String("op", "payoff.Calculate"),
		zap.String("decision", string(result.Recommendation.Decision)),
		zap.String("confidence", string(result.Recommendation.Confidence)),
		zap.Int("years", len(result.Realistic.Years)),
	)
	return result, nil, nil
}
