package recommend

import (
	"fmt"
	"strings"

	"finsight/internal/domain/models"
)

// ruleInput is the full signal state a rule may inspect.
type ruleInput struct {
	userID  string
	summary models.FinancialSummary
	signals models.BehaviorSignals
}

// rule pairs a predicate with a template builder. Each rule fires
// independently; a user may receive 0 to len(rules) recommendations per
// evaluation. Confidence scores are fixed per template, never computed.
type rule struct {
	name  string
	match func(ruleInput) bool
	build func(ruleInput) models.Recommendation
}

// Fixed recommendation thresholds.
const (
	spikeCountLimit    = 3    // more than this many spikes
	savingsTargetRate  = 20.0 // percent
	dominantShareLimit = 40.0 // percent of expenses
)

var rules = []rule{
	{
		name: "cashflow_stabilization",
		match: func(in ruleInput) bool {
			return in.signals.Volatility != nil && in.signals.Volatility.Level == models.VolatilityHigh
		},
		build: func(in ruleInput) models.Recommendation {
			return models.Recommendation{
				Category:    models.RecCashflowStabilization,
				Priority:    models.PriorityHigh,
				Title:       "Stabilize Your Cash Flow",
				Description: "Your cashflow shows high volatility. Here are ways to stabilize it.",
				Actions: []string{
					"Create a monthly budget with buffer funds",
					"Set up automatic savings transfers",
					"Track expenses daily for better visibility",
				},
				ExpectedImpact: "Reduce cashflow volatility by 30-40%",
				Confidence:     0.85,
			}
		},
	},
	{
		name: "expense_management",
		match: func(in ruleInput) bool {
			return in.signals.Spikes != nil && in.signals.Spikes.Count > spikeCountLimit
		},
		build: func(in ruleInput) models.Recommendation {
			return models.Recommendation{
				Category:    models.RecExpenseManagement,
				Priority:    models.PriorityMedium,
				Title:       "Manage Expense Spikes",
				Description: fmt.Sprintf("You've experienced %d expense spikes recently.", in.signals.Spikes.Count),
				Actions: []string{
					"Set spending alerts for amounts above $500",
					"Review and categorize all spike transactions",
					"Create a \"spike fund\" for unexpected expenses",
				},
				ExpectedImpact: "Reduce unexpected expense impact by 25%",
				Confidence:     0.75,
			}
		},
	},
	{
		name: "risk_mitigation",
		match: func(in ruleInput) bool {
			if in.signals.Risk == nil {
				return false
			}
			level := in.signals.Risk.Level
			return level == models.RiskLevelHigh || level == models.RiskLevelMedium
		},
		build: func(in ruleInput) models.Recommendation {
			risk := in.signals.Risk
			priority := models.PriorityMedium
			if risk.Level == models.RiskLevelHigh {
				priority = models.PriorityHigh
			}
			return models.Recommendation{
				Category:       models.RecRiskMitigation,
				Priority:       priority,
				Title:          fmt.Sprintf("Address %s Financial Risks", titleCase(risk.Level)),
				Description:    fmt.Sprintf("Detected %d risk factors requiring attention.", len(risk.Factors)),
				Actions:        riskActions(risk.Factors),
				ExpectedImpact: "Improve financial stability score by 20-30%",
				Confidence:     0.80,
			}
		},
	},
	{
		name: "savings_improvement",
		match: func(in ruleInput) bool {
			return in.summary.HasSavingsRate && in.summary.SavingsRate < savingsTargetRate
		},
		build: func(in ruleInput) models.Recommendation {
			rate := in.summary.SavingsRate
			target := rate + 5
			if target > savingsTargetRate {
				target = savingsTargetRate
			}
			return models.Recommendation{
				Category:    models.RecSavingsImprovement,
				Priority:    models.PriorityMedium,
				Title:       "Increase Your Savings Rate",
				Description: fmt.Sprintf("Current savings rate: %.1f%%. Target: 20%%+", rate),
				Actions: []string{
					"Automate 20% of income to savings account",
					"Reduce discretionary spending by 15%",
					"Set up separate savings goals",
				},
				ExpectedImpact: fmt.Sprintf("Increase savings rate to %.1f%%", target),
				Confidence:     0.70,
			}
		},
	},
	{
		name: "category_optimization",
		match: func(in ruleInput) bool {
			top := topCategory(in.summary.CategoryBreakdown)
			return top != nil && top.Percentage > dominantShareLimit
		},
		build: func(in ruleInput) models.Recommendation {
			top := topCategory(in.summary.CategoryBreakdown)
			return models.Recommendation{
				Category:    models.RecCategoryOptimization,
				Priority:    models.PriorityLow,
				Title:       fmt.Sprintf("Optimize %s", top.Category),
				Description: fmt.Sprintf("%s accounts for %.1f%% of expenses.", top.Category, top.Percentage),
				Actions: []string{
					fmt.Sprintf("Review %s transactions for savings opportunities", top.Category),
					"Compare prices before major purchases",
					"Look for subscription services to cancel",
				},
				ExpectedImpact: "Reduce category spending by 10-15%",
				Confidence:     0.65,
			}
		},
	},
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func topCategory(breakdown []models.CategoryShare) *models.CategoryShare {
	var top *models.CategoryShare
	for i := range breakdown {
		if top == nil || breakdown[i].Amount > top.Amount {
			top = &breakdown[i]
		}
	}
	return top
}
