package recommend

import (
	"sort"

	"finsight/internal/domain/models"
)

// factorActions maps each risk factor type to its fixed action strings.
var factorActions = map[string][]string{
	models.RiskNegativeCashflowTrend: {
		"Immediately review and reduce non-essential expenses",
		"Consider additional income sources",
	},
	models.RiskHighVolatility: {
		"Create emergency fund of 3-6 months expenses",
		"Implement consistent budgeting practices",
	},
	models.RiskFrequentSpikes: {
		"Set up expense alerts and monitoring",
		"Plan for known upcoming large expenses",
	},
	models.RiskLowSavings: {
		"Automate savings transfers",
		"Increase savings rate gradually",
	},
	models.RiskIncreasingExpenses: {
		"Review expense trends and identify causes",
		"Set spending limits by category",
	},
}

// riskActions builds the deduplicated action set for the triggered factors.
// The result is sorted so repeated generations compare equal; the sequence
// itself is not part of the contract.
func riskActions(factors []models.RiskFactor) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(factors)*2)
	for _, f := range factors {
		for _, a := range factorActions[f.Type] {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out
}
