package recommend

import (
	"fmt"
	"sync"
	"time"

	"finsight/internal/domain/models"
)

// Composer evaluates the rule table against a user's signals and keeps the
// append-only recommendation history plus a global log.
//
// Writes for distinct users never conflict; concurrent writes for the same
// user id must be serialized by the caller (single writer per key).
type Composer struct {
	mu      sync.RWMutex
	history map[string][]models.Recommendation
	log     []models.Recommendation

	now func() time.Time
}

func NewComposer() *Composer {
	return &Composer{
		history: make(map[string][]models.Recommendation),
		now:     time.Now,
	}
}

// Generate runs every rule independently and returns the fired templates in
// rule order. Identical inputs produce an identical set: IDs derive from the
// user id and the rule position, and action sets are sorted after dedup.
func (c *Composer) Generate(userID string, summary models.FinancialSummary, signals models.BehaviorSignals) []models.Recommendation {
	in := ruleInput{userID: userID, summary: summary, signals: signals}
	generatedAt := c.now()

	out := make([]models.Recommendation, 0, len(rules))
	for i, r := range rules {
		if !r.match(in) {
			continue
		}
		rec := r.build(in)
		rec.ID = fmt.Sprintf("rec_%s_%03d", userID, i+1)
		rec.UserID = userID
		rec.GeneratedAt = generatedAt
		out = append(out, rec)
	}

	if len(out) > 0 {
		c.mu.Lock()
		c.history[userID] = append(c.history[userID], out...)
		c.log = append(c.log, out...)
		c.mu.Unlock()
	}
	return out
}

// History returns a snapshot of the user's recommendation history. Unknown
// users get an empty slice.
func (c *Composer) History(userID string) []models.Recommendation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	recs := c.history[userID]
	out := make([]models.Recommendation, len(recs))
	copy(out, recs)
	return out
}

// Log returns a snapshot of the global recommendation log.
func (c *Composer) Log() []models.Recommendation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Recommendation, len(c.log))
	copy(out, c.log)
	return out
}

// Summary counts the user's history by priority and category with the mean
// confidence. An empty history yields zero counts, not an error.
func (c *Composer) Summary(userID string) models.RecommendationSummary {
	recs := c.History(userID)

	s := models.RecommendationSummary{
		UserID:     userID,
		Total:      len(recs),
		ByPriority: map[string]int{},
		ByCategory: map[string]int{},
	}
	if len(recs) == 0 {
		return s
	}

	confSum := 0.0
	for _, r := range recs {
		s.ByPriority[r.Priority]++
		s.ByCategory[r.Category]++
		confSum += r.Confidence
	}
	s.AvgConfidence = confSum / float64(len(recs))
	return s
}
