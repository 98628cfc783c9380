// Package classify partitions raw holder records into exchange, locked
// team/vesting, and unclassified categories. Classification is a pure
// in-memory pass: no I/O, deterministic for identical input and context.
package classify

import (
	"token-holder-lab/internal/domain"
)

// Classifier applies an ordered rule list to holder records.
type Classifier struct {
	rules []Rule
}

// New creates a Classifier. With no rules given it uses DefaultRules.
func New(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify tags every record with the category of the first matching rule,
// or Unclassified when nothing matches. Input order is preserved. Records
// are also annotated with the context's disclosed market-maker membership.
func (c *Classifier) Classify(records []domain.HolderRecord, ctx domain.SupplyContext) []domain.ClassifiedHolder {
	out := make([]domain.ClassifiedHolder, 0, len(records))
	for i := range records {
		r := records[i]
		out = append(out, domain.ClassifiedHolder{
			HolderRecord: r,
			Category:     c.categoryOf(&r, ctx),
			MarketMaker:  ctx.IsMarketMaker(r.Address),
		})
	}
	return out
}

func (c *Classifier) categoryOf(r *domain.HolderRecord, ctx domain.SupplyContext) domain.Category {
	for _, rule := range c.rules {
		if rule.Match(r, ctx) {
			return rule.Category
		}
	}
	return domain.CategoryUnclassified
}
