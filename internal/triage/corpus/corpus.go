package corpus

import (
	"fmt"

	"lead-triage/internal/common/errors"
	"lead-triage/internal/models"
)

// Corpus is the read-only set of historical deals that leads are ranked
// against. It is safe for concurrent use because nothing mutates it after New.
type Corpus struct {
	deals []models.DealRecord
	index map[string]int
}

// New copies deals into a Corpus, rejecting empty or duplicate deal ids.
func New(deals []models.DealRecord) (*Corpus, error) {
	c := &Corpus{
		deals: make([]models.DealRecord, len(deals)),
		index: make(map[string]int, len(deals)),
	}
	copy(c.deals, deals)

	for i, d := range c.deals {
		if d.DealID == "" {
			return nil, errors.NewCorpusInvalidError(fmt.Sprintf("deal at position %d has no deal_id", i))
		}
		if prev, dup := c.index[d.DealID]; dup {
			return nil, errors.NewCorpusInvalidError(fmt.Sprintf("duplicate deal_id %q at positions %d and %d", d.DealID, prev, i))
		}
		c.index[d.DealID] = i
	}

	return c, nil
}

func MustNew(deals []models.DealRecord) *Corpus {
	c, err := New(deals)
	if err != nil {
		panic(err)
	}
	return c
}

// Deals returns the deals in load order. The slice is a copy.
func (c *Corpus) Deals() []models.DealRecord {
	out := make([]models.DealRecord, len(c.deals))
	copy(out, c.deals)
	return out
}

func (c *Corpus) Len() int {
	return len(c.deals)
}

func (c *Corpus) Get(dealID string) (models.DealRecord, bool) {
	i, ok := c.index[dealID]
	if !ok {
		return models.DealRecord{}, false
	}
	return c.deals[i], true
}
