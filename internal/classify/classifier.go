// Package classify matches raw transactions against the protocol registry
// and normalizes matched transactions into canonical records.
package classify

import (
	"github.com/amdonatusprince/shield/internal/domain"
	"github.com/amdonatusprince/shield/internal/registry"
)

// Classifier resolves program ids to protocol matches via the registry
// reverse index.
type Classifier struct {
	index *registry.Index
}

// NewClassifier creates a classifier over the default registry.
func NewClassifier() *Classifier {
	return &Classifier{index: registry.NewIndex()}
}

// MatchProgramID resolves a single program id. Returns nil when the id is
// not registered.
func (c *Classifier) MatchProgramID(programID string) *domain.ProtocolMatch {
	if m, ok := c.index.Lookup(programID); ok {
		return &m
	}
	return nil
}

// Classify resolves a raw transaction: the top-level program id first, then
// nested invocations in order. First match wins; remaining invocations are
// ignored. Returns nil when nothing matches.
func (c *Classifier) Classify(tx domain.RawTransaction) *domain.ProtocolMatch {
	if m := c.MatchProgramID(tx.ProgramID); m != nil {
		return m
	}
	for _, inv := range tx.ProgramInvocations {
		if m := c.MatchProgramID(inv.ProgramID); m != nil {
			return m
		}
	}
	return nil
}
