package classify

import (
	"encoding/json"
	"fmt"

	"github.com/amdonatusprince/shield/internal/domain"
)

// Pipeline orchestrates classification and normalization over raw
// transaction batches.
type Pipeline struct {
	classifier *Classifier
	normalizer *Normalizer
}

// NewPipeline creates a pipeline over the default registry.
func NewPipeline() *Pipeline {
	return &Pipeline{
		classifier: NewClassifier(),
		normalizer: NewNormalizer(),
	}
}

// WithNormalizer replaces the normalizer, e.g. to inject a fixed clock in
// tests.
func (p *Pipeline) WithNormalizer(n *Normalizer) *Pipeline {
	p.normalizer = n
	return p
}

// ClassifyBatch classifies each raw transaction and normalizes the matches.
// When protocolFilter is non-empty only transactions resolving to that
// protocol are kept: a top-level match for a different protocol does not
// classify the transaction. Its invocations are still scanned for the
// requested protocol, and the transaction is dropped when none matches.
// Dropped transactions are not an error.
func (p *Pipeline) ClassifyBatch(txs []domain.RawTransaction, protocolFilter string) []domain.NormalizedTransaction {
	normalized := make([]domain.NormalizedTransaction, 0, len(txs))

	for _, tx := range txs {
		if m := p.classifier.MatchProgramID(tx.ProgramID); m != nil {
			if protocolFilter == "" || m.Protocol == protocolFilter {
				normalized = append(normalized, p.normalizer.Normalize(tx, *m))
				continue
			}
		}

		for _, inv := range tx.ProgramInvocations {
			m := p.classifier.MatchProgramID(inv.ProgramID)
			if m == nil {
				continue
			}
			if protocolFilter != "" && m.Protocol != protocolFilter {
				continue
			}
			normalized = append(normalized, p.normalizer.NormalizeInvocation(tx, inv, *m))
			break
		}
	}

	return normalized
}

// ClassifyBatchJSON parses encoded input and classifies it. The input may be
// an array of raw transactions, an array of arrays (flattened one level), or
// a single object (wrapped as a one-element batch). Unparsable input fails
// fast.
func (p *Pipeline) ClassifyBatchJSON(data []byte, protocolFilter string) ([]domain.NormalizedTransaction, error) {
	txs, err := ParseRawTransactions(data)
	if err != nil {
		return nil, err
	}
	return p.ClassifyBatch(txs, protocolFilter), nil
}

// ParseRawTransactions decodes raw transaction input in any of the three
// accepted shapes.
func ParseRawTransactions(data []byte) ([]domain.RawTransaction, error) {
	var shape json.RawMessage
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("parse raw transaction input: %w", err)
	}

	trimmed := firstNonSpace(shape)
	switch trimmed {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(shape, &elems); err != nil {
			return nil, fmt.Errorf("parse raw transaction array: %w", err)
		}
		var txs []domain.RawTransaction
		for i, elem := range elems {
			switch firstNonSpace(elem) {
			case '[':
				// One level of nesting is flattened.
				var inner []domain.RawTransaction
				if err := json.Unmarshal(elem, &inner); err != nil {
					return nil, fmt.Errorf("parse nested transaction array at index %d: %w", i, err)
				}
				txs = append(txs, inner...)
			default:
				var tx domain.RawTransaction
				if err := json.Unmarshal(elem, &tx); err != nil {
					return nil, fmt.Errorf("parse transaction at index %d: %w", i, err)
				}
				txs = append(txs, tx)
			}
		}
		return txs, nil
	case '{':
		var tx domain.RawTransaction
		if err := json.Unmarshal(shape, &tx); err != nil {
			return nil, fmt.Errorf("parse single transaction object: %w", err)
		}
		return []domain.RawTransaction{tx}, nil
	default:
		return nil, fmt.Errorf("raw transaction input must be a JSON array or object")
	}
}

// firstNonSpace returns the first non-whitespace byte, or 0 when empty.
func firstNonSpace(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
