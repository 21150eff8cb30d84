package analytics

import "github.com/amdonatusprince/shield/internal/domain"

// AlertLargeTransactions invokes sink for every transaction whose total
// absolute transfer value meets the threshold, synchronously and in input
// order. The first sink error aborts the remaining invocations and is
// returned.
func (e *Engine) AlertLargeTransactions(s domain.StreamData, threshold float64, sink func(domain.NormalizedTransaction) error) error {
	if sink == nil {
		return nil
	}
	for _, tx := range s.Data {
		total := 0.0
		for _, t := range tx.TokenTransfers {
			total += abs(t.Amount)
		}
		if total < threshold {
			continue
		}
		if err := sink(tx); err != nil {
			return err
		}
	}
	return nil
}
