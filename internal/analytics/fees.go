package analytics

import "github.com/amdonatusprince/shield/internal/domain"

// TypeFees aggregates fees per instruction type.
type TypeFees struct {
	Total   int64   `json:"total"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// HighestFee records the most expensive transaction seen.
type HighestFee struct {
	Amount        int64  `json:"amount"`
	TransactionID string `json:"transactionId"`
}

// FeeStats aggregates the fee heuristic for one protocol. The fee of a
// transaction is the absolute sum of its negative account balance deltas,
// an approximation of fee-payer outflows rather than a ledger-accurate fee.
type FeeStats struct {
	TotalFees        int64               `json:"totalFees"`
	TransactionCount int                 `json:"transactionCount"`
	AverageFee       float64             `json:"averageFee"`
	FeesByType       map[string]TypeFees `json:"feesByType"`
	HighestFee       HighestFee          `json:"highestFee"`
}

// ProtocolFees computes the fee heuristic grouped by protocol. A non-empty
// protocol restricts the output to that protocol.
func (e *Engine) ProtocolFees(s domain.StreamData, protocol string) map[string]FeeStats {
	stats := make(map[string]FeeStats)

	for _, tx := range s.Data {
		if tx.Protocol == "" {
			continue
		}
		if protocol != "" && tx.Protocol != protocol {
			continue
		}

		fee := transactionFee(tx)

		st, ok := stats[tx.Protocol]
		if !ok {
			st = FeeStats{FeesByType: make(map[string]TypeFees)}
		}
		st.TotalFees += fee
		st.TransactionCount++

		byType := st.FeesByType[tx.Type]
		byType.Total += fee
		byType.Count++
		st.FeesByType[tx.Type] = byType

		if fee > st.HighestFee.Amount {
			st.HighestFee = HighestFee{Amount: fee, TransactionID: tx.TransactionID}
		}

		stats[tx.Protocol] = st
	}

	for protocol, st := range stats {
		st.AverageFee = safeAverage(float64(st.TotalFees), st.TransactionCount)
		for typ, byType := range st.FeesByType {
			byType.Average = safeAverage(float64(byType.Total), byType.Count)
			st.FeesByType[typ] = byType
		}
		stats[protocol] = st
	}

	return stats
}

// transactionFee sums the absolute value of negative balance deltas only.
func transactionFee(tx domain.NormalizedTransaction) int64 {
	var fee int64
	for _, c := range tx.AccountChanges {
		if c.BalanceChange < 0 {
			fee += -c.BalanceChange
		}
	}
	return fee
}
