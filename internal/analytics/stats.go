package analytics

import (
	"time"

	"github.com/amdonatusprince/shield/internal/domain"
)

// ProtocolStats summarizes one protocol's activity.
type ProtocolStats struct {
	TransactionCount int      `json:"transactionCount"`
	SuccessRate      float64  `json:"successRate"`
	UniqueUsers      []string `json:"uniqueUsers"`
	TotalVolume      float64  `json:"totalVolume"`
	FailedTxs        int      `json:"failedTxs"`
}

// MultiProtocolStats groups the whole set by protocol. Transactions without
// a protocol are skipped entirely; a protocol therefore never appears with a
// zero transaction count.
func (e *Engine) MultiProtocolStats(s domain.StreamData) map[string]ProtocolStats {
	stats := make(map[string]ProtocolStats)
	seen := make(map[string]map[string]bool) // protocol -> user set

	for _, tx := range s.Data {
		if tx.Protocol == "" {
			continue
		}
		st, ok := stats[tx.Protocol]
		if !ok {
			st = ProtocolStats{UniqueUsers: []string{}}
			seen[tx.Protocol] = make(map[string]bool)
		}
		st.TransactionCount++
		if !tx.Success {
			st.FailedTxs++
		}
		if tx.UserWallet != "" && !seen[tx.Protocol][tx.UserWallet] {
			seen[tx.Protocol][tx.UserWallet] = true
			st.UniqueUsers = append(st.UniqueUsers, tx.UserWallet)
		}
		for _, t := range tx.TokenTransfers {
			st.TotalVolume += abs(t.Amount)
		}
		stats[tx.Protocol] = st
	}

	for protocol, st := range stats {
		st.SuccessRate = successRate(st.TransactionCount, st.FailedTxs)
		stats[protocol] = st
	}

	return stats
}

// DailyStats summarizes one protocol's activity since the start of the
// current local day.
type DailyStats struct {
	Date                   string             `json:"date"`
	TransactionCount       int                `json:"transactionCount"`
	UniqueUsers            int                `json:"uniqueUsers"`
	TokenVolumes           map[string]float64 `json:"tokenVolumes"`
	SuccessRate            float64            `json:"successRate"`
	FailedTransactions     int                `json:"failedTransactions"`
	AverageTransactionSize float64            `json:"averageTransactionSize"`
}

// Daily computes today's statistics for a protocol. The day boundary is
// local midnight of the engine clock.
func (e *Engine) Daily(s domain.StreamData, protocol string) DailyStats {
	now := e.clock()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Unix()

	stats := DailyStats{
		Date:         now.Format("2006-01-02"),
		TokenVolumes: make(map[string]float64),
	}
	users := make(map[string]bool)
	totalVolume := 0.0

	for _, tx := range s.Data {
		if tx.Protocol != protocol || tx.Timestamp < dayStart {
			continue
		}
		stats.TransactionCount++
		if !tx.Success {
			stats.FailedTransactions++
		}
		if tx.UserWallet != "" {
			users[tx.UserWallet] = true
		}
		for _, t := range tx.TokenTransfers {
			amount := abs(t.Amount)
			stats.TokenVolumes[t.Mint] += amount
			totalVolume += amount
		}
	}

	stats.UniqueUsers = len(users)
	stats.SuccessRate = successRate(stats.TransactionCount, stats.FailedTransactions)
	stats.AverageTransactionSize = safeAverage(totalVolume, stats.TransactionCount)

	return stats
}
