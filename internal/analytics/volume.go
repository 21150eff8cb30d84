package analytics

import (
	"time"

	"github.com/amdonatusprince/shield/internal/domain"
)

// VolumeReport is the per-mint volume of one protocol over a time window.
type VolumeReport struct {
	Protocol         string             `json:"protocol"`
	Timeframe        string             `json:"timeframe"`
	VolumeByToken    map[string]float64 `json:"volumeByToken"`
	TransactionCount int                `json:"transactionCount"`
}

// Volume sums absolute transfer amounts per mint over successful
// transactions for a protocol whose timestamp falls within the trailing
// timeframe.
func (e *Engine) Volume(s domain.StreamData, protocol string, timeframe time.Duration) VolumeReport {
	cutoff := e.clock().Add(-timeframe).Unix()

	report := VolumeReport{
		Protocol:      protocol,
		Timeframe:     timeframe.String(),
		VolumeByToken: make(map[string]float64),
	}

	for _, tx := range s.Data {
		if tx.Protocol != protocol || !tx.Success || tx.Timestamp < cutoff {
			continue
		}
		report.TransactionCount++
		for _, t := range tx.TokenTransfers {
			report.VolumeByToken[t.Mint] += abs(t.Amount)
		}
	}

	return report
}

// TokenStats aggregates transfers of one mint under a protocol.
type TokenStats struct {
	TotalVolume   float64  `json:"totalVolume"`
	TransferCount int      `json:"transferCount"`
	UniqueWallets []string `json:"uniqueWallets"`
	AverageAmount float64  `json:"averageAmount"`
	Decimals      int      `json:"decimals"`
}

// TokenTransferStats aggregates per-mint transfer statistics over successful
// transactions of a protocol that moved tokens. Wallet lists preserve
// first-seen order.
func (e *Engine) TokenTransferStats(s domain.StreamData, protocol string) map[string]TokenStats {
	stats := make(map[string]TokenStats)
	seen := make(map[string]map[string]bool) // mint -> wallet set

	for _, tx := range s.Data {
		if tx.Protocol != protocol || !tx.Success || len(tx.TokenTransfers) == 0 {
			continue
		}
		for _, t := range tx.TokenTransfers {
			st, ok := stats[t.Mint]
			if !ok {
				st = TokenStats{Decimals: t.Decimals, UniqueWallets: []string{}}
				seen[t.Mint] = make(map[string]bool)
			}
			st.TotalVolume += abs(t.Amount)
			st.TransferCount++
			if t.Owner != "" && !seen[t.Mint][t.Owner] {
				seen[t.Mint][t.Owner] = true
				st.UniqueWallets = append(st.UniqueWallets, t.Owner)
			}
			stats[t.Mint] = st
		}
	}

	for mint, st := range stats {
		st.AverageAmount = safeAverage(st.TotalVolume, st.TransferCount)
		stats[mint] = st
	}

	return stats
}

// TransferTimeStats bounds the observed transfer timestamps. Zero values
// mean no transfer matched.
type TransferTimeStats struct {
	FirstTransfer int64 `json:"firstTransfer"`
	LastTransfer  int64 `json:"lastTransfer"`
}

// MintReport aggregates every transfer of one mint across protocols.
type MintReport struct {
	MintAddress         string             `json:"mintAddress"`
	TotalTransfers      int                `json:"totalTransfers"`
	TotalVolume         float64            `json:"totalVolume"`
	UniqueSenders       int                `json:"uniqueSenders"`
	AverageTransferSize float64            `json:"averageTransferSize"`
	LargestTransfer     float64            `json:"largestTransfer"`
	Decimals            int                `json:"decimals"`
	TimeStats           TransferTimeStats  `json:"timeStats"`
	VolumeByProtocol    map[string]float64 `json:"volumeByProtocol"`
}

// TotalValueTransferred aggregates all transfers of an exact mint. Over an
// empty transfer set every numeric field, including largestTransfer and the
// time bounds, resolves to 0 rather than a min/max-of-empty sentinel.
func (e *Engine) TotalValueTransferred(s domain.StreamData, mint string) MintReport {
	report := MintReport{
		MintAddress:      mint,
		VolumeByProtocol: make(map[string]float64),
	}
	senders := make(map[string]bool)

	for _, tx := range s.Data {
		for _, t := range tx.TokenTransfers {
			if t.Mint != mint {
				continue
			}
			amount := abs(t.Amount)
			report.TotalTransfers++
			report.TotalVolume += amount
			report.VolumeByProtocol[tx.Protocol] += amount
			if amount > report.LargestTransfer {
				report.LargestTransfer = amount
			}
			if report.Decimals == 0 {
				report.Decimals = t.Decimals
			}
			if t.Owner != "" {
				senders[t.Owner] = true
			}
			if report.TimeStats.FirstTransfer == 0 || tx.Timestamp < report.TimeStats.FirstTransfer {
				report.TimeStats.FirstTransfer = tx.Timestamp
			}
			if tx.Timestamp > report.TimeStats.LastTransfer {
				report.TimeStats.LastTransfer = tx.Timestamp
			}
		}
	}

	report.UniqueSenders = len(senders)
	report.AverageTransferSize = safeAverage(report.TotalVolume, report.TotalTransfers)

	return report
}
