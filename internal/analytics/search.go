package analytics

import (
	"sort"

	"github.com/amdonatusprince/shield/internal/domain"
)

// TokenInteraction summarizes one wallet's activity against a mint.
type TokenInteraction struct {
	TotalVolume      float64 `json:"totalVolume"`
	TransactionCount int     `json:"transactionCount"`
	LastInteraction  int64   `json:"lastInteraction"`
}

// WalletReport is the wallet-centric search result.
type WalletReport struct {
	WalletAddress     string                         `json:"walletAddress"`
	TransactionCount  int                            `json:"transactionCount"`
	SuccessRate       float64                        `json:"successRate"`
	Protocols         []string                       `json:"protocols"`
	TokenInteractions map[string]TokenInteraction    `json:"tokenInteractions"`
	Transactions      []domain.NormalizedTransaction `json:"transactions"`
}

// SearchByWallet finds every transaction a wallet touched: as the user
// wallet, as a token transfer owner, or as an account-change address.
// Result transactions are sorted newest first; protocols preserve first-seen
// order over the input.
func (e *Engine) SearchByWallet(s domain.StreamData, wallet string) WalletReport {
	report := WalletReport{
		WalletAddress:     wallet,
		Protocols:         []string{},
		TokenInteractions: make(map[string]TokenInteraction),
		Transactions:      []domain.NormalizedTransaction{},
	}
	seenProtocols := make(map[string]bool)
	failed := 0

	for _, tx := range s.Data {
		if !walletTouches(tx, wallet) {
			continue
		}
		report.TransactionCount++
		if !tx.Success {
			failed++
		}
		if tx.Protocol != "" && !seenProtocols[tx.Protocol] {
			seenProtocols[tx.Protocol] = true
			report.Protocols = append(report.Protocols, tx.Protocol)
		}
		for _, t := range tx.TokenTransfers {
			ti := report.TokenInteractions[t.Mint]
			ti.TotalVolume += abs(t.Amount)
			ti.TransactionCount++
			if tx.Timestamp > ti.LastInteraction {
				ti.LastInteraction = tx.Timestamp
			}
			report.TokenInteractions[t.Mint] = ti
		}
		report.Transactions = append(report.Transactions, tx)
	}

	report.SuccessRate = successRate(report.TransactionCount, failed)

	sort.SliceStable(report.Transactions, func(i, j int) bool {
		return report.Transactions[i].Timestamp > report.Transactions[j].Timestamp
	})

	return report
}

// walletTouches reports whether a wallet appears anywhere on a transaction.
func walletTouches(tx domain.NormalizedTransaction, wallet string) bool {
	if wallet == "" {
		return false
	}
	if tx.UserWallet == wallet {
		return true
	}
	for _, t := range tx.TokenTransfers {
		if t.Owner == wallet {
			return true
		}
	}
	for _, c := range tx.AccountChanges {
		if c.Address == wallet {
			return true
		}
	}
	return false
}
