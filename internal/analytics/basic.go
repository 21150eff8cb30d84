package analytics

import (
	"strings"

	"github.com/amdonatusprince/shield/internal/domain"
)

// All returns a prefix of the transaction set preserving input order. A
// limit of zero or less returns the whole set.
func (e *Engine) All(s domain.StreamData, limit int) []domain.NormalizedTransaction {
	if limit <= 0 || limit >= len(s.Data) {
		return s.Data
	}
	return s.Data[:limit]
}

// ByProtocol filters by protocol name, case-insensitively, preserving input
// order. A limit of zero or less returns every match.
func (e *Engine) ByProtocol(s domain.StreamData, protocol string, limit int) []domain.NormalizedTransaction {
	matched := make([]domain.NormalizedTransaction, 0)
	for _, tx := range s.Data {
		if !strings.EqualFold(tx.Protocol, protocol) {
			continue
		}
		matched = append(matched, tx)
		if limit > 0 && len(matched) == limit {
			break
		}
	}
	return matched
}

// ActiveWallets returns the deduplicated user wallets of successful
// transactions for a protocol, in first-seen order.
func (e *Engine) ActiveWallets(s domain.StreamData, protocol string) []string {
	seen := make(map[string]bool)
	wallets := make([]string, 0)
	for _, tx := range s.Data {
		if !tx.Success || tx.Protocol != protocol {
			continue
		}
		if tx.UserWallet == "" || seen[tx.UserWallet] {
			continue
		}
		seen[tx.UserWallet] = true
		wallets = append(wallets, tx.UserWallet)
	}
	return wallets
}
