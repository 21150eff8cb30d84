package classify

import (
	"strings"
	"time"

	"github.com/amdonatusprince/shield/internal/domain"
)

// instructionMarker is the log fragment that carries the instruction name.
const instructionMarker = "Instruction:"

// noiseFragments are stripped from normalized logs. Case-sensitive substring
// match, applied after any invocation-specific pre-filter.
var noiseFragments = []string{"invoke", "success", "consumed"}

// userWalletIndex is the positional convention of the upstream data: the
// account at index 2 is treated as the user wallet. This is a documented
// heuristic, not a guarantee that index 2 is the signer.
const userWalletIndex = 2

// Normalizer produces canonical transaction records.
type Normalizer struct {
	clock func() time.Time
}

// NewNormalizer creates a normalizer using the wall clock.
func NewNormalizer() *Normalizer {
	return &Normalizer{clock: func() time.Time { return time.Now().UTC() }}
}

// WithClock sets a custom clock for deterministic output.
func (n *Normalizer) WithClock(clock func() time.Time) *Normalizer {
	n.clock = clock
	return n
}

// Normalize builds a canonical record from a transaction whose top-level
// program id matched. Accounts, logs and token balance changes are read
// directly off the transaction.
func (n *Normalizer) Normalize(tx domain.RawTransaction, match domain.ProtocolMatch) domain.NormalizedTransaction {
	return n.build(tx, match, tx.ProgramID, tx.Accounts, tx.TokenBalanceChanges,
		domain.InstructionRef{Index: tx.InstructionIndex, Data: tx.InstructionData}, tx.Logs)
}

// NormalizeInvocation builds a canonical record from a nested invocation
// that matched. Accounts and token balances come from the invocation's
// instruction; logs are pre-filtered to lines mentioning the invocation's
// program id or carrying an instruction name.
func (n *Normalizer) NormalizeInvocation(tx domain.RawTransaction, inv domain.RawInvocation, match domain.ProtocolMatch) domain.NormalizedTransaction {
	var logs []string
	for _, line := range tx.Logs {
		if strings.Contains(line, inv.ProgramID) || strings.Contains(line, instructionMarker) {
			logs = append(logs, line)
		}
	}
	return n.build(tx, match, inv.ProgramID, inv.Instruction.Accounts, inv.Instruction.TokenBalances,
		domain.InstructionRef{Index: inv.Instruction.Index, Data: inv.Instruction.Data}, logs)
}

// build applies the derivation rules shared by both call shapes.
func (n *Normalizer) build(
	tx domain.RawTransaction,
	match domain.ProtocolMatch,
	program string,
	accounts []domain.RawAccount,
	tokenBalances []domain.RawTokenBalance,
	instruction domain.InstructionRef,
	logs []string,
) domain.NormalizedTransaction {
	now := n.clock()

	var userWallet string
	if len(accounts) > userWalletIndex {
		userWallet = accounts[userWalletIndex].Pubkey
	}

	var userBalanceChange int64
	if userWallet != "" {
		for _, a := range accounts {
			if a.Pubkey == userWallet {
				userBalanceChange = a.PostBalance - a.PreBalance
				break
			}
		}
	}

	transfers := make([]domain.TokenTransfer, 0, len(tokenBalances))
	for _, tb := range tokenBalances {
		transfers = append(transfers, domain.TokenTransfer{
			Mint:      tb.Mint,
			Owner:     tb.Owner,
			Amount:    tb.UITokenAmount.UIAmount,
			Decimals:  tb.UITokenAmount.Decimals,
			RawAmount: tb.UITokenAmount.RawAmount,
		})
	}

	changes := make([]domain.AccountChange, 0, len(accounts))
	for _, a := range accounts {
		changes = append(changes, domain.AccountChange{
			Address:       a.Pubkey,
			BalanceChange: a.PostBalance - a.PreBalance,
		})
	}

	return domain.NormalizedTransaction{
		TransactionID:     tx.Signature,
		BlockSlot:         tx.Slot,
		Timestamp:         tx.BlockTime,
		Success:           tx.Success,
		Type:              deriveType(tx.Logs),
		Protocol:          match.Protocol,
		SubType:           match.SubType,
		Program:           program,
		UserWallet:        userWallet,
		UserBalanceChange: userBalanceChange,
		TokenTransfers:    transfers,
		AccountChanges:    changes,
		Instruction:       instruction,
		Logs:              filterNoise(logs),
		ProcessedAt:       now,
		LastUpdated:       now,
	}
}

// deriveType scans logs for the first instruction name. Returns "Unknown"
// when none is found.
func deriveType(logs []string) string {
	for _, line := range logs {
		if idx := strings.Index(line, instructionMarker); idx >= 0 {
			name := strings.TrimSpace(line[idx+len(instructionMarker):])
			if name != "" {
				return name
			}
		}
	}
	return "Unknown"
}

// filterNoise strips invoke/success/consumed lines.
func filterNoise(logs []string) []string {
	filtered := make([]string, 0, len(logs))
	for _, line := range logs {
		noisy := false
		for _, frag := range noiseFragments {
			if strings.Contains(line, frag) {
				noisy = true
				break
			}
		}
		if !noisy {
			filtered = append(filtered, line)
		}
	}
	return filtered
}
