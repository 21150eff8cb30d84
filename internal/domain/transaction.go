package domain

import "time"

// RawTokenAmount mirrors the uiTokenAmount object attached to token balance
// changes in the upstream feed.
type RawTokenAmount struct {
	UIAmount  float64 `json:"uiAmount"`
	Decimals  int     `json:"decimals"`
	RawAmount string  `json:"amount"`
}

// RawTokenBalance is a single token balance change on a raw transaction or
// instruction.
type RawTokenBalance struct {
	Mint          string         `json:"mint"`
	Owner         string         `json:"owner"`
	UITokenAmount RawTokenAmount `json:"uiTokenAmount"`
}

// RawAccount is an account entry with pre/post lamport balances.
type RawAccount struct {
	Pubkey      string `json:"pubkey"`
	PreBalance  int64  `json:"preBalance"`
	PostBalance int64  `json:"postBalance"`
}

// RawInstruction carries the instruction-scoped fields of a program
// invocation.
type RawInstruction struct {
	Index         int               `json:"index"`
	Data          string            `json:"data"`
	Accounts      []RawAccount      `json:"accounts"`
	TokenBalances []RawTokenBalance `json:"tokenBalances"`
}

// RawInvocation is a nested program invocation within a raw transaction.
type RawInvocation struct {
	ProgramID   string         `json:"programId"`
	Instruction RawInstruction `json:"instruction"`
}

// RawTransaction is the opaque input record produced by the upstream feed.
// Flat-shape transactions carry accounts/logs/tokenBalanceChanges directly;
// nested-shape transactions additionally carry programInvocations, each with
// its own instruction scope.
type RawTransaction struct {
	ProgramID           string            `json:"programId"`
	Accounts            []RawAccount      `json:"accounts"`
	Logs                []string          `json:"logs"`
	Signature           string            `json:"signature"`
	Slot                int64             `json:"slot"`
	BlockTime           int64             `json:"blockTime"`
	Success             bool              `json:"success"`
	TokenBalanceChanges []RawTokenBalance `json:"tokenBalanceChanges"`
	InstructionIndex    int               `json:"instructionIndex"`
	InstructionData     string            `json:"instructionData"`
	ProgramInvocations  []RawInvocation   `json:"programInvocations"`
}

// ProtocolMatch identifies the protocol and sub-variant a program id
// resolved to.
type ProtocolMatch struct {
	Protocol string `json:"protocol"`
	SubType  string `json:"subType"`
}

// TokenTransfer is a normalized token movement.
type TokenTransfer struct {
	Mint      string  `json:"mint"`
	Owner     string  `json:"owner"`
	Amount    float64 `json:"amount"`
	Decimals  int     `json:"decimals"`
	RawAmount string  `json:"rawAmount"`
}

// AccountChange is the lamport balance delta of one account.
type AccountChange struct {
	Address       string `json:"address"`
	BalanceChange int64  `json:"balanceChange"`
}

// InstructionRef points at the instruction a normalized transaction was
// derived from.
type InstructionRef struct {
	Index int    `json:"index"`
	Data  string `json:"data"`
}

// NormalizedTransaction is the canonical record all analytics operate on.
// Records are immutable once produced.
type NormalizedTransaction struct {
	TransactionID     string          `json:"transactionId"`
	BlockSlot         int64           `json:"blockSlot"`
	Timestamp         int64           `json:"timestamp"`
	Success           bool            `json:"success"`
	Type              string          `json:"type"`
	Protocol          string          `json:"protocol"`
	SubType           string          `json:"subType"`
	Program           string          `json:"program"`
	UserWallet        string          `json:"userWallet,omitempty"`
	UserBalanceChange int64           `json:"userBalanceChange"`
	TokenTransfers    []TokenTransfer `json:"tokenTransfers"`
	AccountChanges    []AccountChange `json:"accountChanges"`
	Instruction       InstructionRef  `json:"instruction"`
	Logs              []string        `json:"logs"`
	ProcessedAt       time.Time       `json:"processedAt"`
	LastUpdated       time.Time       `json:"lastUpdated"`
}

// StreamData wraps the normalized transaction set handed to the analytics
// engine. The slice is treated as read-only by every consumer.
type StreamData struct {
	Data []NormalizedTransaction `json:"data"`
}
