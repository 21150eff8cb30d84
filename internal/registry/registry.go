// Package registry holds the static mapping of DeFi protocols and their
// sub-variants to on-chain program ids.
package registry

import (
	"sort"

	"github.com/amdonatusprince/shield/internal/domain"
)

// Known program ids, grouped by protocol.
const (
	// Jupiter
	JupiterSwaps       = "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4"
	JupiterLimitOrders = "jupoNjAxXgZ4rjzxzPMP4oxduvQsQtZzyknqvzYNrNu"
	JupiterDCA         = "DCA265Vj8a9CEuX1eb1LWRnDT7uK6q1xMipnNyatn23M"

	// Raydium
	RaydiumAMMV4 = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	RaydiumCLMM  = "CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK"
	RaydiumCPMM  = "CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C"

	// Orca
	OrcaWhirlpool = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
	OrcaTokenSwap = "9W959DqEETiGZocYWCQPaJ6sBmUzgfxXfqGeTEdp3aQP"

	// pump.fun
	PumpFunCurve = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"

	// Meteora
	MeteoraDLMM  = "LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo"
	MeteoraPools = "Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB"

	// Phoenix
	PhoenixCLOB = "PhoeNiXZ8ByJGLkxNfZRnkUfjvmuYqLR89jjFHGqdXY"
)

// Programs is the nested protocol → sub-variant → program id mapping. The
// registry contains no duplicate program ids.
var Programs = map[string]map[string]string{
	"JUPITER": {
		"SWAPS":        JupiterSwaps,
		"LIMIT_ORDERS": JupiterLimitOrders,
		"DCA":          JupiterDCA,
	},
	"RAYDIUM": {
		"AMM_V4": RaydiumAMMV4,
		"CLMM":   RaydiumCLMM,
		"CPMM":   RaydiumCPMM,
	},
	"ORCA": {
		"WHIRLPOOL":  OrcaWhirlpool,
		"TOKEN_SWAP": OrcaTokenSwap,
	},
	"PUMPFUN": {
		"BONDING_CURVE": PumpFunCurve,
	},
	"METEORA": {
		"DLMM":  MeteoraDLMM,
		"POOLS": MeteoraPools,
	},
	"PHOENIX": {
		"CLOB": PhoenixCLOB,
	},
}

// Entry is one (protocol, subType, programID) triple.
type Entry struct {
	Protocol  string
	SubType   string
	ProgramID string
}

// Entries enumerates all registry triples sorted by (protocol, subType) for
// deterministic iteration.
func Entries() []Entry {
	var entries []Entry
	for protocol, subs := range Programs {
		for subType, id := range subs {
			entries = append(entries, Entry{Protocol: protocol, SubType: subType, ProgramID: id})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Protocol != entries[j].Protocol {
			return entries[i].Protocol < entries[j].Protocol
		}
		return entries[i].SubType < entries[j].SubType
	})
	return entries
}

// Index is the precomputed reverse lookup from program id to protocol match.
// Lookups run per transaction and per invocation, so the scan over the
// nested mapping happens once at construction.
type Index struct {
	byProgram map[string]domain.ProtocolMatch
}

// NewIndex builds the reverse index over the default registry.
func NewIndex() *Index {
	ix := &Index{byProgram: make(map[string]domain.ProtocolMatch)}
	for _, e := range Entries() {
		ix.byProgram[e.ProgramID] = domain.ProtocolMatch{Protocol: e.Protocol, SubType: e.SubType}
	}
	return ix
}

// Lookup resolves a program id to its protocol match.
func (ix *Index) Lookup(programID string) (domain.ProtocolMatch, bool) {
	m, ok := ix.byProgram[programID]
	return m, ok
}

// Size returns the number of registered program ids.
func (ix *Index) Size() int {
	return len(ix.byProgram)
}
