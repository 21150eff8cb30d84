package classify

import (
	"encoding/json"
	"testing"

	"github.com/amdonatusprince/shield/internal/domain"
	"github.com/amdonatusprince/shield/internal/registry"
)

func rawTx(programID, sig string) domain.RawTransaction {
	return domain.RawTransaction{ProgramID: programID, Signature: sig, Success: true}
}

func TestClassifyBatchDropsUnmatched(t *testing.T) {
	p := NewPipeline().WithNormalizer(NewNormalizer().WithClock(fixedClock))

	got := p.ClassifyBatch([]domain.RawTransaction{
		rawTx(registry.JupiterSwaps, "sig1"),
		rawTx("unregistered", "sig2"),
		rawTx(registry.OrcaWhirlpool, "sig3"),
	}, "")

	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2", len(got))
	}
	if got[0].TransactionID != "sig1" || got[1].TransactionID != "sig3" {
		t.Errorf("wrong survivors: %s, %s", got[0].TransactionID, got[1].TransactionID)
	}
}

func TestClassifyBatchProtocolFilter(t *testing.T) {
	p := NewPipeline().WithNormalizer(NewNormalizer().WithClock(fixedClock))

	// Top-level matches ORCA, but the filter asks for RAYDIUM: the
	// invocations are still scanned and the Raydium one matches.
	nested := domain.RawTransaction{
		ProgramID: registry.OrcaWhirlpool,
		Signature: "sigNested",
		ProgramInvocations: []domain.RawInvocation{
			{ProgramID: registry.JupiterSwaps},
			{ProgramID: registry.RaydiumAMMV4},
		},
	}

	got := p.ClassifyBatch([]domain.RawTransaction{
		rawTx(registry.JupiterSwaps, "sigJup"),
		nested,
	}, "RAYDIUM")

	if len(got) != 1 {
		t.Fatalf("got %d transactions, want 1", len(got))
	}
	if got[0].TransactionID != "sigNested" || got[0].Protocol != "RAYDIUM" {
		t.Errorf("got %s/%s", got[0].TransactionID, got[0].Protocol)
	}

	// The filter is exact-match: a lowercase name matches nothing.
	if got := p.ClassifyBatch([]domain.RawTransaction{rawTx(registry.JupiterSwaps, "x")}, "jupiter"); len(got) != 0 {
		t.Errorf("lowercase filter matched %d transactions, want 0", len(got))
	}
}

func TestClassifyBatchJSONShapes(t *testing.T) {
	p := NewPipeline().WithNormalizer(NewNormalizer().WithClock(fixedClock))

	single := rawTx(registry.JupiterSwaps, "s1")
	other := rawTx(registry.PumpFunCurve, "s2")

	singleJSON, _ := json.Marshal(single)
	arrayJSON, _ := json.Marshal([]domain.RawTransaction{single, other})
	nestedJSON, _ := json.Marshal([]interface{}{
		[]domain.RawTransaction{single},
		other,
	})

	tests := []struct {
		name  string
		input []byte
		want  int
	}{
		{"single object wrapped", singleJSON, 1},
		{"flat array", arrayJSON, 2},
		{"nested array flattened one level", nestedJSON, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ClassifyBatchJSON(tt.input, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d transactions, want %d", len(got), tt.want)
			}
		})
	}
}

func TestClassifyBatchJSONMalformed(t *testing.T) {
	p := NewPipeline()

	for _, input := range []string{
		`{"programId": 42}`,
		`[{"programId": "x"}, {"slot": "notanumber"}]`,
		`"just a string"`,
		`not json at all`,
	} {
		if _, err := p.ClassifyBatchJSON([]byte(input), ""); err == nil {
			t.Errorf("input %q: expected error", input)
		}
	}
}

func TestParseRawTransactionsFailsFast(t *testing.T) {
	// A bad element anywhere rejects the whole batch.
	input := []byte(`[{"signature":"ok"}, [{"signature":"ok2"}], {"slot":"bad"}]`)
	if _, err := ParseRawTransactions(input); err == nil {
		t.Error("expected error for partially malformed batch")
	}
}
