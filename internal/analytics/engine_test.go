package analytics

import (
	"testing"
	"time"

	"github.com/amdonatusprince/shield/internal/domain"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngine().WithClock(func() time.Time { return testNow })
}

// tx builds a minimal normalized transaction for analytics tests.
func tx(id, protocol, wallet string, success bool, ts int64, transfers ...domain.TokenTransfer) domain.NormalizedTransaction {
	return domain.NormalizedTransaction{
		TransactionID:  id,
		Protocol:       protocol,
		UserWallet:     wallet,
		Success:        success,
		Timestamp:      ts,
		Type:           "Swap",
		TokenTransfers: transfers,
	}
}

func transfer(mint, owner string, amount float64) domain.TokenTransfer {
	return domain.TokenTransfer{Mint: mint, Owner: owner, Amount: amount, Decimals: 9}
}

func stream(txs ...domain.NormalizedTransaction) domain.StreamData {
	return domain.StreamData{Data: txs}
}

func TestSuccessRate(t *testing.T) {
	tests := []struct {
		count, failed int
		want          float64
	}{
		{0, 0, 0},
		{4, 1, 75},
		{2, 0, 100},
		{3, 3, 0},
	}
	for _, tt := range tests {
		if got := successRate(tt.count, tt.failed); got != tt.want {
			t.Errorf("successRate(%d, %d) = %v, want %v", tt.count, tt.failed, got, tt.want)
		}
	}
}

func TestSafeAverage(t *testing.T) {
	if got := safeAverage(0, 0); got != 0 {
		t.Errorf("safeAverage over empty set = %v, want 0", got)
	}
	if got := safeAverage(10, 4); got != 2.5 {
		t.Errorf("safeAverage(10, 4) = %v, want 2.5", got)
	}
}
