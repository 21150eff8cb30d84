package analytics

import (
	"reflect"
	"testing"
	"time"

	"github.com/amdonatusprince/shield/internal/domain"
)

func TestDispatchRouting(t *testing.T) {
	e := testEngine()
	s := stream(
		tx("a", "JUPITER", "w1", true, testNow.Add(-time.Hour).Unix(), transfer("mintA", "w1", 5)),
		tx("b", "ORCA", "w2", false, testNow.Add(-time.Hour).Unix()),
	)

	tests := []struct {
		name  string
		query domain.Query
		check func(t *testing.T, result interface{})
	}{
		{
			name:  "getAll",
			query: domain.Query{Kind: domain.QueryAll, Limit: 1},
			check: func(t *testing.T, result interface{}) {
				txs := result.([]domain.NormalizedTransaction)
				if len(txs) != 1 || txs[0].TransactionID != "a" {
					t.Errorf("got %v", txs)
				}
			},
		},
		{
			name:  "getByProtocol",
			query: domain.Query{Kind: domain.QueryByProtocol, Protocol: "orca"},
			check: func(t *testing.T, result interface{}) {
				txs := result.([]domain.NormalizedTransaction)
				if len(txs) != 1 || txs[0].TransactionID != "b" {
					t.Errorf("got %v", txs)
				}
			},
		},
		{
			name:  "getVolume",
			query: domain.Query{Kind: domain.QueryVolume, Protocol: "JUPITER", Timeframe: 24 * time.Hour},
			check: func(t *testing.T, result interface{}) {
				report := result.(VolumeReport)
				if report.TransactionCount != 1 || report.VolumeByToken["mintA"] != 5 {
					t.Errorf("got %+v", report)
				}
			},
		},
		{
			name:  "getActiveWallets",
			query: domain.Query{Kind: domain.QueryActiveWallets, Protocol: "JUPITER"},
			check: func(t *testing.T, result interface{}) {
				if wallets := result.([]string); !reflect.DeepEqual(wallets, []string{"w1"}) {
					t.Errorf("got %v", wallets)
				}
			},
		},
		{
			name:  "getTokenTransferStats",
			query: domain.Query{Kind: domain.QueryTokenTransferStats, Protocol: "JUPITER"},
			check: func(t *testing.T, result interface{}) {
				stats := result.(map[string]TokenStats)
				if stats["mintA"].TransferCount != 1 {
					t.Errorf("got %v", stats)
				}
			},
		},
		{
			name:  "getMultiProtocolStats",
			query: domain.Query{Kind: domain.QueryMultiProtocolStats},
			check: func(t *testing.T, result interface{}) {
				stats := result.(map[string]ProtocolStats)
				if len(stats) != 2 {
					t.Errorf("got %v", stats)
				}
			},
		},
		{
			name:  "getDailyStats",
			query: domain.Query{Kind: domain.QueryDailyStats, Protocol: "JUPITER"},
			check: func(t *testing.T, result interface{}) {
				if daily := result.(DailyStats); daily.TransactionCount != 1 {
					t.Errorf("got %+v", daily)
				}
			},
		},
		{
			name:  "searchWallet",
			query: domain.Query{Kind: domain.QuerySearchWallet, Wallet: "w1"},
			check: func(t *testing.T, result interface{}) {
				if report := result.(WalletReport); report.TransactionCount != 1 {
					t.Errorf("got %+v", report)
				}
			},
		},
		{
			name:  "calculateFees",
			query: domain.Query{Kind: domain.QueryProtocolFees},
			check: func(t *testing.T, result interface{}) {
				fees := result.(map[string]FeeStats)
				if len(fees) != 2 {
					t.Errorf("got %v", fees)
				}
			},
		},
		{
			name:  "totalValueTransferred",
			query: domain.Query{Kind: domain.QueryTotalValueTransferred, Mint: "mintA"},
			check: func(t *testing.T, result interface{}) {
				if report := result.(MintReport); report.TotalVolume != 5 {
					t.Errorf("got %+v", report)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := e.Dispatch(s, tt.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, result)
		})
	}
}

func TestDispatchAlertLarge(t *testing.T) {
	e := testEngine()
	s := stream(tx("big", "JUPITER", "w1", true, 100, transfer("mintA", "w1", 500)))

	var alerted []string
	result, err := e.Dispatch(s, domain.Query{
		Kind:      domain.QueryAlertLarge,
		Threshold: 100,
		Sink: func(tx domain.NormalizedTransaction) error {
			alerted = append(alerted, tx.TransactionID)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Errorf("alert dispatch returned %v, want nil", result)
	}
	if len(alerted) != 1 || alerted[0] != "big" {
		t.Errorf("alerted %v", alerted)
	}
}

func TestDispatchUnknownKindPassesThrough(t *testing.T) {
	e := testEngine()
	s := stream(
		tx("a", "JUPITER", "w1", true, 100),
		tx("b", "ORCA", "w2", false, 200),
	)

	result, err := e.Dispatch(s, domain.Query{Kind: "someFutureQuery"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	txs, ok := result.([]domain.NormalizedTransaction)
	if !ok {
		t.Fatalf("result type %T, want transaction slice", result)
	}
	if !reflect.DeepEqual(txs, s.Data) {
		t.Errorf("pass-through altered the data")
	}
}
