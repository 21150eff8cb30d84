package analytics

import "github.com/amdonatusprince/shield/internal/domain"

// Dispatch routes a query to the matching engine operation. Unrecognized
// kinds pass the input data through unchanged rather than erroring.
// QueryAlertLarge is side-effecting: the result is nil and the sink error,
// if any, is returned; every other kind returns a JSON-serializable value
// and a nil error.
func (e *Engine) Dispatch(s domain.StreamData, q domain.Query) (interface{}, error) {
	switch q.Kind {
	case domain.QueryAll:
		return e.All(s, q.Limit), nil
	case domain.QueryByProtocol:
		return e.ByProtocol(s, q.Protocol, q.Limit), nil
	case domain.QueryVolume:
		return e.Volume(s, q.Protocol, q.Timeframe), nil
	case domain.QueryActiveWallets:
		return e.ActiveWallets(s, q.Protocol), nil
	case domain.QueryTokenTransferStats:
		return e.TokenTransferStats(s, q.Protocol), nil
	case domain.QueryAlertLarge:
		return nil, e.AlertLargeTransactions(s, q.Threshold, q.Sink)
	case domain.QueryMultiProtocolStats:
		return e.MultiProtocolStats(s), nil
	case domain.QueryDailyStats:
		return e.Daily(s, q.Protocol), nil
	case domain.QuerySearchWallet:
		return e.SearchByWallet(s, q.Wallet), nil
	case domain.QueryProtocolFees:
		return e.ProtocolFees(s, q.Protocol), nil
	case domain.QueryTotalValueTransferred:
		return e.TotalValueTransferred(s, q.Mint), nil
	default:
		return s.Data, nil
	}
}
