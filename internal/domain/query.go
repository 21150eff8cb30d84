package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// QueryKind selects one analytics operation. The string values are the wire
// tags accepted by the query surface.
type QueryKind string

// Supported query kinds.
const (
	QueryAll                   QueryKind = "getAll"
	QueryByProtocol            QueryKind = "getByProtocol"
	QueryVolume                QueryKind = "getVolume"
	QueryActiveWallets         QueryKind = "getActiveWallets"
	QueryTokenTransferStats    QueryKind = "getTokenTransferStats"
	QueryAlertLarge            QueryKind = "alertLarge"
	QueryMultiProtocolStats    QueryKind = "getMultiProtocolStats"
	QueryDailyStats            QueryKind = "getDailyStats"
	QuerySearchWallet          QueryKind = "searchWallet"
	QueryProtocolFees          QueryKind = "calculateFees"
	QueryTotalValueTransferred QueryKind = "totalValueTransferred"
)

// Query is the parameter record for one dispatch. Fields not used by the
// selected kind are ignored; missing parameters are not validated: a
// zero-value protocol/mint/wallet matches nothing for exact-match
// operations, and a zero threshold alerts on every transaction.
type Query struct {
	Kind      QueryKind     `json:"type"`
	Protocol  string        `json:"protocol,omitempty"`
	Mint      string        `json:"mint,omitempty"`
	Wallet    string        `json:"wallet,omitempty"`
	Limit     int           `json:"limit,omitempty"`
	Timeframe time.Duration `json:"timeframe,omitempty"`
	Threshold float64       `json:"threshold,omitempty"`

	// Sink receives each transaction qualifying under QueryAlertLarge, in
	// input order. A non-nil error aborts the remaining invocations.
	Sink func(NormalizedTransaction) error `json:"-"`
}

// UnmarshalJSON decodes the wire form of a query. The timeframe field
// accepts a number of seconds or a Go duration string ("24h", "90m");
// a raw time.Duration nanosecond count is not part of the wire contract.
func (q *Query) UnmarshalJSON(data []byte) error {
	type plain Query
	aux := struct {
		Timeframe json.RawMessage `json:"timeframe,omitempty"`
		*plain
	}{plain: (*plain)(q)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Timeframe) == 0 {
		return nil
	}

	var secs float64
	if err := json.Unmarshal(aux.Timeframe, &secs); err == nil {
		q.Timeframe = time.Duration(secs * float64(time.Second))
		return nil
	}

	var s string
	if err := json.Unmarshal(aux.Timeframe, &s); err != nil {
		return fmt.Errorf("timeframe must be a number of seconds or a duration string")
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse timeframe: %w", err)
	}
	q.Timeframe = d
	return nil
}
