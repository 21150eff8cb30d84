package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amdonatusprince/shield/internal/domain"
	"github.com/amdonatusprince/shield/internal/storage"
)

// ArchiveStore implements storage.TransactionArchive using ClickHouse.
// Nested transfer and balance data is stored as JSON strings; the archive
// serves whole records back, not column-level aggregation.
type ArchiveStore struct {
	conn *Conn
}

// NewArchiveStore creates a new ArchiveStore.
func NewArchiveStore(conn *Conn) *ArchiveStore {
	return &ArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TransactionArchive = (*ArchiveStore)(nil)

// InsertBulk appends a batch of normalized transactions.
func (s *ArchiveStore) InsertBulk(ctx context.Context, txs []domain.NormalizedTransaction) error {
	if len(txs) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO transactions (
			transaction_id, block_slot, timestamp, success, tx_type,
			protocol, sub_type, program, user_wallet, user_balance_change,
			token_transfers, account_changes, instruction, logs,
			processed_at, last_updated
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, tx := range txs {
		transfers, err := json.Marshal(tx.TokenTransfers)
		if err != nil {
			return fmt.Errorf("marshal token transfers: %w", err)
		}
		changes, err := json.Marshal(tx.AccountChanges)
		if err != nil {
			return fmt.Errorf("marshal account changes: %w", err)
		}
		instruction, err := json.Marshal(tx.Instruction)
		if err != nil {
			return fmt.Errorf("marshal instruction: %w", err)
		}

		err = batch.Append(
			tx.TransactionID, uint64(tx.BlockSlot), tx.Timestamp, tx.Success, tx.Type,
			tx.Protocol, tx.SubType, tx.Program, tx.UserWallet, tx.UserBalanceChange,
			string(transfers), string(changes), string(instruction), tx.Logs,
			tx.ProcessedAt, tx.LastUpdated,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTimeRange retrieves transactions within [start, end) unix seconds,
// ordered by (block slot, transaction id).
func (s *ArchiveStore) GetByTimeRange(ctx context.Context, start, end int64) ([]domain.NormalizedTransaction, error) {
	query := `
		SELECT transaction_id, block_slot, timestamp, success, tx_type,
		       protocol, sub_type, program, user_wallet, user_balance_change,
		       token_transfers, account_changes, instruction, logs,
		       processed_at, last_updated
		FROM transactions
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY block_slot ASC, transaction_id ASC
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	var txs []domain.NormalizedTransaction
	for rows.Next() {
		var (
			tx          domain.NormalizedTransaction
			blockSlot   uint64
			transfers   string
			changes     string
			instruction string
		)

		err := rows.Scan(
			&tx.TransactionID, &blockSlot, &tx.Timestamp, &tx.Success, &tx.Type,
			&tx.Protocol, &tx.SubType, &tx.Program, &tx.UserWallet, &tx.UserBalanceChange,
			&transfers, &changes, &instruction, &tx.Logs,
			&tx.ProcessedAt, &tx.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}

		tx.BlockSlot = int64(blockSlot)
		if err := json.Unmarshal([]byte(transfers), &tx.TokenTransfers); err != nil {
			return nil, fmt.Errorf("unmarshal token transfers: %w", err)
		}
		if err := json.Unmarshal([]byte(changes), &tx.AccountChanges); err != nil {
			return nil, fmt.Errorf("unmarshal account changes: %w", err)
		}
		if err := json.Unmarshal([]byte(instruction), &tx.Instruction); err != nil {
			return nil, fmt.Errorf("unmarshal instruction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return txs, nil
}
