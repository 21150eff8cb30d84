// Package main provides an offline classifier: it reads a JSON batch of raw
// transactions from a file or stdin, classifies it, and either prints the
// normalized records or evaluates a single analytics query over them.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/amdonatusprince/shield/internal/analytics"
	"github.com/amdonatusprince/shield/internal/classify"
	"github.com/amdonatusprince/shield/internal/domain"
)

func main() {
	input := flag.String("input", "-", "Input file with raw transaction JSON ('-' for stdin)")
	protocol := flag.String("protocol", "", "Keep only transactions for this protocol (empty keeps all)")
	query := flag.String("query", "", "Analytics query kind to evaluate (empty prints normalized records)")
	queryProtocol := flag.String("query-protocol", "", "Protocol parameter for the query")
	wallet := flag.String("wallet", "", "Wallet parameter for the query")
	mint := flag.String("mint", "", "Mint parameter for the query")
	limit := flag.Int("limit", 0, "Limit parameter for the query (0 means all)")
	timeframe := flag.Duration("timeframe", 24*time.Hour, "Timeframe parameter for the query")
	threshold := flag.Float64("threshold", 0, "Threshold parameter for alert queries")
	pretty := flag.Bool("pretty", true, "Indent JSON output")

	flag.Parse()

	logger := log.New(os.Stderr, "[classify] ", log.LstdFlags)

	raw, err := readInput(*input)
	if err != nil {
		logger.Fatalf("Read input: %v", err)
	}

	pipeline := classify.NewPipeline()
	normalized, err := pipeline.ClassifyBatchJSON(raw, *protocol)
	if err != nil {
		logger.Fatalf("Classify: %v", err)
	}
	logger.Printf("Classified %d transaction(s)", len(normalized))

	var result interface{} = normalized
	if *query != "" {
		engine := analytics.NewEngine()
		stream := domain.StreamData{Data: normalized}

		q := domain.Query{
			Kind:      domain.QueryKind(*query),
			Protocol:  *queryProtocol,
			Wallet:    *wallet,
			Mint:      *mint,
			Limit:     *limit,
			Timeframe: *timeframe,
			Threshold: *threshold,
		}
		if q.Kind == domain.QueryAlertLarge {
			var alerts []domain.NormalizedTransaction
			q.Sink = func(tx domain.NormalizedTransaction) error {
				alerts = append(alerts, tx)
				return nil
			}
			if _, err := engine.Dispatch(stream, q); err != nil {
				logger.Fatalf("Query: %v", err)
			}
			result = alerts
		} else {
			result, err = engine.Dispatch(stream, q)
			if err != nil {
				logger.Fatalf("Query: %v", err)
			}
		}
	}

	if err := writeJSON(os.Stdout, result, *pretty); err != nil {
		logger.Fatalf("Write output: %v", err)
	}
}

// readInput reads the whole payload from a file or stdin.
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeJSON encodes the result to the writer.
func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
