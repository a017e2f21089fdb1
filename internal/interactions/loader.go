// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package interactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver registration

	"github.com/tomtom215/recsim/internal/logging"
)

// ErrEmptyTable is returned when the source file produced no rows.
var ErrEmptyTable = errors.New("interaction table is empty")

// Columns names the source columns holding each interaction field.
type Columns struct {
	User   string `koanf:"user"`
	Item   string `koanf:"item"`
	Rating string `koanf:"rating"`
	Split  string `koanf:"split"`
}

// DefaultColumns returns the conventional column names.
func DefaultColumns() Columns {
	return Columns{
		User:   "user_id",
		Item:   "item_id",
		Rating: "rating",
		Split:  "split",
	}
}

func (c Columns) withDefaults() Columns {
	d := DefaultColumns()
	if c.User == "" {
		c.User = d.User
	}
	if c.Item == "" {
		c.Item = d.Item
	}
	if c.Rating == "" {
		c.Rating = d.Rating
	}
	if c.Split == "" {
		c.Split = d.Split
	}
	return c
}

// Table is a loaded interaction table with dense item ids.
type Table struct {
	Train    []Interaction
	Test     []Interaction
	Remapper *ItemRemapper
}

// Store builds the lookup structure over the table.
func (t *Table) Store() (*Store, error) {
	return NewStore(t.Train, t.Test)
}

// NewTable splits raw rows by label, remaps item ids over both splits and
// returns the dense table.
func NewTable(rows []Interaction) (*Table, error) {
	var train, test []Interaction
	for i, row := range rows {
		switch row.Split {
		case SplitTrain:
			train = append(train, row)
		case SplitTest:
			test = append(test, row)
		default:
			return nil, fmt.Errorf("row %d: %w: %q", i, ErrUnknownSplit, row.Split)
		}
	}

	remapper := NewItemRemapper(train, test)
	denseTrain, err := remapper.Apply(train)
	if err != nil {
		return nil, fmt.Errorf("remap train split: %w", err)
	}
	denseTest, err := remapper.Apply(test)
	if err != nil {
		return nil, fmt.Errorf("remap test split: %w", err)
	}

	return &Table{Train: denseTrain, Test: denseTest, Remapper: remapper}, nil
}

// LoadTable reads an interaction file through an in-process DuckDB instance.
// The reader is picked by extension: .parquet, .json/.ndjson, anything else
// is treated as CSV. Row order is preserved so item remapping is stable.
func LoadTable(ctx context.Context, path string, cols Columns) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat interaction file: %w", err)
	}
	cols = cols.withDefaults()

	conn, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // in-memory database, nothing to flush

	start := time.Now()
	query := fmt.Sprintf(
		`SELECT CAST(%s AS BIGINT), CAST(%s AS BIGINT), CAST(%s AS DOUBLE), CAST(%s AS VARCHAR) FROM %s`,
		quoteIdent(cols.User), quoteIdent(cols.Item), quoteIdent(cols.Rating), quoteIdent(cols.Split),
		readerExpr(path),
	)

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query interaction file: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // read-only cursor

	var all []Interaction
	for rows.Next() {
		var (
			user, item int64
			rating     float64
			label      string
		)
		if err := rows.Scan(&user, &item, &rating, &label); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(all), err)
		}
		split, err := ParseSplit(label)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(all), err)
		}
		all = append(all, Interaction{
			UserID: int(user),
			ItemID: int(item),
			Rating: rating,
			Split:  split,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	if len(all) == 0 {
		return nil, ErrEmptyTable
	}

	table, err := NewTable(all)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("path", path).
		Int("rows", len(all)).
		Int("train", len(table.Train)).
		Int("test", len(table.Test)).
		Int("items", table.Remapper.Len()).
		Dur("duration", time.Since(start)).
		Msg("Loaded interaction table")

	return table, nil
}

// readerExpr returns the DuckDB table function for the file.
func readerExpr(path string) string {
	lit := quoteLiteral(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return "read_parquet(" + lit + ")"
	case ".json", ".ndjson", ".jsonl":
		return "read_json_auto(" + lit + ")"
	default:
		return "read_csv_auto(" + lit + ", header = true)"
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
