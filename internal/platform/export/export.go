// Package export writes datasets in formats downstream analytics can load.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ColumnsMetadataKey holds the dataset header, in order, in parquet exports.
const ColumnsMetadataKey = "careline.columns"

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatParquet:
		return FormatParquet, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or parquet)", s)
}

// Write encodes t to w in the given format.
func Write(w io.Writer, t *tabular.Table, format Format) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, t)
	case FormatParquet:
		return writeParquet(w, t)
	}
	return fmt.Errorf("unknown export format %q", format)
}

func writeCSV(w io.Writer, t *tabular.Table) error {
	data, err := tabular.Encode(t)
	if err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Schema builds a parquet schema with one string column per dataset column.
func Schema(name string, columns []string) (*parquet.Schema, error) {
	group := parquet.Group{}
	for i, c := range columns {
		if c == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if _, dup := group[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		group[c] = parquet.String()
	}
	return parquet.NewSchema(name, group), nil
}

func writeParquet(w io.Writer, t *tabular.Table) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("dataset has no columns")
	}
	schema, err := Schema("careline", t.Columns)
	if err != nil {
		return err
	}

	// Group fields are laid out by name; map each leaf back to its header slot.
	fields := schema.Fields()
	slot := make([]int, len(fields))
	for leaf, f := range fields {
		slot[leaf] = t.Index(f.Name())
	}

	pw := parquet.NewWriter(w, schema,
		parquet.Compression(&parquet.Snappy),
		parquet.CreatedBy("careline", "1.0", ""),
		parquet.KeyValueMetadata(ColumnsMetadataKey, strings.Join(t.Columns, ",")),
	)
	rows := make([]parquet.Row, 0, t.Len())
	for _, src := range t.Rows {
		row := make(parquet.Row, len(fields))
		for leaf, j := range slot {
			v := ""
			if j >= 0 && j < len(src) {
				v = src[j]
			}
			row[leaf] = parquet.ByteArrayValue([]byte(v)).Level(0, 0, leaf)
		}
		rows = append(rows, row)
	}
	if _, err := pw.WriteRows(rows); err != nil {
		pw.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
