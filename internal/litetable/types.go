package litetable

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TimestampedValue stores a value with its timestamp
type TimestampedValue struct {
	Value     []byte    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// VersionedQualifier maps qualifiers to their timestamped values
type VersionedQualifier map[string][]TimestampedValue

// WireRow is a row as a LiteTable cluster emits it on the wire:
// family → qualifier → versioned values.
type WireRow struct {
	Key     string                        `json:"key"`
	Columns map[string]VersionedQualifier `json:"cols"`
}

// Cell is a single versioned value addressed by its full coordinates. Two
// cells are equal only when every field, including the owning row key,
// matches exactly.
type Cell struct {
	RowKey    string
	Family    string
	Qualifier string
	Timestamp time.Time
	Value     []byte
}

// Equal reports exact equality over all five cell fields.
func (c Cell) Equal(o Cell) bool {
	return c.RowKey == o.RowKey &&
		c.Family == o.Family &&
		c.Qualifier == o.Qualifier &&
		c.Timestamp.Equal(o.Timestamp) &&
		bytes.Equal(c.Value, o.Value)
}

func (c Cell) String() string {
	return fmt.Sprintf("%s/%s:%s/%d/%q",
		c.RowKey, c.Family, c.Qualifier, c.Timestamp.UnixNano(), c.Value)
}

// Row is a scanned row with its cells in canonical order. Rows are immutable
// once produced by a cursor.
type Row struct {
	Key   string
	Cells []Cell
}

func (r *Row) String() string {
	if r == nil {
		return "<nil>"
	}
	parts := make([]string, 0, len(r.Cells))
	for _, c := range r.Cells {
		parts = append(parts, c.String())
	}
	return fmt.Sprintf("row=%s cells=[%s]", r.Key, strings.Join(parts, ", "))
}

// Flatten converts a wire row into its canonical form: cells ordered by
// family, then qualifier, then descending timestamp. Both sides of a
// verification run flatten with the same rules, so identical data always
// produces an identical cell sequence regardless of map iteration order.
func (w *WireRow) Flatten() *Row {
	row := &Row{Key: w.Key}
	for family, qualifiers := range w.Columns {
		for qualifier, values := range qualifiers {
			for _, tv := range values {
				row.Cells = append(row.Cells, Cell{
					RowKey:    w.Key,
					Family:    family,
					Qualifier: qualifier,
					Timestamp: tv.Timestamp,
					Value:     tv.Value,
				})
			}
		}
	}

	sort.SliceStable(row.Cells, func(i, j int) bool {
		a, b := row.Cells[i], row.Cells[j]
		if a.Family != b.Family {
			return a.Family < b.Family
		}
		if a.Qualifier != b.Qualifier {
			return a.Qualifier < b.Qualifier
		}
		return a.Timestamp.After(b.Timestamp)
	})

	return row
}
