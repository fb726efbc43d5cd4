package ingest

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// mergeKind selects which of the three CRDT merge strategies a
// tableDescriptor's upsert statement implements.
type mergeKind int

const (
	mergeLWWRegister mergeKind = iota
	mergeGrowOnlySet
	mergeCounterBacked
)

// tableDescriptor parameterizes the generic merge primitive by table, key,
// and payload shape, per the Design Note in spec.md that a single
// primitive should be generated from a table-driven registry rather than
// duplicated per operation kind.
type tableDescriptor struct {
	table          string
	keyColumns     []string
	payloadColumns []string
	ownerColumn    string // "" when the table carries no owner column
	kind           mergeKind
	counterColumn  string // only meaningful when kind == mergeCounterBacked
}

const (
	colLastModified       = "last_modified"
	colLastModifiedClient = "last_modified_client"
	colSeqNo              = "seq_no"
)

// applyMerge executes exactly one insert-with-conditional-update statement
// against the descriptor's table: no read-modify-write window exists, so
// the compare-and-swap against (last_modified, last_modified_client) or
// the counter column is race-free even under concurrent dispatch.
func applyMerge(tx *gorm.DB, desc tableDescriptor, keyValues []any, payloadValues []any, ownerValue string, ts Timestamp, clientID ClientID, seqNo int64) error {
	if len(keyValues) != len(desc.keyColumns) {
		return fmt.Errorf("ingest: key value count mismatch for table %s", desc.table)
	}
	if len(payloadValues) != len(desc.payloadColumns) {
		return fmt.Errorf("ingest: payload value count mismatch for table %s", desc.table)
	}

	columns := make([]string, 0, len(desc.keyColumns)+len(desc.payloadColumns)+4)
	placeholders := make([]string, 0, cap(columns))
	args := make([]any, 0, cap(columns))

	appendColumn := func(name string, value any) {
		columns = append(columns, name)
		placeholders = append(placeholders, "?")
		args = append(args, value)
	}

	for i, col := range desc.keyColumns {
		appendColumn(col, keyValues[i])
	}
	for i, col := range desc.payloadColumns {
		appendColumn(col, payloadValues[i])
	}
	if desc.ownerColumn != "" {
		appendColumn(desc.ownerColumn, ownerValue)
	}
	appendColumn(colLastModified, ts.Int64())
	appendColumn(colLastModifiedClient, clientID.String())
	appendColumn(colSeqNo, seqNo)

	conflictTarget := strings.Join(desc.keyColumns, ", ")

	var statement string
	switch desc.kind {
	case mergeGrowOnlySet:
		statement = fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO NOTHING",
			desc.table, strings.Join(columns, ", "), strings.Join(placeholders, ", "), conflictTarget,
		)
	case mergeLWWRegister:
		setClauses := make([]string, 0, len(desc.payloadColumns)+3)
		for _, col := range desc.payloadColumns {
			setClauses = append(setClauses, fmt.Sprintf("%s = excluded.%s", col, col))
		}
		setClauses = append(setClauses,
			fmt.Sprintf("%s = excluded.%s", colLastModified, colLastModified),
			fmt.Sprintf("%s = excluded.%s", colLastModifiedClient, colLastModifiedClient),
			fmt.Sprintf("%s = excluded.%s", colSeqNo, colSeqNo),
		)
		statement = fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s WHERE (%s, %s) < (excluded.%s, excluded.%s)",
			desc.table, strings.Join(columns, ", "), strings.Join(placeholders, ", "), conflictTarget,
			strings.Join(setClauses, ", "),
			colLastModified, colLastModifiedClient, colLastModified, colLastModifiedClient,
		)
	case mergeCounterBacked:
		if desc.counterColumn == "" {
			return fmt.Errorf("ingest: counter column not configured for table %s", desc.table)
		}
		statement = fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s = excluded.%s, %s = excluded.%s, %s = excluded.%s, %s = excluded.%s WHERE excluded.%s > %s",
			desc.table, strings.Join(columns, ", "), strings.Join(placeholders, ", "), conflictTarget,
			desc.counterColumn, desc.counterColumn,
			colLastModified, colLastModified,
			colLastModifiedClient, colLastModifiedClient,
			colSeqNo, colSeqNo,
			desc.counterColumn, desc.counterColumn,
		)
	default:
		return fmt.Errorf("ingest: unknown merge kind for table %s", desc.table)
	}

	result := tx.Exec(statement, args...)
	if result.Error != nil {
		return newCoreError(ErrStorage, fmt.Sprintf("merge upsert into %s failed", desc.table), result.Error)
	}
	return nil
}

// reserveSequence atomically increments users.next_seq_no by n and returns
// the value it held before the increment, per the Sequence Allocator
// contract. It is expressed as a single UPDATE ... RETURNING statement so
// no interactive transaction or read-then-write window is required.
func reserveSequence(tx *gorm.DB, userID UserID, n int64) (int64, error) {
	if n < 1 {
		return 0, fmt.Errorf("ingest: reserve count must be >= 1, got %d", n)
	}

	row := tx.Raw(
		"UPDATE users SET next_seq_no = next_seq_no + ? WHERE id = ? RETURNING next_seq_no - ?",
		n, userID.String(), n,
	).Row()

	var firstSeqNo int64
	if err := row.Scan(&firstSeqNo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, newCoreError(ErrSequenceAllocationFailed,
				fmt.Sprintf("no user row for %q", userID.String()), nil)
		}
		return 0, newCoreError(ErrStorage, "sequence reservation failed", err)
	}
	return firstSeqNo, nil
}
