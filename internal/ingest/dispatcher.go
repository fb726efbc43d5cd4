package ingest

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dispatcher applies enriched operations against a database, reserving the
// operation's sequence number and routing it to the registered merge
// primitive for its kind. The scheduler that produced the payload's
// scheduler-specific fields, and the batch's HTTP transport, are both
// callers of this type rather than concerns of it.
type Dispatcher struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewDispatcher builds a Dispatcher over the given database handle.
func NewDispatcher(db *gorm.DB, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{db: db, logger: logger}
}

// OperationResult reports the outcome of applying a single operation within
// a batch. Batches never abort partway through: every operation gets its
// own result, successful or not.
type OperationResult struct {
	Index int
	SeqNo int64
	Err   error
}

// ApplyBatch reserves len(ops) sequence numbers for the batch's user up
// front (spec.md requires pre-reservation before merge, not interleaved
// with it) and applies each operation in order inside one transaction.
func (d *Dispatcher) ApplyBatch(userID UserID, ops []Operation) ([]OperationResult, error) {
	results := make([]OperationResult, len(ops))
	if len(ops) == 0 {
		return results, nil
	}

	err := d.db.Transaction(func(tx *gorm.DB) error {
		firstSeqNo, err := reserveSequence(tx, userID, int64(len(ops)))
		if err != nil {
			return err
		}

		for i, op := range ops {
			seqNo := firstSeqNo + int64(i)
			applyErr := d.apply(tx, op, seqNo)
			results[i] = OperationResult{Index: i, SeqNo: seqNo, Err: applyErr}
			if applyErr != nil {
				d.logger.Warn("operation apply failed",
					zap.Int("index", i),
					zap.String("type", string(op.Type)),
					zap.Error(applyErr),
				)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// apply routes a single enriched operation to its registered handler.
func (d *Dispatcher) apply(tx *gorm.DB, op Operation, seqNo int64) error {
	spec, ok := handlerRegistry[op.Type]
	if !ok {
		return newCoreError(ErrUnknownOperationType,
			fmt.Sprintf("unrecognized operation type %q", op.Type), nil)
	}

	keyValues, payloadValues, err := spec.extract(op.Payload)
	if err != nil {
		return err
	}

	ownerValue := ""
	if spec.descriptor.ownerColumn != "" {
		ownerValue = op.UserID.String()
	}

	return applyMerge(tx, spec.descriptor, keyValues, payloadValues, ownerValue, op.Timestamp, op.ClientID, seqNo)
}
