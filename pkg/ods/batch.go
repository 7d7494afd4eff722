package ods

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrUnsupportedOperationType = errors.New("unsupported operation type")
	ErrInvalidBatchParams       = errors.New("invalid parameters for batch operation")
)

// Batch operation types.
const (
	BatchCreate    = "create"
	BatchGet       = "get"
	BatchUpdate    = "update"
	BatchDelete    = "delete"
	BatchIncrement = "increment"
)

// Defaults used by NewBatchExecutor.
const (
	DefaultBatchConcurrency = 5
	DefaultBatchTimeout     = 30 * time.Second
)

// BatchOperation represents a single entry operation in a batch. Params
// holds the parameter record matching Type, e.g. *IncrementEntryParams for
// BatchIncrement.
type BatchOperation struct {
	ID       string
	Type     string
	Params   interface{}
	Callback func(result *BatchResult)
}

// BatchResult represents the result of a batch operation. Entry is nil for
// deletes and failures.
type BatchResult struct {
	ID       string
	Success  bool
	Entry    *Entry
	Error    error
	Duration time.Duration
}

// BatchExecutor runs independent entry operations with bounded concurrency.
// Operations are not ordered relative to each other and a failure does not
// stop the rest of the batch.
type BatchExecutor struct {
	client      OrderedDataStoresClient
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(client OrderedDataStoresClient, concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	return &BatchExecutor{
		client:      client,
		concurrency: concurrency,
		timeout:     DefaultBatchTimeout,
	}
}

// SetTimeout sets the per-operation timeout.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs every operation and returns their results in input order.
func (b *BatchExecutor) Execute(ctx context.Context, operations []BatchOperation) []BatchResult {
	results := make([]BatchResult, len(operations))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, operation := range operations {
		waitGroup.Add(1)

		go func(index int, operation BatchOperation) {
			defer waitGroup.Done()

			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			opCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()
			result := b.executeOperation(opCtx, operation)
			result.Duration = time.Since(start)
			results[index] = *result

			if operation.Callback != nil {
				operation.Callback(result)
			}
		}(index, operation)
	}

	waitGroup.Wait()

	return results
}

func (b *BatchExecutor) executeOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	result := &BatchResult{ID: operation.ID}

	var (
		entry *Entry
		err   error
		ok    bool
	)

	switch operation.Type {
	case BatchCreate:
		var params *CreateEntryParams
		if params, ok = operation.Params.(*CreateEntryParams); ok {
			entry, err = b.client.CreateEntry(ctx, params)
		}
	case BatchGet:
		var params *EntryParams
		if params, ok = operation.Params.(*EntryParams); ok {
			entry, err = b.client.GetEntry(ctx, params)
		}
	case BatchUpdate:
		var params *UpdateEntryParams
		if params, ok = operation.Params.(*UpdateEntryParams); ok {
			entry, err = b.client.UpdateEntry(ctx, params)
		}
	case BatchDelete:
		var params *EntryParams
		if params, ok = operation.Params.(*EntryParams); ok {
			err = b.client.DeleteEntry(ctx, params)
		}
	case BatchIncrement:
		var params *IncrementEntryParams
		if params, ok = operation.Params.(*IncrementEntryParams); ok {
			entry, err = b.client.IncrementEntry(ctx, params)
		}
	default:
		result.Error = fmt.Errorf("%w: %s", ErrUnsupportedOperationType, operation.Type)

		return result
	}

	if !ok {
		result.Error = fmt.Errorf("%w: %s got %T", ErrInvalidBatchParams, operation.Type, operation.Params)

		return result
	}

	result.Success = err == nil
	result.Entry = entry
	result.Error = err

	return result
}

// BatchBuilder helps build batch operations against one data store.
type BatchBuilder struct {
	ref        DatastoreRef
	operations []BatchOperation
}

// NewBatchBuilder creates a new batch builder for ref.
func NewBatchBuilder(ref DatastoreRef) *BatchBuilder {
	return &BatchBuilder{
		ref:        ref,
		operations: make([]BatchOperation, 0),
	}
}

// AddCreate adds an entry creation.
func (b *BatchBuilder) AddCreate(id string, value int64) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID:     id,
		Type:   BatchCreate,
		Params: &CreateEntryParams{DatastoreRef: b.ref, ID: id, Value: value},
	})
}

// AddGet adds an entry read.
func (b *BatchBuilder) AddGet(id string) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID:     id,
		Type:   BatchGet,
		Params: &EntryParams{DatastoreRef: b.ref, ID: id},
	})
}

// AddUpdate adds an entry update. allowMissing may be nil.
func (b *BatchBuilder) AddUpdate(id string, value int64, allowMissing *bool) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID:   id,
		Type: BatchUpdate,
		Params: &UpdateEntryParams{
			DatastoreRef: b.ref,
			ID:           id,
			Value:        value,
			AllowMissing: allowMissing,
		},
	})
}

// AddDelete adds an entry deletion.
func (b *BatchBuilder) AddDelete(id string) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID:     id,
		Type:   BatchDelete,
		Params: &EntryParams{DatastoreRef: b.ref, ID: id},
	})
}

// AddIncrement adds an atomic increment.
func (b *BatchBuilder) AddIncrement(id string, amount int64) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID:     id,
		Type:   BatchIncrement,
		Params: &IncrementEntryParams{DatastoreRef: b.ref, ID: id, Increment: amount},
	})
}

// AddOperation adds a custom operation.
func (b *BatchBuilder) AddOperation(operation BatchOperation) *BatchBuilder {
	b.operations = append(b.operations, operation)

	return b
}

// Build returns the built operations.
func (b *BatchBuilder) Build() []BatchOperation {
	return b.operations
}

// FailedResults returns the results that did not succeed.
func FailedResults(results []BatchResult) []BatchResult {
	var failed []BatchResult

	for _, result := range results {
		if !result.Success {
			failed = append(failed, result)
		}
	}

	return failed
}
