package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dropDatabas3/modelgate/internal/http/services/catalog"
	"github.com/dropDatabas3/modelgate/internal/store/core"
)

// seqStore anota el orden exacto de las operaciones que recibe.
type seqStore struct {
	ops        []string
	batchSizes []int

	failDelete     error
	failFromBatch  int // 1-based; 0 desactiva
	insertAttempts int
}

func (s *seqStore) Name() string { return "seq" }

func (s *seqStore) DeleteAllModels(context.Context) error {
	if s.failDelete != nil {
		return s.failDelete
	}
	s.ops = append(s.ops, "delete_all")
	return nil
}

func (s *seqStore) InsertModels(_ context.Context, records []core.Record) error {
	s.insertAttempts++
	if s.failFromBatch > 0 && s.insertAttempts >= s.failFromBatch {
		return fmt.Errorf("postgrest POST ai_models_discovery: status 500: out of shared memory")
	}
	s.ops = append(s.ops, fmt.Sprintf("insert:%d", len(records)))
	s.batchSizes = append(s.batchSizes, len(records))
	return nil
}

func (s *seqStore) InsertStaging(context.Context, []core.Record) error { return nil }
func (s *seqStore) PendingStaging(context.Context, int) ([]core.Record, error) {
	return nil, nil
}
func (s *seqStore) Ping(context.Context) error { return nil }
func (s *seqStore) Close() error               { return nil }

func makeModels(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{"name": fmt.Sprintf("model-%d", i), "provider": "openai"}
	}
	return out
}

func TestReplaceAllDeletesBeforeInserting(t *testing.T) {
	st := &seqStore{}
	svc := catalog.NewCatalogService(st)

	resp, err := svc.ReplaceAll(context.Background(), makeModels(250))
	if err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if resp.Status != "success" || resp.Operation != "replace_all" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if resp.ModelsInserted != 250 {
		t.Fatalf("models_inserted = %d, want 250", resp.ModelsInserted)
	}
	if resp.BatchesProcessed != 3 {
		t.Fatalf("batches_processed = %d, want 3", resp.BatchesProcessed)
	}

	want := []string{"delete_all", "insert:100", "insert:100", "insert:50"}
	if len(st.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", st.ops, want)
	}
	for i, op := range want {
		if st.ops[i] != op {
			t.Fatalf("ops[%d] = %q, want %q (full: %v)", i, st.ops[i], op, st.ops)
		}
	}
}

func TestReplaceAllExactMultipleOfBatch(t *testing.T) {
	st := &seqStore{}
	svc := catalog.NewCatalogService(st)

	resp, err := svc.ReplaceAll(context.Background(), makeModels(200))
	if err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if resp.BatchesProcessed != 2 {
		t.Fatalf("batches_processed = %d, want 2", resp.BatchesProcessed)
	}
	if got := st.batchSizes; len(got) != 2 || got[0] != 100 || got[1] != 100 {
		t.Fatalf("batch sizes = %v, want [100 100]", got)
	}
}

func TestReplaceAllSmallPayloadIsOneBatch(t *testing.T) {
	st := &seqStore{}
	svc := catalog.NewCatalogService(st)

	resp, err := svc.ReplaceAll(context.Background(), makeModels(7))
	if err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if resp.ModelsInserted != 7 || resp.BatchesProcessed != 1 {
		t.Fatalf("got %d/%d, want 7 inserted in 1 batch", resp.ModelsInserted, resp.BatchesProcessed)
	}
}

func TestReplaceAllDeleteFailureAbortsEverything(t *testing.T) {
	st := &seqStore{failDelete: errors.New("postgrest DELETE ai_models_discovery: status 503")}
	svc := catalog.NewCatalogService(st)

	_, err := svc.ReplaceAll(context.Background(), makeModels(10))
	if err == nil {
		t.Fatal("expected error when delete fails")
	}
	if !errors.Is(err, st.failDelete) {
		t.Fatalf("error chain lost the store failure: %v", err)
	}
	if st.insertAttempts != 0 {
		t.Fatalf("insert ran %d times after a failed delete", st.insertAttempts)
	}
}

func TestReplaceAllBatchFailureLeavesEarlierBatches(t *testing.T) {
	// Si el segundo lote falla, el primero ya quedó escrito: la operación
	// no es transaccional y el error debe subir tal cual.
	st := &seqStore{failFromBatch: 2}
	svc := catalog.NewCatalogService(st)

	_, err := svc.ReplaceAll(context.Background(), makeModels(250))
	if err == nil {
		t.Fatal("expected error from the failing batch")
	}
	if got := err.Error(); !strings.Contains(got, "out of shared memory") {
		t.Fatalf("error lost upstream detail: %q", got)
	}
	if len(st.batchSizes) != 1 || st.batchSizes[0] != 100 {
		t.Fatalf("persisted batches = %v, want exactly the first 100", st.batchSizes)
	}
}
