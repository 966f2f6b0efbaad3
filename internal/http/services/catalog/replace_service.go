// Package catalog implementa el replace-all del catálogo de modelos.
package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	httpmetrics "github.com/dropDatabas3/modelgate/internal/http"
	dto "github.com/dropDatabas3/modelgate/internal/http/dto/catalog"
	"github.com/dropDatabas3/modelgate/internal/observability/logger"
	"github.com/dropDatabas3/modelgate/internal/store/core"
)

const (
	// batchSize es el tamaño de lote del replace. Los scripts de sync
	// asumen este número al validar batches_processed; no cambiar sin
	// coordinar con ellos.
	batchSize = 100

	opReplaceAll = "replace_all"
)

// CatalogService define las operaciones sobre el catálogo de modelos.
type CatalogService interface {
	// ReplaceAll borra el catálogo completo y lo reconstruye por lotes.
	// NO es transaccional: si un lote falla, los anteriores quedan
	// escritos y el error sube con el detalle del datastore.
	ReplaceAll(ctx context.Context, models []map[string]any) (dto.ReplaceResponse, error)
}

type catalogService struct {
	store core.DataStore
}

// NewCatalogService crea el service del catálogo.
func NewCatalogService(store core.DataStore) CatalogService {
	return &catalogService{store: store}
}

func (s *catalogService) ReplaceAll(ctx context.Context, models []map[string]any) (dto.ReplaceResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("catalog"),
		logger.Op("ReplaceAll"),
		logger.SyncID(uuid.NewString()),
	)

	log.Info("starting replace operation", logger.Records(len(models)))

	if err := s.store.DeleteAllModels(ctx); err != nil {
		log.Error("failed to clear catalog", logger.Err(err))
		httpmetrics.RecordOperation(opReplaceAll, "error")
		return dto.ReplaceResponse{}, fmt.Errorf("clear models: %w", err)
	}
	log.Info("cleared existing data")

	records := toRecords(models)

	inserted := 0
	batches := 0
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		if err := s.store.InsertModels(ctx, batch); err != nil {
			log.Error("batch insert failed",
				logger.Batch(batches+1),
				logger.Records(len(batch)),
				logger.Err(err),
			)
			httpmetrics.RecordOperation(opReplaceAll, "error")
			return dto.ReplaceResponse{}, fmt.Errorf("insert batch %d: %w", batches+1, err)
		}

		inserted += len(batch)
		batches++
		log.Info("inserted batch", logger.Batch(batches), logger.Records(len(batch)))
	}

	log.Info("replace completed", logger.Records(inserted), logger.Count(batches))
	httpmetrics.RecordOperation(opReplaceAll, "success")
	httpmetrics.RecordRecords(opReplaceAll, inserted)
	httpmetrics.RecordBatches(batches)

	return dto.ReplaceResponse{
		Status:           "success",
		Operation:        opReplaceAll,
		ModelsInserted:   inserted,
		BatchesProcessed: batches,
	}, nil
}

func toRecords(models []map[string]any) []core.Record {
	records := make([]core.Record, len(models))
	for i, m := range models {
		records[i] = core.Record(m)
	}
	return records
}
