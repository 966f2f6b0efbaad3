// Package staging implementa las operaciones sobre la tabla de staging.
package staging

import (
	"context"
	"fmt"

	httpmetrics "github.com/dropDatabas3/modelgate/internal/http"
	dto "github.com/dropDatabas3/modelgate/internal/http/dto/staging"
	"github.com/dropDatabas3/modelgate/internal/observability/logger"
	"github.com/dropDatabas3/modelgate/internal/store/core"
)

const (
	opStagingInsert  = "staging_insert"
	opProcessStaging = "process_staging"
)

// StagingService define las operaciones de staging de URLs.
type StagingService interface {
	// Insert encola registros de URLs en una sola escritura.
	Insert(ctx context.Context, urls []map[string]any) (dto.InsertResponse, error)

	// Process lee hasta limit registros pendientes y reporta cuántos hay.
	// Solo lectura: no marca registros ni los mueve al catálogo.
	Process(ctx context.Context, limit int) (dto.ProcessResponse, error)
}

type stagingService struct {
	store        core.DataStore
	defaultLimit int
}

// NewStagingService crea el service de staging. defaultLimit aplica cuando
// el request no trae limit o trae uno no positivo.
func NewStagingService(store core.DataStore, defaultLimit int) StagingService {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &stagingService{store: store, defaultLimit: defaultLimit}
}

func (s *stagingService) Insert(ctx context.Context, urls []map[string]any) (dto.InsertResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("staging"),
		logger.Op("Insert"),
	)

	records := make([]core.Record, len(urls))
	for i, u := range urls {
		records[i] = core.Record(u)
	}

	if err := s.store.InsertStaging(ctx, records); err != nil {
		log.Error("staging insert failed", logger.Records(len(records)), logger.Err(err))
		httpmetrics.RecordOperation(opStagingInsert, "error")
		return dto.InsertResponse{}, fmt.Errorf("insert staging: %w", err)
	}

	log.Info("staging records inserted", logger.Records(len(records)))
	httpmetrics.RecordOperation(opStagingInsert, "success")
	httpmetrics.RecordRecords(opStagingInsert, len(records))

	return dto.InsertResponse{
		Status:          "success",
		Operation:       opStagingInsert,
		RecordsInserted: len(records),
	}, nil
}

func (s *stagingService) Process(ctx context.Context, limit int) (dto.ProcessResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("staging"),
		logger.Op("Process"),
	)

	if limit <= 0 {
		limit = s.defaultLimit
	}

	// TODO: promover los registros leídos al catálogo y marcarlos
	// 'processed' cuando el pipeline de scraping empiece a consumir
	// este endpoint; hoy solo se cuenta lo pendiente.
	records, err := s.store.PendingStaging(ctx, limit)
	if err != nil {
		log.Error("pending staging read failed", logger.Limit(limit), logger.Err(err))
		httpmetrics.RecordOperation(opProcessStaging, "error")
		return dto.ProcessResponse{}, fmt.Errorf("read pending staging: %w", err)
	}

	log.Info("pending staging records counted",
		logger.Limit(limit),
		logger.Records(len(records)),
	)
	httpmetrics.RecordOperation(opProcessStaging, "success")
	httpmetrics.RecordRecords(opProcessStaging, len(records))

	return dto.ProcessResponse{
		Status:           "success",
		Operation:        opProcessStaging,
		RecordsProcessed: len(records),
	}, nil
}
