// Package staging contiene el controller de la tabla de staging.
package staging

import (
	"net/http"

	dto "github.com/dropDatabas3/modelgate/internal/http/dto/staging"
	httperrors "github.com/dropDatabas3/modelgate/internal/http/errors"
	"github.com/dropDatabas3/modelgate/internal/http/helpers"
	svc "github.com/dropDatabas3/modelgate/internal/http/services/staging"
	"github.com/dropDatabas3/modelgate/internal/observability/logger"
)

// StagingController maneja las rutas de staging.
type StagingController struct {
	service svc.StagingService
}

// NewStagingController crea un nuevo controller de staging.
func NewStagingController(service svc.StagingService) *StagingController {
	return &StagingController{service: service}
}

// Insert maneja POST /api/staging/insert.
// Un payload sin urls responde 400 sin tocar el datastore.
func (c *StagingController) Insert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("StagingController.Insert"),
	)

	var req dto.InsertRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	if len(req.URLs) == 0 {
		log.Warn("empty staging payload")
		httperrors.WriteError(w, httperrors.ErrNoStaging)
		return
	}

	resp, err := c.service.Insert(ctx, req.URLs)
	if err != nil {
		log.Error("staging insert failed", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Process maneja POST /api/staging/process.
// Acepta body vacío o sin limit; en ese caso el service usa su default.
func (c *StagingController) Process(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("StagingController.Process"),
	)

	var req dto.ProcessRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	resp, err := c.service.Process(ctx, req.Limit)
	if err != nil {
		log.Error("staging process failed", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, resp)
}
