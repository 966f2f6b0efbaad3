// Package catalog contiene el controller del catálogo de modelos.
package catalog

import (
	"net/http"

	dto "github.com/dropDatabas3/modelgate/internal/http/dto/catalog"
	httperrors "github.com/dropDatabas3/modelgate/internal/http/errors"
	"github.com/dropDatabas3/modelgate/internal/http/helpers"
	svc "github.com/dropDatabas3/modelgate/internal/http/services/catalog"
	"github.com/dropDatabas3/modelgate/internal/observability/logger"
)

// CatalogController maneja las rutas del catálogo.
type CatalogController struct {
	service svc.CatalogService
}

// NewCatalogController crea un nuevo controller del catálogo.
func NewCatalogController(service svc.CatalogService) *CatalogController {
	return &CatalogController{service: service}
}

// Replace maneja POST /api/models/replace.
// Un payload sin modelos responde 400 sin tocar el datastore.
func (c *CatalogController) Replace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("CatalogController.Replace"),
	)

	var req dto.ReplaceRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	if len(req.Models) == 0 {
		log.Warn("empty models payload")
		httperrors.WriteError(w, httperrors.ErrNoModels)
		return
	}

	resp, err := c.service.ReplaceAll(ctx, req.Models)
	if err != nil {
		log.Error("replace all failed", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, resp)
}
