package historial

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/histomed/histomed/internal/domain/paciente"
	"github.com/histomed/histomed/internal/platform/auth"
	"github.com/histomed/histomed/pkg/pagination"
	"github.com/histomed/histomed/pkg/validate"
)

// DocumentLister supplies the document lists attached to a historial for
// the detail view. Wired in at startup to keep this package independent
// of the document domain.
type DocumentLister interface {
	DocumentosDeHistorial(ctx context.Context, historialID uuid.UUID) (interface{}, error)
}

// Handler provides HTTP handlers for clinical histories.
type Handler struct {
	svc  *Service
	docs DocumentLister
}

func NewHandler(svc *Service, docs DocumentLister) *Handler {
	return &Handler{svc: svc, docs: docs}
}

// RegisterRoutes registers the historial routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleMedico))

	g.GET("/historiales", h.ListHistoriales)
	g.GET("/historiales/search", h.SearchHistoriales)
	g.GET("/historiales/:id", h.GetHistorial)
	g.POST("/historiales", h.CreateHistorial)
	g.PUT("/historiales/:id", h.UpdateGeneral)
	g.PUT("/historiales/:id/nutricion", h.UpsertNutricion)
	g.DELETE("/historiales/:id", h.DeleteHistorial)
	g.GET("/historiales/:id/nutricion/pdf", h.NutricionPDF)
}

func httpError(err error) error {
	var verrs *validate.Errors
	var agg *AggregateWriteError
	switch {
	case errors.As(err, &verrs):
		return echo.NewHTTPError(http.StatusBadRequest, verrs)
	case errors.Is(err, ErrPermissionDenied):
		return echo.NewHTTPError(http.StatusForbidden, "no autorizado para este historial")
	case errors.Is(err, ErrNotFound), errors.Is(err, paciente.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "historial not found")
	case errors.As(err, &agg):
		return echo.NewHTTPError(http.StatusInternalServerError, agg.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

type nuevoPacienteRequest struct {
	NumeroDocumento string     `json:"numero_documento"`
	Nombre          string     `json:"nombre"`
	Apellido        string     `json:"apellido"`
	FechaNacimiento time.Time  `json:"fecha_nacimiento"`
	Genero          string     `json:"genero"`
	Email           *string    `json:"email,omitempty"`
	Telefono        string     `json:"telefono"`
}

type createHistorialRequest struct {
	PacienteID *uuid.UUID            `json:"paciente_id,omitempty"`
	Paciente   *nuevoPacienteRequest `json:"paciente,omitempty"`
	Fecha      *time.Time            `json:"fecha,omitempty"`
	General    HistoriaGeneral       `json:"general"`
	Nutricion  *HistoriaNutricion    `json:"nutricion,omitempty"`
}

func (h *Handler) CreateHistorial(c echo.Context) error {
	var req createHistorialRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in := CreateInput{
		PacienteID: req.PacienteID,
		Fecha:      req.Fecha,
		General:    req.General,
		Nutricion:  req.Nutricion,
	}
	if req.Paciente != nil {
		in.Paciente = &paciente.Paciente{
			NumeroDocumento: req.Paciente.NumeroDocumento,
			Nombre:          req.Paciente.Nombre,
			Apellido:        req.Paciente.Apellido,
			FechaNacimiento: req.Paciente.FechaNacimiento,
			Genero:          req.Paciente.Genero,
			Email:           req.Paciente.Email,
		}
		if req.Paciente.Telefono != "" {
			in.Telefono = &paciente.Telefono{Numero: req.Paciente.Telefono}
		}
	}
	actor := auth.ActorFromContext(c.Request().Context())
	created, err := h.svc.CreateHistorial(c.Request().Context(), actor, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetHistorial(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.GetDetalle(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	resp := map[string]interface{}{
		"historial": d.Historial,
		"general":   d.General,
		"nutricion": d.Nutricion,
	}
	if h.docs != nil {
		docs, err := h.docs.DocumentosDeHistorial(c.Request().Context(), id)
		if err != nil {
			return httpError(err)
		}
		resp["documentos"] = docs
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListHistoriales(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.ActorFromContext(c.Request().Context())
	items, total, err := h.svc.List(c.Request().Context(), actor, c.QueryParam("filter"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) SearchHistoriales(c echo.Context) error {
	pg := pagination.FromPage(c)
	actor := auth.ActorFromContext(c.Request().Context())
	items, total, err := h.svc.Search(c.Request().Context(), actor, c.QueryParam("q"), c.QueryParam("filter"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateGeneral(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var g HistoriaGeneral
	if err := c.Bind(&g); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())
	if err := h.svc.UpdateGeneral(c.Request().Context(), actor, id, &g); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) UpsertNutricion(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var n HistoriaNutricion
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())
	if err := h.svc.UpsertNutricion(c.Request().Context(), actor, id, &n); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) DeleteHistorial(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.ActorFromContext(c.Request().Context())
	if err := h.svc.DeleteHistorial(c.Request().Context(), actor, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) NutricionPDF(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.ActorFromContext(c.Request().Context())
	out, filename, err := h.svc.RenderNutricionPDF(c.Request().Context(), actor, id)
	if err != nil {
		return httpError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "application/pdf", out)
}
