package documento

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/histomed/histomed/internal/domain/historial"
	"github.com/histomed/histomed/internal/platform/auth"
	"github.com/histomed/histomed/pkg/validate"
)

// Handler provides HTTP handlers for exportable documents.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the document routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleMedico))

	g.GET("/historiales/:id/documentos", h.ListByHistorial)
	g.POST("/historiales/:id/documentos/:kind", h.Create)
	g.DELETE("/documentos/:kind/:id", h.Delete)
	g.GET("/documentos/:kind/:id/pdf", h.RenderPDF)
}

func httpError(err error) error {
	var verrs *validate.Errors
	switch {
	case errors.As(err, &verrs):
		return echo.NewHTTPError(http.StatusBadRequest, verrs)
	case errors.Is(err, ErrPermissionDenied):
		return echo.NewHTTPError(http.StatusForbidden, "no autorizado para este historial")
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "documento not found")
	case errors.Is(err, historial.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "historial not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func parseKindParam(c echo.Context) (Kind, error) {
	kind, ok := ParseKind(c.Param("kind"))
	if !ok {
		return "", echo.NewHTTPError(http.StatusNotFound, "unknown document kind")
	}
	return kind, nil
}

func (h *Handler) Create(c echo.Context) error {
	historialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	kind, err := parseKindParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	actor := auth.ActorFromContext(ctx)

	switch kind {
	case KindJustificativo:
		var d Justificativo
		if err := c.Bind(&d); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if err := h.svc.CreateJustificativo(ctx, actor, historialID, &d); err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusCreated, d)
	case KindReferencia:
		var d Referencia
		if err := c.Bind(&d); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if err := h.svc.CreateReferencia(ctx, actor, historialID, &d); err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusCreated, d)
	case KindReposo:
		var d Reposo
		if err := c.Bind(&d); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if err := h.svc.CreateReposo(ctx, actor, historialID, &d); err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusCreated, d)
	default:
		var d Recipe
		if err := c.Bind(&d); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if err := h.svc.CreateRecipe(ctx, actor, historialID, &d); err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusCreated, d)
	}
}

func (h *Handler) Delete(c echo.Context) error {
	kind, err := parseKindParam(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.ActorFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), actor, kind, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListByHistorial(c echo.Context) error {
	historialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	docs, err := h.svc.ListByHistorial(c.Request().Context(), historialID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, docs)
}

func (h *Handler) RenderPDF(c echo.Context) error {
	kind, err := parseKindParam(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.ActorFromContext(c.Request().Context())
	out, filename, err := h.svc.RenderPDF(c.Request().Context(), actor, kind, id)
	if err != nil {
		return httpError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "application/pdf", out)
}
