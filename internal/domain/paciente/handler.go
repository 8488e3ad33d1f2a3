package paciente

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/histomed/histomed/internal/platform/auth"
	"github.com/histomed/histomed/pkg/pagination"
	"github.com/histomed/histomed/pkg/validate"
)

// Handler provides HTTP handlers for the patient registry.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers patient registry routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleMedico, auth.RoleAdmin))

	g.GET("/pacientes", h.SearchPacientes)
	g.GET("/pacientes/:id", h.GetPaciente)
	g.POST("/pacientes", h.CreatePaciente)
	g.PUT("/pacientes/:id", h.UpdatePaciente)
	g.DELETE("/pacientes/:id", h.DeletePaciente)

	g.GET("/pacientes/:id/telefonos", h.ListTelefonos)
	g.POST("/pacientes/:id/telefonos", h.AddTelefono)
	g.DELETE("/pacientes/:id/telefonos/:telefonoID", h.RemoveTelefono)

	g.GET("/pacientes/:id/direcciones", h.ListDirecciones)
	g.POST("/pacientes/:id/direcciones", h.AddDireccion)
	g.DELETE("/pacientes/:id/direcciones/:direccionID", h.RemoveDireccion)
}

// httpError maps service errors onto HTTP status codes.
func httpError(err error) error {
	var verrs *validate.Errors
	switch {
	case errors.As(err, &verrs):
		return echo.NewHTTPError(http.StatusBadRequest, verrs)
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "paciente not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

type createPacienteRequest struct {
	Paciente
	Telefono *Telefono `json:"telefono,omitempty"`
}

func (h *Handler) CreatePaciente(c echo.Context) error {
	var req createPacienteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePaciente(c.Request().Context(), &req.Paciente, req.Telefono); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, req.Paciente)
}

func (h *Handler) GetPaciente(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPaciente(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) SearchPacientes(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.SearchPacientes(c.Request().Context(), c.QueryParam("q"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePaciente(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Paciente
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.UpdatePaciente(c.Request().Context(), &p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePaciente(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeletePaciente(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListTelefonos(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.ListTelefonos(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) AddTelefono(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var t Telefono
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t.PacienteID = id
	if err := h.svc.AddTelefono(c.Request().Context(), &t); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) RemoveTelefono(c echo.Context) error {
	id, err := uuid.Parse(c.Param("telefonoID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.RemoveTelefono(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListDirecciones(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.ListDirecciones(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) AddDireccion(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var d Direccion
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d.PacienteID = id
	if err := h.svc.AddDireccion(c.Request().Context(), &d); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) RemoveDireccion(c echo.Context) error {
	id, err := uuid.Parse(c.Param("direccionID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.RemoveDireccion(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
