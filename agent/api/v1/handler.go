package v1

import (
	"net/http"
	"sync"

	"github.com/erikmagkekse/nfs-manager/exports"
	"github.com/erikmagkekse/nfs-manager/provision"

	"github.com/labstack/echo/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	Provisioner *provision.Provisioner
	ReadOptions exports.ReadOptions

	// mu serializes provisioning; the exports file and the nfs service are
	// host-wide resources.
	mu sync.Mutex
}

// --- Exports ---

func (h *Handler) ListExports(c *echo.Context) error {
	records, err := exports.ReadExports(h.Provisioner.ExportsFile(), h.ReadOptions)
	if err != nil {
		return ExportError(c, err)
	}
	return c.JSON(http.StatusOK, ExportListResponse{Exports: records, Total: len(records)})
}

func (h *Handler) ListActiveExports(c *echo.Context) error {
	active, err := h.Provisioner.Exporter().ListExports(c.Request().Context())
	if err != nil {
		return ExportError(c, err)
	}
	if active == nil {
		active = []ActiveExport{}
	}
	return c.JSON(http.StatusOK, ActiveExportListResponse{Exports: active, Total: len(active)})
}

func (h *Handler) CreateExport(c *echo.Context) error {
	var req ExportCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "BAD_REQUEST"})
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	caller, _ := c.Get("caller").(string)
	log.Info().Str("caller", caller).Str("path", req.Path).Str("client", req.Client).Msg("provisioning export")

	res, err := h.Provisioner.Provision(c.Request().Context(), req)
	if err != nil {
		return ExportError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}
