package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"video-subtitler/internal/api/middleware"
	"video-subtitler/internal/api/v1/dto"
	"video-subtitler/internal/app/config"
	"video-subtitler/internal/app/quota"
)

func pathBase(path string) string {
	return filepath.Base(path)
}

// AdminHandler exposes ledger maintenance and limits administration.
type AdminHandler struct {
	ledger *quota.Ledger
	limits *config.LimitsStore
}

func NewAdminHandler(ledger *quota.Ledger, limits *config.LimitsStore) *AdminHandler {
	return &AdminHandler{ledger: ledger, limits: limits}
}

// ResetIdentity handles POST /api/v1/admin/reset/:identity
func (h *AdminHandler) ResetIdentity(c *gin.Context) {
	removed, err := h.ledger.Reset(c.Param("identity"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ResetResponse{RemovedRecords: removed})
}

// ResetAll handles POST /api/v1/admin/reset
func (h *AdminHandler) ResetAll(c *gin.Context) {
	removed, err := h.ledger.ResetAll()
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ResetResponse{RemovedRecords: removed})
}

// Stats handles GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.ledger.Stats()
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// SetLimitsOverride handles PUT /api/v1/admin/limits/:identity
func (h *AdminHandler) SetLimitsOverride(c *gin.Context) {
	var req dto.LimitsOverrideRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	identity := c.Param("identity")
	if err := h.limits.SetOverride(identity, req.ToModel()); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"identity": identity, "limits": h.limits.EffectiveLimits(identity)})
}

// RemoveLimitsOverride handles DELETE /api/v1/admin/limits/:identity
func (h *AdminHandler) RemoveLimitsOverride(c *gin.Context) {
	identity := c.Param("identity")
	if err := h.limits.RemoveOverride(identity); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"identity": identity, "limits": h.limits.EffectiveLimits(identity)})
}

// ReloadLimits handles POST /api/v1/admin/limits/reload
func (h *AdminHandler) ReloadLimits(c *gin.Context) {
	if err := h.limits.Reload(); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"defaults": h.limits.Defaults()})
}
