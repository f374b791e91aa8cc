package handler

import (
	"net/http"

	"core/internal/repository"
	"core/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the cache-admin and stats surface.
type AdminHandler struct {
	repo *repository.PostgresRepository
	chat *service.ChatService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(repo *repository.PostgresRepository, chat *service.ChatService) *AdminHandler {
	return &AdminHandler{repo: repo, chat: chat}
}

// ClearCache handles POST /api/admin/clear-cache: drops the response cache
// and the caller's conversation window.
func (h *AdminHandler) ClearCache(c *gin.Context) {
	h.chat.ClearCaller(c.ClientIP())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Caché y conversación limpiados exitosamente",
	})
}

// TestConnection handles POST /api/admin/test-connection: probes the store.
func (h *AdminHandler) TestConnection(c *gin.Context) {
	if err := h.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "No se pudo conectar a la base de datos",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Conexión exitosa a PostgreSQL",
	})
}

// Stats handles GET /api/stats: catalog counts plus pipeline counters.
func (h *AdminHandler) Stats(c *gin.Context) {
	totalPlaces, err := h.repo.CountPlaces(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"error":          "No hay conexión a la base de datos",
			"total_lugares":  0,
			"total_imagenes": 0,
			"estado":         "sin_conexion",
		})
		return
	}

	totalImages, err := h.repo.CountImages(c.Request.Context())
	if err != nil {
		totalImages = 0
	}

	used, limit := h.chat.DailyRequests()

	c.JSON(http.StatusOK, gin.H{
		"total_lugares":      totalPlaces,
		"total_imagenes":     totalImages,
		"estado":             "con_conexion",
		"cache_size":         h.chat.CacheSize(),
		"daily_requests":     used,
		"max_daily_requests": limit,
	})
}
