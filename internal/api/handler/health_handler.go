package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"custify/backend/internal/dto"
	"custify/backend/pkg/redis"
	"custify/backend/pkg/response"
)

// HealthHandler 健康检查
type HealthHandler struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewHealthHandler 创建 HealthHandler，db / rdb 均可为 nil
func NewHealthHandler(db *gorm.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb}
}

// Health 数据库不可用时返回 503；Redis 为可选依赖，不影响整体状态
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{Status: "ok", Database: "up", Redis: "disabled"}

	if h.db == nil {
		resp.Database = "down"
	} else if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		resp.Database = "down"
	}

	if h.rdb != nil {
		resp.Redis = "up"
		if err := h.rdb.Ping(ctx); err != nil {
			resp.Redis = "down"
		}
	}

	if resp.Database != "up" {
		resp.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Code:    response.CodeUnavailable,
			Message: "service unavailable",
			Data:    resp,
		})
		return
	}

	response.OK(c, resp)
}
