package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/osinthq/intake/app/database"
	"github.com/osinthq/intake/app/normalize"
	"github.com/osinthq/intake/app/registry"
	"github.com/osinthq/intake/app/sources"
	"github.com/osinthq/intake/app/tasks"
)

func NewHandler(reg *registry.Registry, sourceRepo database.SourceRepository,
	itemRepo database.ItemRepository, scheduler tasks.TaskSchedulerInterface,
	upstreams []sources.Upstream) *Handler {
	return &Handler{
		registry:   reg,
		sourceRepo: sourceRepo,
		itemRepo:   itemRepo,
		scheduler:  scheduler,
		upstreams:  upstreams,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"plugins":   len(h.registry.IDs()),
	}

	if sourceCount, err := h.sourceRepo.GetSourceCount(); err == nil {
		health["sources"] = sourceCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if itemCount, err := h.itemRepo.GetItemCount(); err == nil {
		stats["items"] = itemCount
	}

	if byPriority, err := h.itemRepo.GetPriorityCounts(); err == nil {
		stats["by_priority"] = byPriority
	}

	if byCategory, err := h.itemRepo.GetCategoryCounts(); err == nil {
		stats["by_category"] = byCategory
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListPlugins(c *gin.Context) {
	upstreamsByPlugin := make(map[string]sources.Upstream, len(h.upstreams))
	for _, upstream := range h.upstreams {
		upstreamsByPlugin[upstream.PluginID] = upstream
	}

	ids := h.registry.IDs()
	plugins := make([]map[string]interface{}, 0, len(ids))

	for _, id := range ids {
		plugin, _ := h.registry.Get(id)

		info := map[string]interface{}{
			"id":          plugin.ID,
			"description": plugin.Description,
		}

		if upstream, ok := upstreamsByPlugin[id]; ok {
			info["name"] = upstream.Name
			info["url"] = upstream.URL
			info["kind"] = upstream.Kind
			info["refresh_interval"] = (time.Duration(upstream.RefreshInterval) * time.Second).String()
		}

		plugins = append(plugins, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"plugins": plugins,
		"total":   len(plugins),
	})
}

// NormalizePayload runs an ad-hoc payload through a plugin's pipeline
// without touching the database. Useful for trying out rule overrides
// against captured upstream responses.
func (h *Handler) NormalizePayload(c *gin.Context) {
	id := c.Param("plugin")

	if _, ok := h.registry.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown plugin", "plugin": id})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 10<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		payload = map[string]any{"contents": string(body)}
	}

	items, warnings, _ := h.registry.Run(id, payload)

	for _, warning := range warnings {
		slog.Warn("Payload validation warning", "plugin", id, "warning", warning)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"plugin":   id,
		"records":  items,
		"count":    len(items),
		"warnings": warnings,
	})
}

func (h *Handler) APIGetItems(c *gin.Context) {
	filter := database.ItemFilter{
		PluginID: c.Query("plugin"),
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
	}

	if priority := c.Query("priority"); priority != "" {
		if !normalize.Priority(priority).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority", "priority": priority})
			return
		}
		filter.Priority = priority
	}

	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit", "limit": limit})
			return
		}
		filter.Limit = n
	}

	items, err := h.itemRepo.GetItems(filter)
	if err != nil {
		slog.Error("Database error", "operation", "get_items", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

func (h *Handler) APIRefreshSource(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source id parameter"})
		return
	}

	if err := h.scheduler.EnqueueRefresh(id); err != nil {
		slog.Error("Error enqueueing refresh task", "plugin", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue refresh task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Refresh task enqueued successfully",
		"plugin":  id,
	})
}
