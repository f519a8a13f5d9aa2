// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/wemanage-app/backend/internal/core"
)

// Counters exposes the entity totals shown on the admin dashboard.
type Counters interface {
	CountUsers(ctx context.Context) (int, error)
	CountProjects(ctx context.Context) (int, error)
	CountTasks(ctx context.Context) (int, error)
}

type Handler struct {
	counters   Counters
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	dbPing     func(ctx context.Context) error
	redisPing  func(ctx context.Context) error
}

type HandlerConfig struct {
	Counters   Counters
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	DBPing     func(ctx context.Context) error
	RedisPing  func(ctx context.Context) error
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		counters:   cfg.Counters,
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		dbPing:     cfg.DBPing,
		redisPing:  cfg.RedisPing,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/stats", h.GetStats)
		r.Get("/stats/system", h.GetSystemStats)
	})
}

// GetStats returns the entity totals.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.counters.CountUsers(ctx)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	projects, err := h.counters.CountProjects(ctx)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	tasks, err := h.counters.CountTasks(ctx)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, StatsResponse{
		TotalUsers:    users,
		TotalProjects: projects,
		TotalTasks:    tasks,
	})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dbHealthy := true
	if h.dbPing != nil {
		if err := h.dbPing(ctx); err != nil {
			dbHealthy = false
		}
	}

	redisHealthy := true
	if h.redisPing != nil {
		if err := h.redisPing(ctx); err != nil {
			redisHealthy = false
		}
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := SystemStatsResponse{
		Database: DatabaseStatus{
			Healthy: dbHealthy,
			Stats:   h.getDBStats(),
		},
		Redis: RedisStatus{
			Healthy: redisHealthy,
			Stats:   h.getRedisStats(),
		},
		Runtime: RuntimeStats{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			NumCPU:       runtime.NumCPU(),
			MemAlloc:     memStats.Alloc,
			MemSys:       memStats.Sys,
			NumGC:        memStats.NumGC,
		},
	}

	core.OK(w, response)
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

type StatsResponse struct {
	TotalUsers    int `json:"total_users"`
	TotalProjects int `json:"total_projects"`
	TotalTasks    int `json:"total_tasks"`
}

type SystemStatsResponse struct {
	Database DatabaseStatus `json:"database"`
	Redis    RedisStatus    `json:"redis"`
	Runtime  RuntimeStats   `json:"runtime"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
	MaxIdleClosed      int64  `json:"max_idle_closed"`
	MaxIdleTimeClosed  int64  `json:"max_idle_time_closed"`
	MaxLifetimeClosed  int64  `json:"max_lifetime_closed"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
