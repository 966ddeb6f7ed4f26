package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"qrscanner/internal/contextutil"
	"qrscanner/internal/vectorstore"
)

// Pinger reports whether the history database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CollectionInspector reports on the related-scan collection.
type CollectionInspector interface {
	GetCollectionInfo(ctx context.Context, collection string) (*vectorstore.CollectionInfo, error)
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	db                 Pinger
	vectorStore        CollectionInspector
	collectionName     string
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. vectorStore may be nil when
// the related-scan index is disabled.
func NewHealthHandler(db Pinger, vectorStore CollectionInspector, collectionName string) *HealthHandler {
	return &HealthHandler{
		db:                 db,
		vectorStore:        vectorStore,
		collectionName:     collectionName,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	Timestamp string `json:"timestamp"`

	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles GET /api/health.
//
// The database is required: without it the status is "unhealthy" with 503.
// The vector index is optional: a failure there is "degraded" with 200.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string
	status := "healthy"
	httpStatus := http.StatusOK

	if err := h.db.PingContext(checkCtx); err != nil {
		logger.WarnContext(ctx, "database health check failed", "error", err)
		checks["database"] = "error"
		issues = append(issues, "database_unavailable")
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	if h.vectorStore == nil {
		checks["vector_store"] = "disabled"
	} else if points, ok := h.checkVectorStore(checkCtx, logger); ok {
		checks["vector_store"] = "ok"
		checks["vector_points"] = strconv.Itoa(points)
	} else {
		checks["vector_store"] = "error"
		issues = append(issues, "vector_store_unavailable")
		if status == "healthy" {
			status = "degraded"
		}
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	}
	writeJSON(ctx, w, httpStatus, response)
}

// checkVectorStore checks if the vector collection is accessible.
func (h *HealthHandler) checkVectorStore(ctx context.Context, logger *slog.Logger) (int, bool) {
	info, err := h.vectorStore.GetCollectionInfo(ctx, h.collectionName)
	if err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "collection", h.collectionName, "error", err)
		return 0, false
	}
	return info.PointsCount, true
}
