package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"qrscanner/internal/service"
	"qrscanner/internal/storage"
)

// HistoryHandler handles HTTP requests for scan history.
type HistoryHandler struct {
	historyService service.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyService service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// ScanRecordResponse is one stored scan.
type ScanRecordResponse struct {
	ID          int64     `json:"id"`
	Content     string    `json:"content"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	ProductInfo string    `json:"product_info"`
	Timestamp   time.Time `json:"timestamp"`
}

// HistoryResponse lists stored scans, newest first.
type HistoryResponse struct {
	Scans []ScanRecordResponse `json:"scans"`
}

// RelatedScanResponse is a stored scan with its similarity score.
type RelatedScanResponse struct {
	ScanRecordResponse
	Score float32 `json:"score"`
}

// RelatedResponse lists scans similar to one scan.
type RelatedResponse struct {
	ScanID  int64                 `json:"scan_id"`
	Related []RelatedScanResponse `json:"related"`
}

// TypeCountResponse is the number of stored scans of one type.
type TypeCountResponse struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// StatsResponse summarizes history.
type StatsResponse struct {
	Total  int                 `json:"total"`
	ByType []TypeCountResponse `json:"by_type"`
}

func toRecordResponse(rec storage.ScanRecord) ScanRecordResponse {
	return ScanRecordResponse{
		ID:          rec.ID,
		Content:     rec.Content,
		Type:        rec.Type,
		Description: rec.Description,
		ProductInfo: rec.ProductInfo,
		Timestamp:   rec.Timestamp,
	}
}

// List handles GET /api/history?q=.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recs, err := h.historyService.List(ctx, r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list history")
		return
	}

	resp := HistoryResponse{Scans: make([]ScanRecordResponse, 0, len(recs))}
	for _, rec := range recs {
		resp.Scans = append(resp.Scans, toRecordResponse(rec))
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

// Get handles GET /api/history/{id}.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	rec, err := h.historyService.Get(ctx, id)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to get scan")
		return
	}
	writeJSON(ctx, w, http.StatusOK, toRecordResponse(rec))
}

// Delete handles DELETE /api/history/{id}.
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.historyService.Delete(ctx, id); err != nil {
		handleServiceError(ctx, w, err, "Failed to delete scan")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/history.
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.historyService.Clear(ctx); err != nil {
		handleServiceError(ctx, w, err, "Failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Related handles GET /api/history/{id}/related?k=&type=.
func (h *HistoryHandler) Related(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	k := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "k must be an integer")
			return
		}
		k = v
	}

	related, err := h.historyService.Related(ctx, id, k, r.URL.Query().Get("type"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to find related scans")
		return
	}

	resp := RelatedResponse{ScanID: id, Related: make([]RelatedScanResponse, 0, len(related))}
	for _, rel := range related {
		resp.Related = append(resp.Related, RelatedScanResponse{
			ScanRecordResponse: toRecordResponse(rel.Record),
			Score:              rel.Score,
		})
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

// Stats handles GET /api/history/stats.
func (h *HistoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.historyService.Stats(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to compute stats")
		return
	}

	resp := StatsResponse{Total: stats.Total, ByType: make([]TypeCountResponse, 0, len(stats.ByType))}
	for _, c := range stats.ByType {
		resp.ByType = append(resp.ByType, TypeCountResponse{Type: c.Type, Count: c.Count})
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

// parseID reads the {id} URL parameter, writing a 400 when it is malformed.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scan id")
		return 0, false
	}
	return id, true
}
