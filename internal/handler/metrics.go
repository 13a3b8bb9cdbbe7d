package handler

import (
	"fmt"
	"net/http"

	"github.com/nexarq/taskmanager/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler. A nil snapshotter means
// metrics are disabled.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		writeError(w, http.StatusServiceUnavailable, "Metrics disabled")
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "tracker_tasks_created_total %d\n", snap.TasksCreated)
	writeMetric(w, "tracker_tasks_status_updated_total %d\n", snap.TasksStatusUpdated)
	writeMetric(w, "tracker_tasks_deleted_total %d\n", snap.TasksDeleted)

	writeMetric(w, "tracker_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "tracker_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)

	writeMetric(w, "tracker_ai_fallbacks_total{kind=\"tag\"} %d\n", snap.TagFallbacks)
	writeMetric(w, "tracker_ai_fallbacks_total{kind=\"chat\"} %d\n", snap.ChatFallbacks)

	writeMetric(w, "tracker_ai_generation_duration_seconds_count{kind=\"tag\"} %d\n", snap.TagGenerations.Count)
	writeMetric(w, "tracker_ai_generation_duration_seconds_sum{kind=\"tag\"} %.6f\n", float64(snap.TagGenerations.TotalNs)/1e9)
	writeMetric(w, "tracker_ai_generation_duration_seconds_count{kind=\"chat\"} %d\n", snap.ChatGenerations.Count)
	writeMetric(w, "tracker_ai_generation_duration_seconds_sum{kind=\"chat\"} %.6f\n", float64(snap.ChatGenerations.TotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
