// health.go — служебные endpoints.
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (backend журнала и, при включённых
// наборах фильтров, PostgreSQL)
// /metrics — Prometheus метрики
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tanyaprikhodko/journal-of-defects/internal/config"
	"github.com/tanyaprikhodko/journal-of-defects/internal/service"
)

// ReadinessChecker — интерфейс проверки готовности зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "fail") и сообщение.
	CheckReady() (status string, message string)
}

// HealthHandler — обработчик служебных endpoints.
type HealthHandler struct {
	dbChecker   ReadinessChecker           // nil, если локальная БД не используется
	dephealth   *service.DephealthService  // nil, если мониторинг выключен
	promHandler http.Handler
}

// NewHealthHandler создаёт обработчик служебных endpoints.
// Оба аргумента могут быть nil: соответствующие проверки пропускаются.
func NewHealthHandler(dbChecker ReadinessChecker, dephealth *service.DephealthService) *HealthHandler {
	return &HealthHandler{
		dbChecker:   dbChecker,
		dephealth:   dephealth,
		promHandler: promhttp.Handler(),
	}
}

// healthCheckResult — результат проверки одной зависимости.
type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// healthResponse — ответ liveness и readiness probes.
type healthResponse struct {
	Status    string                       `json:"status"`
	Timestamp string                       `json:"timestamp"`
	Version   string                       `json:"version"`
	Service   string                       `json:"service"`
	Checks    map[string]healthCheckResult `json:"checks,omitempty"`
}

// HealthLive — liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   "journal-admin",
	})
}

// HealthReady — readiness probe.
// Возвращает 200, если все отслеживаемые зависимости доступны, иначе 503.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   "journal-admin",
		Checks:    map[string]healthCheckResult{},
	}

	if h.dbChecker != nil {
		status, msg := h.dbChecker.CheckReady()
		resp.Checks["postgresql"] = healthCheckResult{Status: status, Message: msg}
		if status != "ok" {
			resp.Status = "fail"
		}
	}

	if h.dephealth != nil {
		for name, healthy := range h.dephealth.Health() {
			status := "ok"
			if !healthy {
				status = "fail"
				resp.Status = "fail"
			}
			resp.Checks[name] = healthCheckResult{Status: status}
		}
	}

	code := http.StatusOK
	if resp.Status == "fail" {
		code = http.StatusServiceUnavailable
	}
	writeHealth(w, code, resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

func writeHealth(w http.ResponseWriter, code int, resp healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
