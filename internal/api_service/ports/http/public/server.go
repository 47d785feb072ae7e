package public

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/langowen/currency-archive/deploy/config"
	mwLogger "github.com/langowen/currency-archive/internal/api_service/ports/http/public/middleware/logger"
	"github.com/langowen/currency-archive/internal/entities"
	"github.com/langowen/currency-archive/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"
	"net/http"
	"time"
)

type Server struct {
	service Service
}

func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

func NewRouter(service Service, m *metrics.Metrics, gatherer prometheus.Gatherer) http.Handler {
	s := NewServer(service)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mwLogger.New())
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware(m))

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/currencies", func(r chi.Router) {
		r.Get("/day", s.GetForDay)
		r.Get("/dates", s.GetForRange)
		r.Get("/period", s.GetForPeriod)
		r.Get("/period/both_currencies", s.GetPeriodByCurrency)
	})

	return r
}

func StartServer(ctx context.Context, handler http.Handler, cfg config.HTTPServer) <-chan struct{} {
	serverConfig := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	doneChan := make(chan struct{})

	go func() {
		if err := serverConfig.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := serverConfig.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to stop server", "error", err)
		}

		close(doneChan)
	}()

	return doneChan
}

type rateResponse struct {
	Date         string      `json:"date"`
	Currency     string      `json:"currency"`
	SaleRate     json.Number `json:"saleRate"`
	PurchaseRate json.Number `json:"purchaseRate"`
}

func toResponse(rates []entities.ExchangeRate) []rateResponse {
	resp := make([]rateResponse, 0, len(rates))
	for _, rate := range rates {
		resp = append(resp, rateResponse{
			Date:         entities.FormatDate(rate.Date),
			Currency:     rate.Currency,
			SaleRate:     json.Number(rate.SaleRate.String()),
			PurchaseRate: json.Number(rate.PurchaseRate.String()),
		})
	}
	return resp
}

func (s *Server) GetForDay(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	rates, err := s.service.GetForDay(r.Context(), date)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, toResponse(rates))
}

func (s *Server) GetForRange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	rates, err := s.service.GetForRange(r.Context(), query.Get("startDate"), query.Get("endDate"), query.Get("currency"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, toResponse(rates))
}

func (s *Server) GetForPeriod(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	period := query.Get("period")
	if period == "" {
		RespondWithError(w, http.StatusBadRequest, "period is required")
		return
	}

	rates, err := s.service.GetForPeriod(r.Context(), period, query.Get("currency"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, toResponse(rates))
}

// GetPeriodByCurrency returns the period's records of every supported currency grouped by code.
func (s *Server) GetPeriodByCurrency(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		RespondWithError(w, http.StatusBadRequest, "period is required")
		return
	}

	rates, err := s.service.GetForPeriod(r.Context(), period, "")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	grouped := make(map[string][]rateResponse)
	for currency, list := range entities.GroupByCurrency(rates) {
		grouped[currency] = toResponse(list)
	}

	RespondWithJSON(w, http.StatusOK, grouped)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrParsing):
		return http.StatusBadGateway
	case errors.Is(err, entities.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, entities.ErrUpstream), errors.Is(err, entities.ErrInterruptedWait):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)

	if code == http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
		RespondWithError(w, code, "internal error")
		return
	}

	slog.Warn("request rejected", "path", r.URL.Path, "status", code, "error", err)
	RespondWithError(w, code, err.Error())
}

func RespondWithJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

func metricsMiddleware(m *metrics.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.ObserveHTTP(r.Method, route, status, time.Since(start))
		}

		return http.HandlerFunc(fn)
	}
}
