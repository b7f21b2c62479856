package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fx-widget/internal/domain/model"
	"fx-widget/internal/domain/ports"
	"fx-widget/internal/service"
	"fx-widget/pkg/logger"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type ConvertResponse struct {
	Base        model.Currency           `json:"base"`
	Amount      string                   `json:"amount"`
	Results     []model.ConversionResult `json:"results"`
	Cards       []model.CurrencyCard     `json:"cards"`
	TrendSource string                   `json:"trend_source"`
	AsOf        time.Time                `json:"as_of"`
}

type BaseResponse struct {
	Base model.Currency `json:"base"`
}

type HistoryResponse struct {
	Base        model.Currency       `json:"base"`
	Target      model.Currency       `json:"target"`
	Points      []model.HistoryPoint `json:"points"`
	TrendSource string               `json:"trend_source"`
}

type Handler struct {
	service ports.WidgetService
	log     *logger.Logger
}

func NewHandler(service ports.WidgetService, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

func parseCurrency(raw string) model.Currency {
	return model.Currency(strings.ToUpper(strings.TrimSpace(raw)))
}

func (h *Handler) ConvertHandler(w http.ResponseWriter, r *http.Request) {
	amount := r.URL.Query().Get("amount")
	base := parseCurrency(r.URL.Query().Get("base"))

	quote, err := h.service.Quote(amount, base)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, ConvertResponse{
		Base:        quote.Base,
		Amount:      quote.Amount,
		Results:     quote.Results,
		Cards:       h.service.Cards(quote.Results),
		TrendSource: quote.TrendSource,
		AsOf:        quote.AsOf,
	})
}

func (h *Handler) GetRatesHandler(w http.ResponseWriter, r *http.Request) {
	h.sendSuccessResponse(w, h.service.State())
}

// RefreshHandler triggers a manual refresh. A weekend refusal is not an
// error for the caller; the report carries the notice.
func (h *Handler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Refresh(r.Context())
	if err != nil && !errors.Is(err, service.ErrMarketClosed) {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, report)
}

func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	h.sendSuccessResponse(w, h.service.Status())
}

func (h *Handler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	base := parseCurrency(r.URL.Query().Get("base"))
	target := parseCurrency(r.URL.Query().Get("target"))

	days := 0
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		var err error
		days, err = strconv.Atoi(daysStr)
		if err != nil || days < 1 || days > 365 {
			h.sendErrorResponse(w, http.StatusBadRequest, "invalid days parameter")
			return
		}
	}

	points, err := h.service.History(base, target, days)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if base == "" {
		base = h.service.Base()
	}
	if target == "" {
		target = model.USD
		if base == model.USD {
			target = model.EUR
		}
	}

	h.sendSuccessResponse(w, HistoryResponse{
		Base:        base,
		Target:      target,
		Points:      points,
		TrendSource: model.TrendSourceSynthetic,
	})
}

func (h *Handler) GetBaseHandler(w http.ResponseWriter, r *http.Request) {
	h.sendSuccessResponse(w, BaseResponse{Base: h.service.Base()})
}

func (h *Handler) SetBaseHandler(w http.ResponseWriter, r *http.Request) {
	base := parseCurrency(r.URL.Query().Get("currency"))
	if base == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameter: currency")
		return
	}

	if err := h.service.SetBase(r.Context(), base); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, BaseResponse{Base: base})
}

func (h *Handler) sendSuccessResponse(w http.ResponseWriter, data interface{}) {
	response := Response{
		Success: true,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := Response{
		Success: false,
		Error:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode error response", "error", err)
	}
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	errorMessage := "internal server error"

	switch {
	case errors.Is(err, service.ErrInvalidCurrency):
		statusCode = http.StatusBadRequest
		errorMessage = "invalid currency"
	case errors.Is(err, service.ErrInvalidAmount):
		statusCode = http.StatusBadRequest
		errorMessage = "invalid amount"
	case errors.Is(err, service.ErrRateNotFound):
		statusCode = http.StatusNotFound
		errorMessage = "exchange rate not found"
	case errors.Is(err, service.ErrFetchUnavailable):
		statusCode = http.StatusServiceUnavailable
		errorMessage = "rate provider unavailable, serving last known rates"
	case errors.Is(err, service.ErrMarketClosed):
		statusCode = http.StatusConflict
		errorMessage = "market closed"
	}

	h.log.Error("Service error", "error", err, "status_code", statusCode)
	h.sendErrorResponse(w, statusCode, errorMessage)
}
