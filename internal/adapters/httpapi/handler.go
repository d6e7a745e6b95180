package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bnema/daily-fortune/internal/application"
	"github.com/bnema/daily-fortune/internal/domain"
	"github.com/bnema/daily-fortune/internal/version"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

const (
	PathFortune       = "/api/fortune"
	PathFortuneSimple = "/api/fortune/simple"
	PathFortuneToday  = "/api/fortune/today"
	PathConstellation = "/api/constellation"
	PathHitokoto      = "/api/hitokoto"
	PathInfo          = "/api/info"

	RequestIDHeader = "X-Request-ID"
	SourceHeader    = "X-Fortune-Source"

	ServiceName = "daily-fortune"

	msgMissingKey    = "未配置天行数据API密钥，请联系管理员配置TIANAPI_KEY环境变量"
	msgUpstreamData  = "API 返回数据异常"
	msgRequestFailed = "请求异常，请稍后重试"
	msgNotFound      = "接口不存在"
	msgNotAllowed    = "不支持的请求方法"
)

// Service is the slice of application.Service the handler depends on.
type Service interface {
	Almanac(ctx context.Context) (application.AlmanacResult, error)
	Constellation(ctx context.Context, token string) (application.ConstellationResult, error)
	Quote(ctx context.Context) (application.QuoteResult, error)
	Policy() application.FallbackPolicy
}

type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Format  string `json:"format,omitempty"`
	Date    string `json:"date,omitempty"`
	Error   string `json:"error,omitempty"`
}

const (
	formatStructured = "structured"
	formatText       = "text"
)

type FortuneText struct {
	FortuneText string `json:"fortune_text"`
}

type Info struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Fallback  bool     `json:"fallback"`
	Endpoints []string `json:"endpoints"`
}

type Handler struct {
	service Service
	logger  zerolog.Logger
	mux     *http.ServeMux
}

var _ http.Handler = (*Handler)(nil)

func NewHandler(service Service, logger zerolog.Logger) *Handler {
	h := &Handler{
		service: service,
		logger:  logger.With().Str("component", "httpapi").Logger(),
		mux:     http.NewServeMux(),
	}

	h.mux.HandleFunc(PathFortune, h.handleFortune)
	h.mux.HandleFunc(PathFortuneSimple, h.handleFortuneSimple)
	h.mux.HandleFunc(PathFortuneToday, h.handleFortuneToday)
	h.mux.HandleFunc(PathConstellation, h.handleConstellation)
	h.mux.HandleFunc(PathHitokoto, h.handleHitokoto)
	h.mux.HandleFunc(PathInfo, h.handleInfo)
	h.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, Envelope{Error: msgNotFound})
	})

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	requestID := ulid.Make().String()

	header := w.Header()
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Content-Type")
	header.Set("Content-Type", "application/json; charset=utf-8")
	header.Set(RequestIDHeader, requestID)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	switch r.Method {
	case http.MethodOptions:
		rec.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		h.mux.ServeHTTP(rec, r)
	default:
		writeJSON(rec, http.StatusMethodNotAllowed, Envelope{Error: msgNotAllowed})
	}

	h.logger.Info().
		Str("request_id", requestID).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("duration", time.Since(started)).
		Msg("request")
}

func (h *Handler) handleFortune(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Almanac(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	w.Header().Set(SourceHeader, string(result.Source))
	if r.URL.Query().Get("format") == formatText {
		writeJSON(w, http.StatusOK, Envelope{
			Success: true,
			Data:    FortuneText{FortuneText: application.FortuneText(result.Record)},
			Format:  formatText,
		})
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: result.Record, Format: formatStructured})
}

func (h *Handler) handleFortuneToday(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Almanac(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	w.Header().Set(SourceHeader, string(result.Source))
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: result.Record, Date: result.Record.DateInfo.GregorianDate})
}

func (h *Handler) handleFortuneSimple(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Almanac(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	w.Header().Set(SourceHeader, string(result.Source))
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: application.Simplify(result.Record)})
}

func (h *Handler) handleConstellation(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Constellation(r.Context(), r.URL.Query().Get("sign"))
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	w.Header().Set(SourceHeader, string(result.Source))
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: result.Record})
}

func (h *Handler) handleHitokoto(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Quote(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	w.Header().Set(SourceHeader, string(result.Source))
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: result.Quote})
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: Info{
		Name:     ServiceName,
		Version:  version.Version,
		Fallback: h.service.Policy() == application.FallbackPlaceholder,
		Endpoints: []string{
			PathFortune,
			PathFortune + "?format=text",
			PathFortuneSimple,
			PathFortuneToday,
			PathConstellation + "?sign=<sign>",
			PathHitokoto,
			PathInfo,
		},
	}})
}

func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	status, message := describeFailure(err)
	h.logger.Error().Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, Envelope{Error: message})
}

// describeFailure maps a service error to a status code and a message safe to
// show to end users. Internal details stay in the log.
func describeFailure(err error) (int, string) {
	var (
		httpErr *domain.UpstreamHTTPError
		dataErr *domain.UpstreamDataError
	)

	switch {
	case errors.Is(err, domain.ErrMissingAPIKey):
		return http.StatusBadRequest, msgMissingKey
	case errors.As(err, &httpErr):
		return http.StatusInternalServerError, fmt.Sprintf("API 请求失败: %d", httpErr.StatusCode)
	case errors.As(err, &dataErr):
		if dataErr.Code != 0 && dataErr.Code != 200 && dataErr.Message != "" {
			return http.StatusInternalServerError, dataErr.Message
		}
		return http.StatusInternalServerError, msgUpstreamData
	default:
		return http.StatusInternalServerError, msgRequestFailed
	}
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
