// Package api provides the JSON HTTP surface of the dashboard.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sandevgo/tuskdash/internal/core"
	"github.com/sandevgo/tuskdash/internal/providers/rag"
	"github.com/sandevgo/tuskdash/internal/service/analysis"
	"github.com/sandevgo/tuskdash/internal/service/market"
	"github.com/sandevgo/tuskdash/internal/service/memory"
	"github.com/sandevgo/tuskdash/pkg/log"
)

type Chatter interface {
	Chat(ctx context.Context, userText, model string) (core.Reply, error)
	History(ctx context.Context) ([]core.Turn, error)
	Models(ctx context.Context) []string
	ModelName() string
	ModelAvailable() bool
}

type DocumentIngester interface {
	Ingest(ctx context.Context, filename, text string) (memory.IngestResult, error)
	Document(ctx context.Context, id string) (memory.Document, error)
}

type LogAnalyzer interface {
	Analyze(ctx context.Context, logText string) (core.Reply, error)
}

type MarketService interface {
	GetSetting(ctx context.Context) (core.AlertSetting, error)
	UpdateSetting(ctx context.Context, threshold float64, active bool) (core.AlertSetting, error)
	History(ctx context.Context, limit int) ([]market.HistoryPoint, error)
}

// Handler handles HTTP requests.
type Handler struct {
	chat          Chatter
	ingester      DocumentIngester
	analyzer      LogAnalyzer
	market        MarketService
	quotes        core.QuoteProvider
	defaultSymbol string
	version       string
}

func NewHandler(
	chat Chatter,
	ingester DocumentIngester,
	analyzer LogAnalyzer,
	market MarketService,
	quotes core.QuoteProvider,
	defaultSymbol string,
) *Handler {
	return &Handler{
		chat:          chat,
		ingester:      ingester,
		analyzer:      analyzer,
		market:        market,
		quotes:        quotes,
		defaultSymbol: defaultSymbol,
		version:       core.DashVersion,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	e.GET("/api/ai-status", h.AIStatus)
	e.GET("/api/ai/models", h.ListModels)
	e.GET("/api/chat/history", h.ChatHistory)
	e.POST("/api/chat", h.Chat)
	e.POST("/api/upload", h.Upload)
	e.GET("/api/documents/:id", h.GetDocument)
	e.POST("/api/analyze/log", h.AnalyzeLog)

	e.GET("/api/market/history", h.MarketHistory)
	e.GET("/api/market/setting", h.GetMarketSetting)
	e.POST("/api/market/setting", h.UpdateMarketSetting)
	e.POST("/api/market/chart-data", h.ChartData)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func badRequest(c echo.Context, detail string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Detail: detail})
}

func internalError(c echo.Context, err error) error {
	log.FromCtx(c.Request().Context()).Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, errorResponse{Detail: err.Error()})
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": h.version,
	})
}

type statusResponse struct {
	Status  string `json:"status"`
	Model   string `json:"model"`
	Message string `json:"message"`
}

func (h *Handler) AIStatus(c echo.Context) error {
	if !h.chat.ModelAvailable() {
		return c.JSON(http.StatusOK, statusResponse{
			Status:  "Offline",
			Model:   h.chat.ModelName(),
			Message: "Gemini API key is not configured",
		})
	}
	return c.JSON(http.StatusOK, statusResponse{
		Status:  "Online",
		Model:   h.chat.ModelName(),
		Message: "Gemini is connected",
	})
}

func (h *Handler) ListModels(c echo.Context) error {
	return c.JSON(http.StatusOK, h.chat.Models(c.Request().Context()))
}

type turnResponse struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

func (h *Handler) ChatHistory(c echo.Context) error {
	turns, err := h.chat.History(c.Request().Context())
	if err != nil {
		return internalError(c, err)
	}

	out := make([]turnResponse, 0, len(turns))
	for _, t := range turns {
		out = append(out, turnResponse{
			Role:      string(t.Role),
			Text:      t.Text,
			Timestamp: t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	return c.JSON(http.StatusOK, out)
}

type chatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model"`
}

type chatResponse struct {
	Reply     string `json:"reply"`
	UsedModel string `json:"used_model"`
}

func (h *Handler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	reply, err := h.chat.Chat(c.Request().Context(), req.Message, req.Model)
	if errors.Is(err, memory.ErrEmptyMessage) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(http.StatusOK, chatResponse{Reply: reply.Text, UsedModel: reply.Model})
}

type uploadResponse struct {
	Message    string `json:"message"`
	Preview    string `json:"preview"`
	DocumentID string `json:"document_id"`
	Fragments  int    `json:"fragments"`
}

func (h *Handler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "multipart field 'file' is required")
	}

	f, err := fh.Open()
	if err != nil {
		return internalError(c, fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return internalError(c, fmt.Errorf("read upload: %w", err))
	}
	if len(data) > maxUploadBytes {
		return badRequest(c, "file is too large")
	}

	text, err := rag.DecodeDocument(fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		if errors.Is(err, rag.ErrUndecodable) {
			return badRequest(c, "could not decode file: only UTF-8 text documents are supported")
		}
		return badRequest(c, err.Error())
	}

	res, err := h.ingester.Ingest(c.Request().Context(), fh.Filename, text)
	if errors.Is(err, memory.ErrEmptyDocument) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(http.StatusOK, uploadResponse{
		Message:    fmt.Sprintf("File '%s' learned as %d fragments.", fh.Filename, res.Fragments),
		Preview:    res.Preview,
		DocumentID: res.DocumentID,
		Fragments:  res.Fragments,
	})
}

type documentResponse struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Fragments  int    `json:"fragments"`
	Tokens     int    `json:"tokens"`
	Text       string `json:"text"`
}

// GetDocument returns an uploaded document rebuilt from its fragments.
func (h *Handler) GetDocument(c echo.Context) error {
	doc, err := h.ingester.Document(c.Request().Context(), c.Param("id"))
	if errors.Is(err, memory.ErrDocumentNotFound) {
		return c.JSON(http.StatusNotFound, errorResponse{Detail: err.Error()})
	}
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, documentResponse{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Fragments:  doc.Fragments,
		Tokens:     doc.Tokens,
		Text:       doc.Text,
	})
}

type analyzeRequest struct {
	LogText string `json:"log_text"`
}

type replyResponse struct {
	Reply string `json:"reply"`
}

func (h *Handler) AnalyzeLog(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	reply, err := h.analyzer.Analyze(c.Request().Context(), req.LogText)
	if errors.Is(err, analysis.ErrEmptyLog) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, replyResponse{Reply: reply.Text})
}

func (h *Handler) MarketHistory(c echo.Context) error {
	points, err := h.market.History(c.Request().Context(), market.DefaultHistoryLimit)
	if err != nil {
		return internalError(c, err)
	}
	if points == nil {
		points = []market.HistoryPoint{}
	}
	return c.JSON(http.StatusOK, points)
}

type settingResponse struct {
	Threshold float64 `json:"threshold"`
	IsActive  bool    `json:"is_active"`
}

type settingRequest struct {
	Threshold *float64 `json:"threshold"`
	IsActive  *bool    `json:"is_active"`
}

func (h *Handler) GetMarketSetting(c echo.Context) error {
	s, err := h.market.GetSetting(c.Request().Context())
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, settingResponse{Threshold: s.ThresholdPercent, IsActive: s.Active})
}

// UpdateMarketSetting applies the provided fields; omitted fields keep their value.
func (h *Handler) UpdateMarketSetting(c echo.Context) error {
	var req settingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	ctx := c.Request().Context()
	current, err := h.market.GetSetting(ctx)
	if err != nil {
		return internalError(c, err)
	}

	threshold, active := current.ThresholdPercent, current.Active
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if req.IsActive != nil {
		active = *req.IsActive
	}

	s, err := h.market.UpdateSetting(ctx, threshold, active)
	if errors.Is(err, market.ErrInvalidThreshold) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, settingResponse{Threshold: s.ThresholdPercent, IsActive: s.Active})
}

type chartRequest struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Range    string `json:"range"`
}

// ChartData never fails: any problem yields an empty list.
func (h *Handler) ChartData(c echo.Context) error {
	var req chartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, []market.ChartRow{})
	}
	if req.Symbol == "" {
		req.Symbol = h.defaultSymbol
	}
	if req.Interval == "" {
		req.Interval = "5m"
	}
	if req.Range == "" {
		req.Range = "1d"
	}

	rows := market.ChartData(c.Request().Context(), h.quotes, req.Symbol, req.Interval, req.Range)
	return c.JSON(http.StatusOK, rows)
}
