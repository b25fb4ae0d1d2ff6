// Package api serves stored and on-demand backtest results over HTTP.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"SignalReplay/internal/backtest"
	"SignalReplay/internal/model"
	"SignalReplay/internal/recorder"
	"SignalReplay/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Backtester runs backtests on demand.
type Backtester interface {
	RunSymbol(ctx context.Context, symbol string) (*report.Report, error)
	Replay(ctx context.Context, symbol string, prices []model.PricePoint, signals []model.SignalPoint) (*report.Report, error)
}

// ReplayRequest carries caller-provided series for POST /backtest/:symbol.
// An empty body fetches prices from the configured provider instead.
type ReplayRequest struct {
	Prices  []model.PricePoint  `json:"prices"`
	Signals []model.SignalPoint `json:"signals"`
}

type handler struct {
	runs  Backtester
	store recorder.Recorder
	log   zerolog.Logger
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(runs Backtester, store recorder.Recorder, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, runs, store, log)
	return r
}

func RegisterRoutes(r *gin.Engine, runs Backtester, store recorder.Recorder, log zerolog.Logger) {
	h := &handler{runs: runs, store: store, log: log}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/runs", h.listRuns)
	r.GET("/runs/:symbol/latest", h.latestRun)
	r.POST("/backtest/:symbol", h.backtest)
}

func (h *handler) listRuns(c *gin.Context) {
	limit := recorder.DefaultListLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	runs, err := h.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("list runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []report.Summary{}
	}
	c.JSON(http.StatusOK, runs)
}

func (h *handler) latestRun(c *gin.Context) {
	symbol := c.Param("symbol")
	sum, err := h.store.LatestRun(c.Request.Context(), symbol)
	if errors.Is(err, recorder.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no runs for " + symbol})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("latest run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *handler) backtest(c *gin.Context) {
	symbol := c.Param("symbol")

	var req ReplayRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		rep *report.Report
		err error
	)
	if len(req.Prices) > 0 || len(req.Signals) > 0 {
		rep, err = h.runs.Replay(c.Request.Context(), symbol, req.Prices, req.Signals)
	} else {
		rep, err = h.runs.RunSymbol(c.Request.Context(), symbol)
	}
	switch {
	case errors.Is(err, backtest.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case err != nil:
		h.log.Warn().Err(err).Str("symbol", symbol).Msg("on-demand backtest failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, rep)
	}
}
