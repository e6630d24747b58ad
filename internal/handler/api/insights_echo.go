package api

import (
	"github.com/labstack/echo/v4"

	"finsight/internal/domain/models"
	"finsight/internal/handler/ws"
	"finsight/internal/usecase"
	xhttp "finsight/pkg/http"
	xlogger "finsight/pkg/logger"
)

// InsightsEchoHandler exposes the ingestion and analysis pipeline over HTTP.
type InsightsEchoHandler struct {
	logger    *xlogger.Logger
	ingest    *usecase.IngestUseCase
	insights  *usecase.InsightsUseCase
	recommend *usecase.RecommendUseCase
	cohort    *usecase.CohortUseCase
	feed      *ws.FeedHub
}

func NewInsightsEchoHandler(
	logger *xlogger.Logger,
	ingest *usecase.IngestUseCase,
	insights *usecase.InsightsUseCase,
	recommend *usecase.RecommendUseCase,
	cohort *usecase.CohortUseCase,
	feed *ws.FeedHub,
) *InsightsEchoHandler {
	return &InsightsEchoHandler{
		logger:    logger,
		ingest:    ingest,
		insights:  insights,
		recommend: recommend,
		cohort:    cohort,
		feed:      feed,
	}
}

func (h *InsightsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.GET("/insights", h.Cohort)

	u := g.Group("/users/:user_id")
	u.POST("/transactions", h.IngestTransactions)
	u.GET("/volatility", h.Volatility)
	u.GET("/spikes", h.Spikes)
	u.GET("/risk", h.Risk)
	u.POST("/recommendations", h.GenerateRecommendations)
	u.GET("/recommendations", h.RecommendationHistory)
	u.GET("/recommendations/summary", h.RecommendationSummary)

	if h.feed != nil {
		h.feed.RegisterRoutes(e)
	}
}

func (h *InsightsEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *InsightsEchoHandler) IngestTransactions(c echo.Context) error {
	req := &models.IngestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	result, err := h.ingest.Ingest(c.Request().Context(), req.UserID, req.Transactions)
	if err != nil {
		h.logger.Error("ingest usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, result)
}

func (h *InsightsEchoHandler) Volatility(c echo.Context) error {
	req := &models.VolatilityRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	profile, err := h.insights.AnalyzeVolatility(c.Request().Context(), req.UserID)
	if err != nil {
		return h.analysisError(c, req.UserID, "volatility", err)
	}
	return xhttp.SuccessResponse(c, profile)
}

func (h *InsightsEchoHandler) Spikes(c echo.Context) error {
	req := &models.SpikesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.insights.DetectSpikes(c.Request().Context(), req.UserID, req.Multiplier)
	if err != nil {
		return h.analysisError(c, req.UserID, "spikes", err)
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *InsightsEchoHandler) Risk(c echo.Context) error {
	req := &models.RiskRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	profile, err := h.insights.ScoreRisk(c.Request().Context(), req.UserID)
	if err != nil {
		return h.analysisError(c, req.UserID, "risk", err)
	}
	return xhttp.SuccessResponse(c, profile)
}

func (h *InsightsEchoHandler) GenerateRecommendations(c echo.Context) error {
	req := &models.RecommendRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	recs, err := h.recommend.Generate(c.Request().Context(), req.UserID, req.Summary)
	if err != nil {
		return h.analysisError(c, req.UserID, "recommendations", err)
	}
	return xhttp.CreatedResponse(c, recs)
}

func (h *InsightsEchoHandler) RecommendationHistory(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	recs := h.recommend.History(req.UserID)
	return xhttp.ListResponse(c, recs, int64(len(recs)))
}

func (h *InsightsEchoHandler) RecommendationSummary(c echo.Context) error {
	req := &models.SummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	return xhttp.SuccessResponse(c, h.recommend.Summary(req.UserID))
}

func (h *InsightsEchoHandler) Cohort(c echo.Context) error {
	res, err := h.cohort.AnalyzeAll(c.Request().Context())
	if err != nil {
		h.logger.Error("cohort usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *InsightsEchoHandler) analysisError(c echo.Context, userID, op string, err error) error {
	h.logger.Error(op+" usecase error",
		xlogger.String("user_id", userID),
		xlogger.Error(err),
	)
	return xhttp.AppErrorResponse(c, err)
}
