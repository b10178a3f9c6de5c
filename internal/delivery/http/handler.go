package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lymcoach/backend/internal/domain"
	"github.com/lymcoach/backend/internal/usecase"
)

// ProductSearcher is the product search surface the handlers need
type ProductSearcher interface {
	Search(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error)
	LookupBarcode(ctx context.Context, code string) (*domain.Product, error)
}

// CoachAsker answers coach questions
type CoachAsker interface {
	Ask(ctx context.Context, req usecase.AskRequest) (*domain.CoachAnswer, error)
}

// PlanGenerator builds meal plans
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, constraints domain.PlanConstraints) (*domain.MealPlan, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search  ProductSearcher
	coach   CoachAsker
	planner PlanGenerator
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(search ProductSearcher, coach CoachAsker, planner PlanGenerator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		search:  search,
		coach:   coach,
		planner: planner,
		logger:  logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "lym-backend",
		"version": "1.0.0",
	})
}

// SearchProducts handles GET /api/v1/search?q=...&source=...&limit=...
func (h *Handler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	source := domain.SearchSource(c.DefaultQuery("source", string(domain.SourceAll)))

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	products, err := h.search.Search(c.Request.Context(), query, source, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

type barcodeRequest struct {
	Barcode string `json:"barcode" binding:"required"`
}

// LookupBarcode handles POST /api/v1/search with a {barcode} body
func (h *Handler) LookupBarcode(c *gin.Context) {
	var req barcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "barcode is required"})
		return
	}

	product, err := h.search.LookupBarcode(c.Request.Context(), req.Barcode)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// AskCoach handles POST /api/v1/coach/ask
func (h *Handler) AskCoach(c *gin.Context) {
	var req usecase.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	answer, err := h.coach.Ask(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

// mealPlanRequest mirrors domain.PlanConstraints with an optional cheat day,
// so an absent field means "no cheat day" rather than day zero.
type mealPlanRequest struct {
	DailyTarget  domain.Macros           `json:"dailyTarget"`
	TolerancePct float64                 `json:"tolerancePct"`
	NumDays      int                     `json:"numDays"`
	Distribution domain.MealDistribution `json:"distribution"`
	CheatMealDay *int                    `json:"cheatMealDay"`
}

// GenerateMealPlan handles POST /api/v1/meal-plan
func (h *Handler) GenerateMealPlan(c *gin.Context) {
	var req mealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	constraints := domain.PlanConstraints{
		DailyTarget:  req.DailyTarget,
		TolerancePct: req.TolerancePct,
		NumDays:      req.NumDays,
		Distribution: req.Distribution,
		CheatMealDay: -1,
	}
	if req.CheatMealDay != nil {
		constraints.CheatMealDay = *req.CheatMealDay
	}

	plan, err := h.planner.GeneratePlan(c.Request.Context(), constraints)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// respondError maps domain sentinel errors to HTTP statuses. User-facing
// messages stay in French, matching what the app renders verbatim.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": usecase.MsgProductNotFound})
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidSource):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInfeasiblePlan):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSourceFailure):
		h.logger.Error("upstream failure", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": usecase.MsgSearchFailed})
	case errors.Is(err, domain.ErrEmbeddingFailure), errors.Is(err, domain.ErrCompletionFailure):
		h.logger.Error("upstream failure", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Le coach est momentanément indisponible"})
	default:
		h.logger.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
