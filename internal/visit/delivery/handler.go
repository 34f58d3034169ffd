package delivery

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"genius-keeper-backend/internal/visit/domain"
	"genius-keeper-backend/internal/visit/usecase"

	"github.com/gin-gonic/gin"
)

type VisitHandler struct {
	visitUsecase usecase.VisitUsecase
	now          func() time.Time
}

func NewVisitHandler(visitUsecase usecase.VisitUsecase) *VisitHandler {
	return &VisitHandler{visitUsecase: visitUsecase, now: time.Now}
}

type logVisitRequest struct {
	Notes string `json:"notes"`
}

// GET /api/pos?q=lupe
func (h *VisitHandler) List(c *gin.Context) {
	list, err := h.visitUsecase.Search(c.Request.Context(), c.Query("q"), h.now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"points_of_sale": list})
}

// GET /api/pos/:id
func (h *VisitHandler) Get(c *gin.Context) {
	st, err := h.visitUsecase.GetPointOfSale(c.Request.Context(), c.Param("id"), h.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// POST /api/pos
func (h *VisitHandler) Create(c *gin.Context) {
	var req usecase.PointOfSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pos, err := h.visitUsecase.CreatePointOfSale(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, pos)
}

// PATCH /api/pos/:id
func (h *VisitHandler) Update(c *gin.Context) {
	var req usecase.PointOfSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pos, err := h.visitUsecase.UpdatePointOfSale(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pos)
}

// POST /api/pos/:id/visits
func (h *VisitHandler) LogVisit(c *gin.Context) {
	var req logVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := h.visitUsecase.LogVisit(c.Request.Context(), c.GetString("userID"), c.Param("id"), req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// GET /api/pos/:id/visits?limit=20
func (h *VisitHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	reports, err := h.visitUsecase.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if reports == nil {
		reports = []domain.VisitReport{}
	}
	c.JSON(http.StatusOK, gin.H{"visits": reports})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrInactive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
