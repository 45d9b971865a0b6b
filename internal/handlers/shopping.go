package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homesync/homesync-backend/internal/services"
)

type ShoppingHandler struct {
	shopping services.ShoppingService
}

func NewShoppingHandler(shopping services.ShoppingService) *ShoppingHandler {
	return &ShoppingHandler{shopping: shopping}
}

func (sh *ShoppingHandler) weekParams(c *gin.Context) (uuid.UUID, time.Time, bool) {
	householdID, err := uuid.Parse(c.Param("householdID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid household id"})
		return uuid.Nil, time.Time{}, false
	}
	raw := c.Query("week_start")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week_start is required"})
		return uuid.Nil, time.Time{}, false
	}
	weekStart, err := time.Parse(dateLayout, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week_start must be YYYY-MM-DD"})
		return uuid.Nil, time.Time{}, false
	}
	return householdID, weekStart, true
}

func (sh *ShoppingHandler) Get(c *gin.Context) {
	householdID, weekStart, ok := sh.weekParams(c)
	if !ok {
		return
	}
	items, err := sh.shopping.Get(c.Request.Context(), householdID, weekStart)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (sh *ShoppingHandler) Sync(c *gin.Context) {
	householdID, weekStart, ok := sh.weekParams(c)
	if !ok {
		return
	}
	items, err := sh.shopping.Sync(c.Request.Context(), householdID, weekStart)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (sh *ShoppingHandler) Toggle(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("itemID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}
	var body struct {
		Checked *bool `json:"checked" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Checked == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "checked is required"})
		return
	}
	item, err := sh.shopping.Toggle(c.Request.Context(), itemID, *body.Checked)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
