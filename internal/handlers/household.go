package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homesync/homesync-backend/internal/requestdata"
	"github.com/homesync/homesync-backend/internal/services"
)

type HouseholdHandler struct {
	households services.HouseholdService
}

func NewHouseholdHandler(households services.HouseholdService) *HouseholdHandler {
	return &HouseholdHandler{households: households}
}

func (hh *HouseholdHandler) Create(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	household, err := hh.households.Create(c.Request.Context(), rd.UserID, body.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, household)
}

func (hh *HouseholdHandler) Get(c *gin.Context) {
	householdID, err := uuid.Parse(c.Param("householdID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid household id"})
		return
	}
	household, err := hh.households.Get(c.Request.Context(), householdID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, household)
}

func (hh *HouseholdHandler) AddMember(c *gin.Context) {
	householdID, err := uuid.Parse(c.Param("householdID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid household id"})
		return
	}
	var body struct {
		UserID      uuid.UUID `json:"user_id" binding:"required"`
		Role        string    `json:"role"`
		DisplayName string    `json:"display_name"`
		Color       string    `json:"color"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	member, err := hh.households.AddMember(c.Request.Context(), householdID, body.UserID, body.Role, body.DisplayName, body.Color)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}
