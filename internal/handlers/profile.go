package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/homesync/homesync-backend/internal/requestdata"
	"github.com/homesync/homesync-backend/internal/services"
)

type ProfileHandler struct {
	households services.HouseholdService
}

func NewProfileHandler(households services.HouseholdService) *ProfileHandler {
	return &ProfileHandler{households: households}
}

func (ph *ProfileHandler) GetProfile(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	memberships, err := ph.households.ListMemberships(c.Request.Context(), rd.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(memberships) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	m := memberships[0]
	c.JSON(http.StatusOK, gin.H{
		"user_id":      rd.UserID,
		"display_name": m.DisplayName,
		"color":        m.Color,
	})
}

func (ph *ProfileHandler) UpsertProfile(c *gin.Context) {
	var body struct {
		DisplayName string `json:"display_name" binding:"required"`
		Color       string `json:"color"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "display_name is required"})
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	memberships, err := ph.households.UpdateProfile(c.Request.Context(), rd.UserID, body.DisplayName, body.Color)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":      rd.UserID,
		"display_name": body.DisplayName,
		"color":        body.Color,
		"memberships":  memberships,
	})
}

func (ph *ProfileHandler) ListMyHouseholds(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	memberships, err := ph.households.ListMemberships(c.Request.Context(), rd.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]gin.H, 0, len(memberships))
	for _, m := range memberships {
		entry := gin.H{
			"household_id": m.HouseholdID,
			"role":         m.Role,
		}
		if m.Household != nil {
			entry["household_name"] = m.Household.Name
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, out)
}
