package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homesync/homesync-backend/internal/logger"
	"github.com/homesync/homesync-backend/internal/requestdata"
	"github.com/homesync/homesync-backend/internal/services"
)

// MembershipMiddleware guards household-scoped routes: the caller must hold a
// member row in the household named by the :householdID path parameter.
type MembershipMiddleware struct {
	log        *logger.Logger
	households services.HouseholdService
}

func NewMembershipMiddleware(log *logger.Logger, households services.HouseholdService) *MembershipMiddleware {
	return &MembershipMiddleware{log: log.With("middleware", "MembershipMiddleware"), households: households}
}

func (mm *MembershipMiddleware) RequireMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		householdID, err := uuid.Parse(c.Param("householdID"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid household id"})
			return
		}
		rd := requestdata.GetRequestData(c.Request.Context())
		if rd == nil || rd.UserID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		if _, err := mm.households.Membership(c.Request.Context(), householdID, rd.UserID); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not a member of this household"})
			return
		}
		c.Next()
	}
}
