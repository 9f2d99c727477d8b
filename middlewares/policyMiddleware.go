package middlewares

import (
	"net/http"

	"bitbucket.org/mmdatafocus/finops_backend/models"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/gin-gonic/gin"
)

// RequirePolicy must run after AuthMiddleware.
func RequirePolicy(resource models.Resource, action models.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := utils.GetUserRoleFromContext(c.Request.Context())
		if !ok || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}
		if err := models.Authorize(models.UserRole(role), resource, action); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.Next()
	}
}
