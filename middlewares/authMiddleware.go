package middlewares

import (
	"net/http"
	"strings"

	"bitbucket.org/mmdatafocus/finops_backend/models"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/gin-gonic/gin"
)

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
}

// tokenFromRequest prefers the auth cookie and falls back to a Bearer header.
func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(utils.AuthCookieName); err == nil && token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	if len(auth) > len("Bearer ") && strings.EqualFold(auth[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return ""
}

// AuthMiddleware verifies the JWT, loads the user and stores id, name and role in the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			abortUnauthorized(c, "unauthorized")
			return
		}

		validate, err := utils.JwtValidate(token)
		if err != nil || !validate.Valid {
			abortUnauthorized(c, "unauthorized")
			return
		}
		claim, ok := validate.Claims.(*utils.JwtCustomClaim)
		if !ok || claim.ID <= 0 {
			abortUnauthorized(c, "unauthorized")
			return
		}
		revoked, err := models.IsTokenRevoked(token)
		if err != nil {
			c.Error(err)
		}
		if revoked {
			abortUnauthorized(c, "session has ended")
			return
		}

		user, err := models.GetUser(c.Request.Context(), claim.ID)
		if err != nil {
			abortUnauthorized(c, "unauthorized")
			return
		}
		if user.IsActive != nil && !*user.IsActive {
			abortUnauthorized(c, "user is disabled")
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUserIdInContext(ctx, user.ID)
		ctx = utils.SetUsernameInContext(ctx, user.Username)
		ctx = utils.SetUserNameInContext(ctx, user.Name)
		ctx = utils.SetUserRoleInContext(ctx, string(user.Role))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
