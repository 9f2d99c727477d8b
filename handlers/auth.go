package handlers

import (
	"net/http"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/finops_backend/models"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/gin-gonic/gin"
)

func secureCookies() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production")
}

func setAuthCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.AuthCookieName, token, maxAge, "/", "", secureCookies(), true)
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.LoginInput
		if !bindJSON(c, &input) {
			return
		}
		info, err := models.Login(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		setAuthCookie(c, info.Token, int(utils.GetTokenLifespan().Seconds()))
		respondOK(c, http.StatusOK, info)
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := models.Logout(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		setAuthCookie(c, "", -1)
		respondMessage(c, http.StatusOK, "logged out")
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := models.Me(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, user)
	}
}

func changePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.ChangePasswordInput
		if !bindJSON(c, &input) {
			return
		}
		if _, err := models.ChangePassword(c.Request.Context(), &input); err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, "password changed")
	}
}
