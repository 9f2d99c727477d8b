package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/finops_backend/models"
	"github.com/gin-gonic/gin"
)

func listChecksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.CheckRequestFilter
		if !bindQuery(c, &filter) {
			return
		}
		page, err := models.ListCheckRequests(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, page)
	}
}

func getCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		check, err := models.GetCheckRequest(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, check)
	}
}

func prepareCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCheckRequest
		if !bindJSON(c, &input) {
			return
		}
		check, err := models.PrepareCheck(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusCreated, check)
	}
}

func confirmCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.CheckDecision
		if !bindJSON(c, &input) {
			return
		}
		check, err := models.ConfirmCheckPayment(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, check)
	}
}

func rejectCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.CheckDecision
		if !bindJSON(c, &input) {
			return
		}
		check, err := models.RejectCheck(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, check)
	}
}
