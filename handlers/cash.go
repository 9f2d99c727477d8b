package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/finops_backend/models"
	"github.com/gin-gonic/gin"
)

func payCashHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCashPayment
		if !bindJSON(c, &input) {
			return
		}
		transaction, err := models.PayCash(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, viewTransaction(transaction))
	}
}

func suspenseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewSuspense
		if !bindJSON(c, &input) {
			return
		}
		transaction, err := models.MoveToSuspense(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, viewTransaction(transaction))
	}
}
