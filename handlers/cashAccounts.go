package handlers

import (
	"context"
	"net/http"

	"bitbucket.org/mmdatafocus/finops_backend/models"
	"github.com/gin-gonic/gin"
)

type activeRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// toggleActiveHandler serves PUT /:id/active for any resource with an IsActive flag.
func toggleActiveHandler[T any](toggle func(ctx context.Context, id int, isActive bool) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		var req activeRequest
		if !bindJSON(c, &req) {
			return
		}
		result, err := toggle(c.Request.Context(), id, *req.IsActive)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, result)
	}
}

func listCashAccountsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := models.ListCashAccounts(c.Request.Context(), queryBool(c, "isActive"))
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, accounts)
	}
}

func createCashAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCashAccount
		if !bindJSON(c, &input) {
			return
		}
		account, err := models.CreateCashAccount(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusCreated, account)
	}
}

func getCashAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		account, err := models.GetCashAccount(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, account)
	}
}

func updateCashAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		var input models.NewCashAccount
		if !bindJSON(c, &input) {
			return
		}
		account, err := models.UpdateCashAccount(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, account)
	}
}

func deleteCashAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		account, err := models.DeleteCashAccount(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, account)
	}
}

func topUpCashAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		var input models.CashTopUp
		if !bindJSON(c, &input) {
			return
		}
		account, err := models.TopUpCashAccount(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, account)
	}
}

func counterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		counter, err := models.GetCounter(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, gin.H{
			"cpv":      counter.Cpv,
			"pcpv":     counter.Pcpv,
			"nextCpv":  models.FormatSerial(models.VoucherTypeCPV, counter.Cpv+1),
			"nextPcpv": models.FormatSerial(models.VoucherTypePCPV, counter.Pcpv+1),
		})
	}
}
