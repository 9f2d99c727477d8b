package handlers

import (
	"fmt"
	"io"
	"net/http"

	"bitbucket.org/mmdatafocus/finops_backend/models"
	"github.com/gin-gonic/gin"
)

type transactionView struct {
	*models.Transaction
	VoucherNumber string `json:"voucherNumber,omitempty"`
}

func viewTransaction(t *models.Transaction) transactionView {
	return transactionView{Transaction: t, VoucherNumber: t.VoucherNumber()}
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func listTransactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.TransactionFilter
		if !bindQuery(c, &filter) {
			return
		}
		page, err := models.ListTransactions(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, page)
	}
}

func createTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewTransaction
		if !bindJSON(c, &input) {
			return
		}
		transaction, err := models.CreateTransaction(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusCreated, viewTransaction(transaction))
	}
}

func getTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		transaction, err := models.GetTransaction(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, viewTransaction(transaction))
	}
}

func updateTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		var input models.NewTransaction
		if !bindJSON(c, &input) {
			return
		}
		transaction, err := models.UpdateTransaction(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, viewTransaction(transaction))
	}
}

func deleteTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		transaction, err := models.DeleteTransaction(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, viewTransaction(transaction))
	}
}

func approveTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		transaction, err := models.ApproveTransaction(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, viewTransaction(transaction))
	}
}

func rejectTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		var req rejectRequest
		if !bindJSON(c, &req) {
			return
		}
		transaction, err := models.RejectTransaction(c.Request.Context(), id, req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, viewTransaction(transaction))
	}
}

func transactionHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		histories, err := models.ListHistory(c.Request.Context(), models.ReferenceTypeTransaction, id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, histories)
	}
}

func uploadReceiptHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, models.MaxReceiptSizeBytes+(1<<20))
		fileHeader, err := c.FormFile("file")
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "file is required")
			return
		}
		if fileHeader.Size > models.MaxReceiptSizeBytes {
			respondMessage(c, http.StatusBadRequest, "file size exceeds 5MB limit")
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "file cannot be read")
			return
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, models.MaxReceiptSizeBytes+1))
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "file cannot be read")
			return
		}

		upload, err := models.UploadReceipt(c.Request.Context(), id, data)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusCreated, upload)
	}
}

func voucherHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		data, filename, err := models.VoucherWorkbook(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", attachmentDisposition(filename))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	}
}

func attachmentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
