package handlers

import (
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/models"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/gin-gonic/gin"
)

/* products */

func listProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := models.ListProducts(c.Request.Context(), c.Query("search"), queryBool(c, "isActive"))
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, products)
	}
}

func createProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProduct
		if !bindJSON(c, &input) {
			return
		}
		product, err := models.CreateProduct(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusCreated, product)
	}
}

func getProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		product, err := models.GetProduct(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, product)
	}
}

func updateProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		var input models.NewProduct
		if !bindJSON(c, &input) {
			return
		}
		product, err := models.UpdateProduct(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, product)
	}
}

func deleteProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		product, err := models.DeleteProduct(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, product)
	}
}

/* warehouses */

func listWarehousesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warehouses, err := models.ListWarehouses(c.Request.Context(), queryBool(c, "isActive"))
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, warehouses)
	}
}

func createWarehouseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewWarehouse
		if !bindJSON(c, &input) {
			return
		}
		warehouse, err := models.CreateWarehouse(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusCreated, warehouse)
	}
}

func getWarehouseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		warehouse, err := models.GetWarehouse(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, warehouse)
	}
}

func updateWarehouseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		var input models.NewWarehouse
		if !bindJSON(c, &input) {
			return
		}
		warehouse, err := models.UpdateWarehouse(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, warehouse)
	}
}

func deleteWarehouseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		warehouse, err := models.DeleteWarehouse(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, warehouse)
	}
}

/* stock */

func listStocksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.StockFilter
		if !bindQuery(c, &filter) {
			return
		}
		stocks, err := models.ListStocks(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, stocks)
	}
}

func setStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewStock
		if !bindJSON(c, &input) {
			return
		}
		stock, err := models.SetStock(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, stock)
	}
}

func adjustStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.StockAdjustment
		if !bindJSON(c, &input) {
			return
		}
		stock, err := models.AdjustStock(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, stock)
	}
}

/* snapshots */

type snapshotRequest struct {
	Date string `json:"date"`
}

func listStockSnapshotsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.StockSnapshotFilter
		if !bindQuery(c, &filter) {
			return
		}
		snapshots, err := models.ListStockSnapshots(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, snapshots)
	}
}

// takeStockSnapshotHandler snapshots the given date, or today when the body is empty.
func takeStockSnapshotHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req snapshotRequest
		if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
			return
		}

		var (
			count int
			date  time.Time
			err   error
		)
		if req.Date == "" {
			count, err = models.SnapshotToday(c.Request.Context())
		} else {
			date, err = utils.ParseDate(req.Date)
			if err != nil {
				respondMessage(c, http.StatusBadRequest, "invalid date")
				return
			}
			count, err = models.TakeStockSnapshot(c.Request.Context(), date)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusCreated, gin.H{"rows": count})
	}
}
