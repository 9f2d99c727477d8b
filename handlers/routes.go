package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/finops_backend/middlewares"
	"bitbucket.org/mmdatafocus/finops_backend/models"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the JSON API under /api.
func RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", loginHandler())
	auth.POST("/logout", middlewares.AuthMiddleware(), logoutHandler())
	auth.GET("/me", middlewares.AuthMiddleware(), meHandler())
	auth.PUT("/password", middlewares.AuthMiddleware(), changePasswordHandler())

	protected := api.Group("")
	protected.Use(middlewares.AuthMiddleware())

	allow := middlewares.RequirePolicy

	users := protected.Group("/users")
	users.GET("", allow(models.ResourceUser, models.ActionRead), listUsersHandler())
	users.POST("", allow(models.ResourceUser, models.ActionCreate), createUserHandler())
	users.GET("/:id", allow(models.ResourceUser, models.ActionRead), getUserHandler())
	users.PUT("/:id", allow(models.ResourceUser, models.ActionUpdate), updateUserHandler())
	users.DELETE("/:id", allow(models.ResourceUser, models.ActionDelete), deleteUserHandler())

	transactions := protected.Group("/transactions")
	transactions.GET("", allow(models.ResourceTransaction, models.ActionRead), listTransactionsHandler())
	transactions.POST("", allow(models.ResourceTransaction, models.ActionCreate), createTransactionHandler())
	transactions.GET("/:id", allow(models.ResourceTransaction, models.ActionRead), getTransactionHandler())
	transactions.PUT("/:id", allow(models.ResourceTransaction, models.ActionUpdate), updateTransactionHandler())
	transactions.DELETE("/:id", allow(models.ResourceTransaction, models.ActionDelete), deleteTransactionHandler())
	transactions.PUT("/:id/approve", allow(models.ResourceTransaction, models.ActionApprove), approveTransactionHandler())
	transactions.PUT("/:id/reject", allow(models.ResourceTransaction, models.ActionReject), rejectTransactionHandler())
	transactions.GET("/:id/history", allow(models.ResourceTransaction, models.ActionRead), transactionHistoryHandler())
	transactions.POST("/:id/receipt", allow(models.ResourceTransaction, models.ActionUpdate), uploadReceiptHandler())
	transactions.GET("/:id/voucher", allow(models.ResourceTransaction, models.ActionRead), voucherHandler())

	protected.POST("/cash", allow(models.ResourceCash, models.ActionPay), payCashHandler())
	protected.POST("/suspence", allow(models.ResourceSuspense, models.ActionPay), suspenseHandler())

	checks := protected.Group("/checkTransaction")
	checks.GET("", allow(models.ResourceCheck, models.ActionRead), listChecksHandler())
	checks.GET("/:id", allow(models.ResourceCheck, models.ActionRead), getCheckHandler())
	checks.POST("/checkPrepare", allow(models.ResourceCheck, models.ActionCreate), prepareCheckHandler())
	checks.PUT("/checkPrepare", allow(models.ResourceCheck, models.ActionPay), confirmCheckHandler())
	checks.PUT("/reject", allow(models.ResourceCheck, models.ActionReject), rejectCheckHandler())

	accounts := protected.Group("/cash-accounts")
	accounts.GET("", allow(models.ResourceCashAccount, models.ActionRead), listCashAccountsHandler())
	accounts.POST("", allow(models.ResourceCashAccount, models.ActionCreate), createCashAccountHandler())
	accounts.GET("/:id", allow(models.ResourceCashAccount, models.ActionRead), getCashAccountHandler())
	accounts.PUT("/:id", allow(models.ResourceCashAccount, models.ActionUpdate), updateCashAccountHandler())
	accounts.DELETE("/:id", allow(models.ResourceCashAccount, models.ActionDelete), deleteCashAccountHandler())
	accounts.PUT("/:id/active", allow(models.ResourceCashAccount, models.ActionUpdate), toggleActiveHandler(models.ToggleActiveCashAccount))
	accounts.PUT("/:id/top-up", allow(models.ResourceCashAccount, models.ActionUpdate), topUpCashAccountHandler())

	protected.GET("/counter", allow(models.ResourceCounter, models.ActionRead), counterHandler())

	vehicles := protected.Group("/vehicles")
	vehicles.GET("", allow(models.ResourceVehicle, models.ActionRead), listVehiclesHandler())
	vehicles.POST("", allow(models.ResourceVehicle, models.ActionCreate), createVehicleHandler())
	vehicles.GET("/:id", allow(models.ResourceVehicle, models.ActionRead), getVehicleHandler())
	vehicles.PUT("/:id", allow(models.ResourceVehicle, models.ActionUpdate), updateVehicleHandler())
	vehicles.DELETE("/:id", allow(models.ResourceVehicle, models.ActionDelete), deleteVehicleHandler())
	vehicles.PUT("/:id/active", allow(models.ResourceVehicle, models.ActionUpdate), toggleActiveHandler(models.ToggleActiveVehicle))

	fuel := protected.Group("/fuel-transactions")
	fuel.GET("", allow(models.ResourceFuelTransaction, models.ActionRead), listFuelTransactionsHandler())
	fuel.POST("", allow(models.ResourceFuelTransaction, models.ActionCreate), createFuelTransactionHandler())
	fuel.GET("/:id", allow(models.ResourceFuelTransaction, models.ActionRead), getFuelTransactionHandler())
	fuel.PUT("/:id", allow(models.ResourceFuelTransaction, models.ActionUpdate), updateFuelTransactionHandler())
	fuel.DELETE("/:id", allow(models.ResourceFuelTransaction, models.ActionDelete), deleteFuelTransactionHandler())

	maintenance := protected.Group("/vehicle-transactions")
	maintenance.GET("", allow(models.ResourceVehicleTransaction, models.ActionRead), listVehicleTransactionsHandler())
	maintenance.POST("", allow(models.ResourceVehicleTransaction, models.ActionCreate), createVehicleTransactionHandler())
	maintenance.GET("/:id", allow(models.ResourceVehicleTransaction, models.ActionRead), getVehicleTransactionHandler())
	maintenance.PUT("/:id", allow(models.ResourceVehicleTransaction, models.ActionUpdate), updateVehicleTransactionHandler())
	maintenance.DELETE("/:id", allow(models.ResourceVehicleTransaction, models.ActionDelete), deleteVehicleTransactionHandler())

	products := protected.Group("/products")
	products.GET("", allow(models.ResourceProduct, models.ActionRead), listProductsHandler())
	products.POST("", allow(models.ResourceProduct, models.ActionCreate), createProductHandler())
	products.GET("/:id", allow(models.ResourceProduct, models.ActionRead), getProductHandler())
	products.PUT("/:id", allow(models.ResourceProduct, models.ActionUpdate), updateProductHandler())
	products.DELETE("/:id", allow(models.ResourceProduct, models.ActionDelete), deleteProductHandler())
	products.PUT("/:id/active", allow(models.ResourceProduct, models.ActionUpdate), toggleActiveHandler(models.ToggleActiveProduct))

	warehouses := protected.Group("/warehouses")
	warehouses.GET("", allow(models.ResourceWarehouse, models.ActionRead), listWarehousesHandler())
	warehouses.POST("", allow(models.ResourceWarehouse, models.ActionCreate), createWarehouseHandler())
	warehouses.GET("/:id", allow(models.ResourceWarehouse, models.ActionRead), getWarehouseHandler())
	warehouses.PUT("/:id", allow(models.ResourceWarehouse, models.ActionUpdate), updateWarehouseHandler())
	warehouses.DELETE("/:id", allow(models.ResourceWarehouse, models.ActionDelete), deleteWarehouseHandler())
	warehouses.PUT("/:id/active", allow(models.ResourceWarehouse, models.ActionUpdate), toggleActiveHandler(models.ToggleActiveWarehouse))

	stocks := protected.Group("/stocks")
	stocks.GET("", allow(models.ResourceStock, models.ActionRead), listStocksHandler())
	stocks.PUT("", allow(models.ResourceStock, models.ActionUpdate), setStockHandler())
	stocks.POST("/adjust", allow(models.ResourceStock, models.ActionUpdate), adjustStockHandler())

	snapshots := protected.Group("/stock-snapshots")
	snapshots.GET("", allow(models.ResourceStockSnapshot, models.ActionRead), listStockSnapshotsHandler())
	snapshots.POST("", allow(models.ResourceStockSnapshot, models.ActionCreate), takeStockSnapshotHandler())
}
