package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/finops_backend/models"
	"github.com/gin-gonic/gin"
)

/* vehicles */

func listVehiclesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		vehicles, err := models.ListVehicles(c.Request.Context(), queryBool(c, "isActive"))
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, vehicles)
	}
}

func createVehicleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewVehicle
		if !bindJSON(c, &input) {
			return
		}
		vehicle, err := models.CreateVehicle(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusCreated, vehicle)
	}
}

func getVehicleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		vehicle, err := models.GetVehicle(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, vehicle)
	}
}

func updateVehicleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		var input models.NewVehicle
		if !bindJSON(c, &input) {
			return
		}
		vehicle, err := models.UpdateVehicle(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, vehicle)
	}
}

func deleteVehicleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		vehicle, err := models.DeleteVehicle(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, vehicle)
	}
}

/* fuel */

func listFuelTransactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.FleetFilter
		if !bindQuery(c, &filter) {
			return
		}
		page, err := models.ListFuelTransactions(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, page)
	}
}

func createFuelTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewFuelTransaction
		if !bindJSON(c, &input) {
			return
		}
		fuel, err := models.CreateFuelTransaction(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusCreated, fuel)
	}
}

func getFuelTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		fuel, err := models.GetFuelTransaction(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, fuel)
	}
}

func updateFuelTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		var input models.NewFuelTransaction
		if !bindJSON(c, &input) {
			return
		}
		fuel, err := models.UpdateFuelTransaction(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, fuel)
	}
}

func deleteFuelTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		fuel, err := models.DeleteFuelTransaction(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, fuel)
	}
}

/* maintenance */

func listVehicleTransactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.FleetFilter
		if !bindQuery(c, &filter) {
			return
		}
		page, err := models.ListVehicleTransactions(c.Request.Context(), &filter, models.MaintenanceCategory(c.Query("category")))
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, page)
	}
}

func createVehicleTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewVehicleTransaction
		if !bindJSON(c, &input) {
			return
		}
		maintenance, err := models.CreateVehicleTransaction(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusCreated, maintenance)
	}
}

func getVehicleTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		maintenance, err := models.GetVehicleTransaction(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, maintenance)
	}
}

func updateVehicleTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		var input models.NewVehicleTransaction
		if !bindJSON(c, &input) {
			return
		}
		maintenance, err := models.UpdateVehicleTransaction(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, maintenance)
	}
}

func deleteVehicleTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		maintenance, err := models.DeleteVehicleTransaction(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, maintenance)
	}
}
