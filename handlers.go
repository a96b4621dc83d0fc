package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/rr77/adminlicores/middlewares"
	"github.com/rr77/adminlicores/models"
	"github.com/rr77/adminlicores/models/reports"
	"github.com/rr77/adminlicores/utils"
)

var requireRole = middlewares.RequireRole

// Write access per section follows the role matrix: supervisors are
// read-only everywhere, bartenders record exits and returns, warehouse
// staff and admins record everything.
var (
	rolesWarehouse = []models.Role{models.RoleWarehouse, models.RoleAdmin}
	rolesBarAndUp  = []models.Role{models.RoleBartender, models.RoleWarehouse, models.RoleAdmin}
	rolesAnyLogin  = []models.Role{models.RoleBartender, models.RoleWarehouse, models.RoleAdmin, models.RoleSupervisor}
	rolesAdminOnly = []models.Role{models.RoleAdmin}
)

func registerRoutes(r *gin.Engine, state *models.State) {
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.POST("/login", loginHandler(state))

	api := r.Group("/api")

	api.GET("/stock", requireRole(rolesAnyLogin...), stockHandler(state))
	api.GET("/dashboard", requireRole(rolesAnyLogin...), dashboardHandler(state))
	api.GET("/history", requireRole(rolesAnyLogin...), historyHandler(state))

	api.GET("/catalog", requireRole(rolesAnyLogin...), catalogHandler(state))
	api.POST("/catalog", requireRole(rolesWarehouse...), createProductHandler(state))
	api.PUT("/catalog/minimum", requireRole(rolesWarehouse...), updateMinimumHandler(state))

	api.GET("/recipes", requireRole(rolesAnyLogin...), recipesHandler(state))
	api.GET("/recipes/drinks", requireRole(rolesAnyLogin...), drinkNamesHandler(state))
	api.POST("/recipes", requireRole(rolesWarehouse...), createRecipeHandler(state))

	api.POST("/entries", requireRole(rolesWarehouse...), entryHandler(state))
	api.POST("/transfers", requireRole(rolesWarehouse...), transferHandler(state))
	api.POST("/returns", requireRole(rolesBarAndUp...), returnHandler(state))
	api.POST("/exits/bottle", requireRole(rolesBarAndUp...), bottleExitHandler(state))
	api.POST("/exits/drink", requireRole(rolesBarAndUp...), drinkExitHandler(state))

	api.GET("/audits/daily", requireRole(rolesAnyLogin...), dailyAuditsHandler(state))
	api.GET("/audits/daily/export", requireRole(rolesAnyLogin...), auditExportHandler(state))
	api.POST("/audits/daily", requireRole(rolesWarehouse...), saveDailyAuditHandler(state))
	api.GET("/audits/weekly", requireRole(rolesAnyLogin...), weeklyVarianceHandler(state))
	api.POST("/audits/weekly", requireRole(rolesWarehouse...), saveWeeklyRollupHandler(state))

	api.GET("/users", requireRole(rolesAdminOnly...), usersHandler(state))
	api.POST("/users", requireRole(rolesAdminOnly...), createUserHandler(state))

	api.POST("/reload", requireRole(rolesWarehouse...), reloadHandler(state))
}

// writeResult maps domain errors to HTTP replies. UnknownDrink keeps the
// original no-op contract: a reply, not a failure. A persistence failure
// names the unflushed tables; the in-memory record already happened.
func writeResult(c *gin.Context, data any, err error) {
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"data": data})
		return
	}
	var pe *utils.PersistenceError
	switch {
	case errors.Is(err, utils.ErrUnknownDrink):
		c.JSON(http.StatusOK, gin.H{"data": nil, "message": "drink has no recipe, nothing recorded"})
	case errors.As(err, &pe):
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"data": data, "error": "persistence failure", "tables": pe.Tables})
	case errors.Is(err, utils.ErrInvalidQuantity), errors.Is(err, utils.ErrInvalidRoute):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrAuditSaved):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		info, err := state.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": info})
	}
}

func stockHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.StockFilter{Categories: c.QueryArray("category")}
		for _, l := range c.QueryArray("location") {
			filter.Locations = append(filter.Locations, models.Location(l))
		}
		c.JSON(http.StatusOK, gin.H{"data": state.CurrentStock(filter)})
	}
}

func dashboardHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := reports.GetDashboard(c.Request.Context(), state)
		writeResult(c, resp, err)
	}
}

func historyRequestFromQuery(c *gin.Context) (reports.HistoryRequest, error) {
	req := reports.HistoryRequest{Range: c.Query("range")}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return req, err
		}
		req.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return req, err
		}
		// inclusive upper bound for a date-only filter
		req.To = t.AddDate(0, 0, 1).Add(-time.Second)
	}
	return req, nil
}

func historyHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := historyRequestFromQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if c.Query("format") == "xlsx" {
			c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			c.Header("Content-Disposition", "attachment; filename=historial.xlsx")
			if err := reports.ExportMovementHistory(c.Request.Context(), state, req, c.Writer); err != nil {
				_ = c.Error(err)
			}
			return
		}
		movements, err := reports.GetMovementHistory(c.Request.Context(), state, req)
		writeResult(c, movements, err)
	}
}

func catalogHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": state.GetCatalog()})
	}
}

func createProductHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		product, err := state.CreateProduct(c.Request.Context(), &input)
		writeResult(c, product, err)
	}
}

type updateMinimumRequest struct {
	Product string          `json:"product" binding:"required"`
	Minimum decimal.Decimal `json:"minimum"`
}

func updateMinimumHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateMinimumRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		product, err := state.UpdateMinimumStock(c.Request.Context(), req.Product, req.Minimum)
		writeResult(c, product, err)
	}
}

func recipesHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": state.GetRecipes()})
	}
}

func drinkNamesHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": state.DrinkNames()})
	}
}

func createRecipeHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewRecipe
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		lines, err := state.CreateRecipe(c.Request.Context(), &input)
		writeResult(c, lines, err)
	}
}

func entryHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewEntry
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		record, err := state.RecordEntry(c.Request.Context(), &input)
		writeResult(c, record, err)
	}
}

func transferHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewTransfer
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		record, err := state.RecordTransfer(c.Request.Context(), &input)
		writeResult(c, record, err)
	}
}

func returnHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewReturn
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		record, err := state.RecordReturn(c.Request.Context(), &input)
		writeResult(c, record, err)
	}
}

func bottleExitHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewBottleExit
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		record, err := state.RecordBottleExit(c.Request.Context(), &input)
		writeResult(c, record, err)
	}
}

func drinkExitHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewDrinkExit
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		result, err := state.RecordDrinkExit(c.Request.Context(), &input)
		writeResult(c, result, err)
	}
}

func auditFilterFromQuery(c *gin.Context) (models.AuditFilter, error) {
	filter := models.AuditFilter{
		Shift:    models.Shift(c.Query("shift")),
		Location: models.Location(c.Query("location")),
	}
	if v := c.Query("date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, err
		}
		filter.Date = t
	}
	return filter, nil
}

func dailyAuditsHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := auditFilterFromQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": state.GetDailyAudits(filter)})
	}
}

func auditExportHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := auditFilterFromQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=auditoria_diaria.xlsx")
		if err := reports.ExportDailyAudits(c.Request.Context(), state, filter, c.Writer); err != nil {
			_ = c.Error(err)
		}
	}
}

type saveDailyAuditRequest struct {
	Date   string              `json:"date"`
	Shift  models.Shift        `json:"shift" binding:"required"`
	Filter models.StockFilter  `json:"filter"`
	Counts []physicalCountItem `json:"counts"`
}

type physicalCountItem struct {
	Product  string          `json:"product" binding:"required"`
	Location models.Location `json:"location" binding:"required"`
	Physical decimal.Decimal `json:"physical"`
}

func saveDailyAuditHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req saveDailyAuditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var date time.Time
		if req.Date != "" {
			t, err := time.Parse("2006-01-02", req.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			date = t
		}

		session, err := state.NewAuditSession(date, req.Shift, req.Filter)
		if err != nil {
			writeResult(c, nil, err)
			return
		}
		if _, err := session.Begin(); err != nil {
			writeResult(c, nil, err)
			return
		}
		for _, count := range req.Counts {
			if err := session.SetCount(count.Product, count.Location, count.Physical); err != nil {
				writeResult(c, nil, err)
				return
			}
		}
		records, err := session.Save(c.Request.Context())
		writeResult(c, records, err)
	}
}

func weeklyVarianceHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		if week := c.Query("week"); week != "" {
			c.JSON(http.StatusOK, gin.H{"data": state.GetWeeklyAudits(week)})
			return
		}
		week, rows := state.ComputeWeeklyVariance(time.Now())
		c.JSON(http.StatusOK, gin.H{"data": rows, "week": week, "saved": state.GetWeeklyAudits(week)})
	}
}

func saveWeeklyRollupHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := state.SaveWeeklyRollup(c.Request.Context(), time.Now())
		writeResult(c, rows, err)
	}
}

func usersHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": state.GetUsers()})
	}
}

func createUserHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user, err := state.CreateUser(c.Request.Context(), &input)
		writeResult(c, user, err)
	}
}

func reloadHandler(state *models.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := state.Reload(c.Request.Context()); err != nil {
			writeResult(c, nil, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": "reloaded"})
	}
}
