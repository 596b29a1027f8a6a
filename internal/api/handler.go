package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/motogarage/motogarage-server/internal/apperr"
	"github.com/motogarage/motogarage-server/internal/models"
	"github.com/motogarage/motogarage-server/internal/service"
)

// Handler wires the service operations to HTTP routes.
type Handler struct {
	svc service.Service
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service) *Handler {
	return &Handler{svc: svc}
}

// SetupRoutes registers all API routes on the router.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	// Registration runs before an internal user exists, so it only needs a
	// verified identity-provider token.
	v1.POST("/user/register", IdentityMiddleware(), h.registerUser)

	auth := v1.Group("", AuthMiddleware(h.svc))
	auth.GET("/user/profile", h.getProfile)

	auth.GET("/bikes/manufacturers", h.listManufacturers)
	auth.GET("/bikes/search", h.searchBikes)

	auth.POST("/my-bikes", h.registerMyBike)
	auth.GET("/my-bikes", h.listMyBikes)
	auth.GET("/my-bikes/:myBikeId", h.getMyBikeDetail)
	auth.PATCH("/my-bikes/:myBikeId", h.updateMyBike)

	auth.POST("/my-bikes/:myBikeId/fuel-logs", h.registerFuelLog)
	auth.GET("/my-bikes/:myBikeId/fuel-logs", h.getFuelLogs)
	auth.PATCH("/my-bikes/:myBikeId/fuel-logs/:fuelLogId", h.updateFuelLog)
}

func userIDFromContext(c *gin.Context) models.UserID {
	return c.MustGet(ctxUserID).(models.UserID)
}

// respondError maps service error kinds onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusInternalServerError
	message := err.Error()
	switch kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindConflict:
		status = http.StatusConflict
	default:
		// Don't leak internals to the client.
		message = "internal server error"
	}

	c.JSON(status, models.ErrorResponse{
		Status:  "error",
		Code:    string(kind),
		Field:   apperr.FieldOf(err),
		Message: message,
	})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    string(apperr.KindValidation),
		Message: err.Error(),
	})
}

// User handlers
func (h *Handler) registerUser(c *gin.Context) {
	var req models.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	provider := c.MustGet(ctxProvider).(string)
	externalID := c.MustGet(ctxExternalID).(string)

	resp, err := h.svc.RegisterUser(c.Request.Context(), provider, externalID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) getProfile(c *gin.Context) {
	resp, err := h.svc.GetProfile(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Catalog handlers
func (h *Handler) listManufacturers(c *gin.Context) {
	resp, err := h.svc.ListManufacturers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) searchBikes(c *gin.Context) {
	params := models.BikeSearchParams{
		ManufacturerID:  c.Query("manufacturerId"),
		ModelName:       c.Query("modelName"),
		DisplacementMin: queryInt(c, "displacementMin"),
		DisplacementMax: queryInt(c, "displacementMax"),
		ModelYearMin:    queryInt(c, "modelYearMin"),
		ModelYearMax:    queryInt(c, "modelYearMax"),
		Page:            queryInt(c, "page"),
		PageSize:        queryInt(c, "pageSize"),
		SortBy:          models.BikeSort(c.Query("sortBy")),
		SortOrder:       models.SortOrder(c.Query("sortOrder")),
	}

	resp, err := h.svc.SearchBikes(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Garage handlers
func (h *Handler) registerMyBike(c *gin.Context) {
	var req models.RegisterMyBikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.svc.RegisterMyBike(c.Request.Context(), userIDFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) listMyBikes(c *gin.Context) {
	resp, err := h.svc.ListMyBikes(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getMyBikeDetail(c *gin.Context) {
	myBikeID := models.MyBikeID(c.Param("myBikeId"))

	resp, err := h.svc.GetMyBikeDetail(c.Request.Context(), myBikeID, userIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) updateMyBike(c *gin.Context) {
	var req models.UpdateMyBikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	myBikeID := models.MyBikeID(c.Param("myBikeId"))

	resp, err := h.svc.UpdateMyBike(c.Request.Context(), myBikeID, userIDFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Fuel-log handlers
func (h *Handler) registerFuelLog(c *gin.Context) {
	var req models.RegisterFuelLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	myBikeID := models.MyBikeID(c.Param("myBikeId"))

	resp, err := h.svc.RegisterFuelLog(c.Request.Context(), myBikeID, userIDFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) getFuelLogs(c *gin.Context) {
	myBikeID := models.MyBikeID(c.Param("myBikeId"))
	query := models.NewFuelLogQuery(
		queryInt(c, "page"),
		queryInt(c, "pageSize"),
		c.Query("sortBy"),
		c.Query("sortOrder"),
	)

	resp, err := h.svc.GetFuelLogs(c.Request.Context(), myBikeID, userIDFromContext(c), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) updateFuelLog(c *gin.Context) {
	var req models.UpdateFuelLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	myBikeID := models.MyBikeID(c.Param("myBikeId"))
	fuelLogID := models.FuelLogID(c.Param("fuelLogId"))

	resp, err := h.svc.UpdateFuelLog(c.Request.Context(), fuelLogID, myBikeID, userIDFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}
