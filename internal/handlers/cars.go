package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"platinummotors/internal/database"
	"platinummotors/internal/models"
	"platinummotors/internal/util"
	"platinummotors/internal/validation"
)

type CarHandler struct {
	db *database.Database
}

func NewCarHandler(db *database.Database) *CarHandler {
	return &CarHandler{db: db}
}

// GetCars returns the public inventory
// @Summary List available cars
// @Description Returns all available cars newest-first. Supports optional filters. Registration plates are never included.
// @Tags cars
// @Produce json
// @Param make query string false "Filter by make (case-insensitive)"
// @Param minPrice query int false "Minimum price in pounds"
// @Param maxPrice query int false "Maximum price in pounds"
// @Param minMileage query int false "Minimum mileage"
// @Param maxMileage query int false "Maximum mileage"
// @Success 200 {array} models.PublicCar
// @Router /api/cars [get]
func (h *CarHandler) GetCars(c *gin.Context) {
	filters := models.CarFilters{
		Make:       c.Query("make"),
		MinPrice:   queryInt(c, "minPrice"),
		MaxPrice:   queryInt(c, "maxPrice"),
		MinMileage: queryInt(c, "minMileage"),
		MaxMileage: queryInt(c, "maxMileage"),
	}

	cars, err := h.db.GetAvailableCars(filters)
	if err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to load cars", err)
		return
	}

	public := make([]*models.PublicCar, 0, len(cars))
	for _, car := range cars {
		public = append(public, car.ToPublic())
	}

	c.JSON(http.StatusOK, public)
}

// GetCar returns one public car
// @Summary Get a single car
// @Tags cars
// @Produce json
// @Param id path int true "Car ID"
// @Success 200 {object} models.PublicCar
// @Failure 404 {object} map[string]string "error: Car not found"
// @Router /api/cars/{id} [get]
func (h *CarHandler) GetCar(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid car ID"})
		return
	}

	car, err := h.db.GetCarByID(id)
	if err != nil || !car.IsAvailable {
		c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		return
	}

	c.JSON(http.StatusOK, car.ToPublic())
}

// GetAllCars returns the full inventory for the admin dashboard
// @Summary List all cars (admin)
// @Description Returns every car including unavailable rows and admin-only fields
// @Tags admin
// @Produce json
// @Success 200 {array} models.Car
// @Failure 401 {object} map[string]string "error: Authentication required"
// @Router /api/admin/cars [get]
func (h *CarHandler) GetAllCars(c *gin.Context) {
	cars, err := h.db.GetAllCars()
	if err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to load cars", err)
		return
	}

	c.JSON(http.StatusOK, cars)
}

// CreateCar creates a manually managed car
// @Summary Create a car (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Param car body models.Car true "Car data"
// @Success 201 {object} models.Car
// @Failure 400 {object} map[string]string "error: Invalid request"
// @Router /api/admin/cars [post]
func (h *CarHandler) CreateCar(c *gin.Context) {
	var car models.Car
	if err := c.ShouldBindJSON(&car); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	if car.Make == "" || car.Model == "" || car.Year == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Make, model and year are required"})
		return
	}

	if err := validation.ValidateRegistration(car.Registration); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	car.SyncSource = models.SyncSourceManual
	car.IsAvailable = true

	if err := h.db.CreateCar(&car); err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to create car", err)
		return
	}

	c.JSON(http.StatusCreated, car)
}

// UpdateCar overwrites an existing car
// @Summary Update a car (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Car ID"
// @Param car body models.Car true "Car data"
// @Success 200 {object} models.Car
// @Failure 404 {object} map[string]string "error: Car not found"
// @Router /api/admin/cars/{id} [put]
func (h *CarHandler) UpdateCar(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid car ID"})
		return
	}

	var car models.Car
	if err := c.ShouldBindJSON(&car); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	if err := validation.ValidateRegistration(car.Registration); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	car.ID = id
	if err := h.db.UpdateCar(&car); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		return
	}

	c.JSON(http.StatusOK, car)
}

// DeleteCar removes a car permanently
// @Summary Delete a car (admin)
// @Tags admin
// @Produce json
// @Param id path int true "Car ID"
// @Success 200 {object} map[string]bool "success: true"
// @Failure 404 {object} map[string]string "error: Car not found"
// @Router /api/admin/cars/{id} [delete]
func (h *CarHandler) DeleteCar(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid car ID"})
		return
	}

	if err := h.db.DeleteCar(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}
