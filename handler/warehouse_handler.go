package handler

import (
	"employee_tracker/dto"
	"employee_tracker/usecase"
	"employee_tracker/utils"

	"github.com/gin-gonic/gin"
)

type WarehouseHandler struct {
	service *usecase.WarehouseService
}

func NewWarehouseHandler(service *usecase.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{service: service}
}

func toWarehouseInput(req dto.WarehouseRequest) usecase.WarehouseInput {
	return usecase.WarehouseInput{
		Name:     req.Name,
		Location: req.Location(),
		IsActive: req.IsActive,
	}
}

func (h *WarehouseHandler) Create(c *gin.Context) {
	var req dto.WarehouseRequest
	if !bindJSON(c, &req, false) {
		return
	}
	w, err := h.service.CreateWarehouse(c.Request.Context(), toWarehouseInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Warehouse created successfully", w)
}

func (h *WarehouseHandler) Get(c *gin.Context) {
	w, err := h.service.GetWarehouse(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "", w)
}

func (h *WarehouseHandler) List(c *gin.Context) {
	list, err := h.service.ListWarehouses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Paginated(c, list, int64(len(list)))
}

func (h *WarehouseHandler) Update(c *gin.Context) {
	var req dto.WarehouseRequest
	if !bindJSON(c, &req, false) {
		return
	}
	w, err := h.service.UpdateWarehouse(c.Request.Context(), c.Param("id"), toWarehouseInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Warehouse updated successfully", w)
}

func (h *WarehouseHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteWarehouse(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Warehouse deleted successfully", nil)
}
