package api

import (
	"net/http"

	"checkmaster/services"

	"github.com/gin-gonic/gin"
)

// InspectionsAPI история инспекций
type InspectionsAPI struct {
	Inspections *services.InspectionService
}

// NewInspectionsAPI создает новый экземпляр InspectionsAPI
func NewInspectionsAPI(inspections *services.InspectionService) *InspectionsAPI {
	return &InspectionsAPI{Inspections: inspections}
}

// RegisterInspectionsRoutes регистрирует маршруты истории
func (api *InspectionsAPI) RegisterInspectionsRoutes(r *gin.RouterGroup) {
	inspections := r.Group("/inspections")
	{
		inspections.GET("", api.GetInspections)
		inspections.GET("/:id", api.GetInspection)
		inspections.DELETE("/:id", api.DeleteInspection)
	}
}

// GetInspections история, новые сверху; ?search= по компании, клиенту, номеру, марке и модели
func (api *InspectionsAPI) GetInspections(c *gin.Context) {
	inspections, err := api.Inspections.Search(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   inspections,
		"total":  len(inspections),
	})
}

func (api *InspectionsAPI) GetInspection(c *gin.Context) {
	inspection, err := api.Inspections.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, inspection)
}

func (api *InspectionsAPI) DeleteInspection(c *gin.Context) {
	if err := api.Inspections.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Инспекция удалена",
	})
}
