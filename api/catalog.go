package api

import (
	"net/http"

	"checkmaster/models"

	"github.com/gin-gonic/gin"
)

// CatalogAPI справочники марок, моделей и услуг
type CatalogAPI struct {
	Catalog *models.Catalog
}

// NewCatalogAPI создает новый экземпляр CatalogAPI
func NewCatalogAPI(catalog *models.Catalog) *CatalogAPI {
	if catalog == nil {
		catalog = models.DefaultCatalog()
	}
	return &CatalogAPI{Catalog: catalog}
}

// RegisterCatalogRoutes регистрирует маршруты справочников
func (api *CatalogAPI) RegisterCatalogRoutes(r *gin.RouterGroup) {
	catalog := r.Group("/catalog")
	{
		catalog.GET("/vehicles", api.GetVehicles)
		catalog.GET("/services", api.GetServices)
		catalog.GET("/items/:source", api.GetItems)
		catalog.GET("/field-types", api.GetFieldTypes)
	}
}

// GetVehicles марки и модели; ?type= ограничивает одной категорией
func (api *CatalogAPI) GetVehicles(c *gin.Context) {
	if t := c.Query("type"); t != "" {
		category := models.VehicleCategory(t)
		if !category.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"status": "error",
				"error":  "Неизвестная категория ТС: " + t,
			})
			return
		}
		respondData(c, http.StatusOK, gin.H{
			"type":   category,
			"brands": api.Catalog.Brands(category),
		})
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"types":    models.AllVehicleCategories(),
		"vehicles": api.Catalog.Vehicles,
	})
}

// GetServices услуги по категориям
func (api *CatalogAPI) GetServices(c *gin.Context) {
	respondData(c, http.StatusOK, api.Catalog.Services)
}

// GetItems элементы справочника автозаполнения
func (api *CatalogAPI) GetItems(c *gin.Context) {
	source := models.AutoFillSource(c.Param("source"))
	if !source.Valid() {
		respondError(c, models.ErrInvalidAutoFill)
		return
	}
	items := api.Catalog.Items(source)
	if items == nil {
		items = []string{}
	}
	respondData(c, http.StatusOK, gin.H{
		"source": source,
		"items":  items,
	})
}

// FieldType элемент палитры редактора
type FieldType struct {
	Type         models.FieldKind `json:"type"`
	DefaultLabel string           `json:"default_label"`
	HasOptions   bool             `json:"has_options"`
	Priced       bool             `json:"priced"`
}

// GetFieldTypes типы полей в порядке палитры редактора
func (api *CatalogAPI) GetFieldTypes(c *gin.Context) {
	kinds := models.AllFieldKinds()
	types := make([]FieldType, 0, len(kinds))
	for _, k := range kinds {
		types = append(types, FieldType{
			Type:         k,
			DefaultLabel: k.DefaultLabel(),
			HasOptions:   k.SupportsOptions(),
			Priced:       k.IsPriced(),
		})
	}
	respondData(c, http.StatusOK, types)
}
