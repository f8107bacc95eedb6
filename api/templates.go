package api

import (
	"net/http"

	"checkmaster/models"
	"checkmaster/services"

	"github.com/gin-gonic/gin"
)

// TemplatesAPI управление шаблонами чек-листов
type TemplatesAPI struct {
	Templates *services.TemplateService
}

// NewTemplatesAPI создает новый экземпляр TemplatesAPI
func NewTemplatesAPI(templates *services.TemplateService) *TemplatesAPI {
	return &TemplatesAPI{Templates: templates}
}

// RegisterTemplatesRoutes регистрирует маршруты для работы с шаблонами
func (api *TemplatesAPI) RegisterTemplatesRoutes(r *gin.RouterGroup) {
	templates := r.Group("/templates")
	{
		templates.GET("", api.GetTemplates)
		templates.GET("/:id", api.GetTemplate)
		templates.POST("", api.CreateTemplate)
		templates.PUT("/:id", api.UpdateTemplate)
		templates.DELETE("/:id", api.DeleteTemplate)
		templates.POST("/:id/duplicate", api.DuplicateTemplate)
		templates.PUT("/:id/favorite", api.ToggleFavorite)
	}
}

// GetTemplates список шаблонов; ?favorites=true только избранные
func (api *TemplatesAPI) GetTemplates(c *gin.Context) {
	var (
		templates []models.Template
		err       error
	)
	if c.Query("favorites") == "true" {
		templates, err = api.Templates.Favorites(c.Request.Context())
	} else {
		templates, err = api.Templates.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, templates)
}

func (api *TemplatesAPI) GetTemplate(c *gin.Context) {
	template, err := api.Templates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, template)
}

// CreateTemplate сохраняет шаблон целиком
func (api *TemplatesAPI) CreateTemplate(c *gin.Context) {
	var req models.Template
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	req.ID = ""

	template, err := api.Templates.Save(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, template)
}

// UpdateTemplate заменяет шаблон с идентификатором из пути
func (api *TemplatesAPI) UpdateTemplate(c *gin.Context) {
	id := c.Param("id")
	if _, err := api.Templates.Get(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	var req models.Template
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	req.ID = id

	template, err := api.Templates.Save(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, template)
}

func (api *TemplatesAPI) DeleteTemplate(c *gin.Context) {
	if err := api.Templates.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Шаблон удален",
	})
}

func (api *TemplatesAPI) DuplicateTemplate(c *gin.Context) {
	template, err := api.Templates.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, template)
}

func (api *TemplatesAPI) ToggleFavorite(c *gin.Context) {
	template, err := api.Templates.ToggleFavorite(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, template)
}
