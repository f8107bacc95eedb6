package api

import (
	"net/http"

	"checkmaster/models"
	"checkmaster/services"

	"github.com/gin-gonic/gin"
)

// TemplateDraftsAPI редактор шаблонов: черновики и их изменение
type TemplateDraftsAPI struct {
	Editor *services.TemplateEditorService
}

// NewTemplateDraftsAPI создает новый экземпляр TemplateDraftsAPI
func NewTemplateDraftsAPI(editor *services.TemplateEditorService) *TemplateDraftsAPI {
	return &TemplateDraftsAPI{Editor: editor}
}

// OpenDraftRequest открытие черновика; пустой template_id - новый шаблон
type OpenDraftRequest struct {
	TemplateID string `json:"template_id"`
}

// AddFieldRequest добавление поля
type AddFieldRequest struct {
	Type models.FieldKind `json:"type" binding:"required"`
}

// MoveFieldRequest перенос поля на позицию
type MoveFieldRequest struct {
	To *int `json:"to" binding:"required"`
}

// DragRequest шаг перетаскивания: start, over или end
type DragRequest struct {
	Action string `json:"action" binding:"required,oneof=start over end"`
	Index  int    `json:"index"`
}

// AutoFillRequest выбор справочника поля
type AutoFillRequest struct {
	Source models.AutoFillSource `json:"source"`
}

// ToggleItemRequest элемент справочника
type ToggleItemRequest struct {
	Label string `json:"label" binding:"required"`
}

// RegisterTemplateDraftsRoutes регистрирует маршруты редактора шаблонов
func (api *TemplateDraftsAPI) RegisterTemplateDraftsRoutes(r *gin.RouterGroup) {
	drafts := r.Group("/template-drafts")
	{
		drafts.POST("", api.OpenDraft)
		drafts.GET("/:id", api.GetDraft)
		drafts.PUT("/:id", api.UpdateHeader)
		drafts.DELETE("/:id", api.DiscardDraft)
		drafts.POST("/:id/save", api.SaveDraft)
		drafts.POST("/:id/drag", api.Drag)

		drafts.POST("/:id/fields", api.AddField)
		drafts.PATCH("/:id/fields/:field_id", api.UpdateField)
		drafts.DELETE("/:id/fields/:field_id", api.RemoveField)
		drafts.POST("/:id/fields/:field_id/move", api.MoveField)
		drafts.PUT("/:id/fields/:field_id/autofill", api.SetAutoFill)
		drafts.POST("/:id/fields/:field_id/catalog/toggle", api.ToggleCatalogItem)
		drafts.POST("/:id/fields/:field_id/catalog/select-all", api.SelectAll)

		drafts.POST("/:id/fields/:field_id/options", api.AddOption)
		drafts.DELETE("/:id/fields/:field_id/options", api.ClearOptions)
		drafts.PATCH("/:id/fields/:field_id/options/:option_id", api.UpdateOption)
		drafts.DELETE("/:id/fields/:field_id/options/:option_id", api.RemoveOption)
	}
}

// apply выполняет изменение черновика и отвечает его снимком
func (api *TemplateDraftsAPI) apply(c *gin.Context, status int, fn func(d *services.TemplateDraft) error) {
	draft, err := api.Editor.Apply(c.Param("id"), fn)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, status, draft)
}

func (api *TemplateDraftsAPI) OpenDraft(c *gin.Context) {
	var req OpenDraftRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}
	}

	draft, err := api.Editor.Open(c.Request.Context(), req.TemplateID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, draft)
}

func (api *TemplateDraftsAPI) GetDraft(c *gin.Context) {
	draft, err := api.Editor.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, draft)
}

// UpdateHeader меняет название и флаг блока данных ТС
func (api *TemplateDraftsAPI) UpdateHeader(c *gin.Context) {
	var req services.DraftHeader
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	api.apply(c, http.StatusOK, func(d *services.TemplateDraft) error {
		req.Apply(d)
		return nil
	})
}

func (api *TemplateDraftsAPI) DiscardDraft(c *gin.Context) {
	if err := api.Editor.Discard(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Черновик удален",
	})
}

// SaveDraft сохраняет черновик как шаблон и закрывает его
func (api *TemplateDraftsAPI) SaveDraft(c *gin.Context) {
	template, err := api.Editor.Save(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, template)
}

func (api *TemplateDraftsAPI) Drag(c *gin.Context) {
	var req DragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	api.apply(c, http.StatusOK, func(d *services.TemplateDraft) error {
		switch req.Action {
		case "start":
			return d.BeginDrag(req.Index)
		case "over":
			return d.DragOver(req.Index)
		default:
			d.EndDrag()
			return nil
		}
	})
}

func (api *TemplateDraftsAPI) AddField(c *gin.Context) {
	var req AddFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	api.apply(c, http.StatusCreated, func(d *services.TemplateDraft) error {
		_, err := d.AddField(req.Type)
		return err
	})
}

func (api *TemplateDraftsAPI) UpdateField(c *gin.Context) {
	var req services.FieldPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	api.apply(c, http.StatusOK, func(d *services.TemplateDraft) error {
		return d.UpdateField(c.Param("field_id"), req)
	})
}

func (api *TemplateDraftsAPI) RemoveField(c *gin.Context) {
	api.apply(c, http.StatusOK, func(d *services.TemplateDraft) error {
		return d.RemoveField(c.Param("field_id"))
	})
}

func (api *TemplateDraftsAPI) MoveField(c *gin.Context) {
	var req MoveFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	api.apply(c, http.StatusOK, func(d *services.TemplateDraft) error {
		return d.MoveFieldTo(c.Param("field_id"), *req.To)
	})
}

func (api *TemplateDraftsAPI) SetAutoFill(c *gin.Context) {
	var req AutoFillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	api.apply(c, http.StatusOK, func(d *services.TemplateDraft) error {
		return d.SetAutoFill(c.Param("field_id"), req.Source)
	})
}

// ToggleCatalogItem добавляет или удаляет элемент справочника
func (api *TemplateDraftsAPI) ToggleCatalogItem(c *gin.Context) {
	var req ToggleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	var added bool
	draft, err := api.Editor.Apply(c.Param("id"), func(d *services.TemplateDraft) error {
		var err error
		added, err = d.ToggleCatalogItem(c.Param("field_id"), req.Label)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   draft,
		"added":  added,
	})
}

func (api *TemplateDraftsAPI) SelectAll(c *gin.Context) {
	draft, err := api.Editor.SelectAll(c.Param("id"), c.Param("field_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, draft)
}

func (api *TemplateDraftsAPI) AddOption(c *gin.Context) {
	api.apply(c, http.StatusCreated, func(d *services.TemplateDraft) error {
		_, err := d.AddOption(c.Param("field_id"))
		return err
	})
}

func (api *TemplateDraftsAPI) ClearOptions(c *gin.Context) {
	api.apply(c, http.StatusOK, func(d *services.TemplateDraft) error {
		return d.ClearOptions(c.Param("field_id"))
	})
}

func (api *TemplateDraftsAPI) UpdateOption(c *gin.Context) {
	var req services.OptionPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	api.apply(c, http.StatusOK, func(d *services.TemplateDraft) error {
		return d.UpdateOption(c.Param("field_id"), c.Param("option_id"), req)
	})
}

func (api *TemplateDraftsAPI) RemoveOption(c *gin.Context) {
	api.apply(c, http.StatusOK, func(d *services.TemplateDraft) error {
		return d.RemoveOption(c.Param("field_id"), c.Param("option_id"))
	})
}
