package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"checkmaster/services"

	"github.com/gin-gonic/gin"
)

// ExecutionsAPI заполнение шаблонов и распознавание фото
type ExecutionsAPI struct {
	Executor      *services.ExecutorService
	MaxUploadSize int64
	// ScanLimiter применяется к маршрутам распознавания, может быть nil
	ScanLimiter gin.HandlerFunc
}

// NewExecutionsAPI создает новый экземпляр ExecutionsAPI
func NewExecutionsAPI(executor *services.ExecutorService, maxUploadSize int64, scanLimiter gin.HandlerFunc) *ExecutionsAPI {
	return &ExecutionsAPI{
		Executor:      executor,
		MaxUploadSize: maxUploadSize,
		ScanLimiter:   scanLimiter,
	}
}

// StartExecutionRequest новое заполнение по шаблону или открытие инспекции
type StartExecutionRequest struct {
	TemplateID   string `json:"template_id"`
	InspectionID string `json:"inspection_id"`
}

// FieldValueRequest ответ поля; формат value зависит от типа поля
type FieldValueRequest struct {
	Value json.RawMessage `json:"value"`
}

// RegisterExecutionsRoutes регистрирует маршруты заполнения
func (api *ExecutionsAPI) RegisterExecutionsRoutes(r *gin.RouterGroup) {
	scan := []gin.HandlerFunc{}
	if api.ScanLimiter != nil {
		scan = append(scan, api.ScanLimiter)
	}

	executions := r.Group("/executions")
	{
		executions.POST("", api.StartExecution)
		executions.GET("/:id", api.GetExecution)
		executions.DELETE("/:id", api.DiscardExecution)
		executions.PUT("/:id/vehicle", api.UpdateVehicle)
		executions.PUT("/:id/fields/:field_id", api.SetFieldValue)
		executions.POST("/:id/scan", append(scan, api.ScanVehicle)...)
		executions.POST("/:id/fields/:field_id/scan", append(scan, api.ScanField)...)
		executions.POST("/:id/finish", api.FinishExecution)
	}
}

func (api *ExecutionsAPI) StartExecution(c *gin.Context) {
	var req StartExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	var (
		execution *services.Execution
		err       error
	)
	switch {
	case req.InspectionID != "":
		execution, err = api.Executor.Open(c.Request.Context(), req.InspectionID)
	case req.TemplateID != "":
		execution, err = api.Executor.Start(c.Request.Context(), req.TemplateID)
	default:
		respondBadRequest(c, errors.New("требуется template_id или inspection_id"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, execution.State())
}

// withExecution находит заполнение по :id
func (api *ExecutionsAPI) withExecution(c *gin.Context, fn func(e *services.Execution)) {
	execution, err := api.Executor.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	fn(execution)
}

func (api *ExecutionsAPI) GetExecution(c *gin.Context) {
	api.withExecution(c, func(e *services.Execution) {
		respondData(c, http.StatusOK, e.State())
	})
}

func (api *ExecutionsAPI) DiscardExecution(c *gin.Context) {
	if err := api.Executor.Discard(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Заполнение отменено",
	})
}

func (api *ExecutionsAPI) UpdateVehicle(c *gin.Context) {
	var req services.VehiclePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	api.withExecution(c, func(e *services.Execution) {
		if err := e.UpdateVehicle(req); err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, e.State())
	})
}

func (api *ExecutionsAPI) SetFieldValue(c *gin.Context) {
	var req FieldValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	api.withExecution(c, func(e *services.Execution) {
		if err := e.SetFieldRaw(c.Param("field_id"), req.Value); err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, e.State())
	})
}

// ScanVehicle запускает распознавание номера, марки и модели по фото.
// Результат появляется в состоянии заполнения после завершения.
func (api *ExecutionsAPI) ScanVehicle(c *gin.Context) {
	api.withExecution(c, func(e *services.Execution) {
		image, err := readImage(c, api.MaxUploadSize)
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		if err := e.Scan(image); err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusAccepted, e.State())
	})
}

func (api *ExecutionsAPI) ScanField(c *gin.Context) {
	api.withExecution(c, func(e *services.Execution) {
		image, err := readImage(c, api.MaxUploadSize)
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		if err := e.ScanField(c.Param("field_id"), image); err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusAccepted, e.State())
	})
}

// FinishExecution проверяет форму и сохраняет инспекцию
func (api *ExecutionsAPI) FinishExecution(c *gin.Context) {
	inspection, err := api.Executor.Finish(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, inspection)
}
