package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"checkmaster/models"

	"github.com/gin-gonic/gin"
)

var notFoundErrors = []error{
	models.ErrTemplateNotFound,
	models.ErrInspectionNotFound,
	models.ErrFieldNotFound,
	models.ErrOptionNotFound,
	models.ErrDraftNotFound,
}

var badRequestErrors = []error{
	models.ErrTemplateNameRequired,
	models.ErrInvalidFieldKind,
	models.ErrInvalidAutoFill,
	models.ErrOptionsNotSupported,
	models.ErrValueKindMismatch,
	models.ErrDuplicateFieldID,
	models.ErrInvalidPosition,
	models.ErrScanNotSupported,
	models.ErrCompanyNameRequired,
	models.ErrInvalidPaymentMethod,
	models.ErrInvalidVehicleType,
	models.ErrUnsupportedExport,
}

func isOneOf(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondError отвечает ошибкой с кодом, соответствующим ее виду
func respondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status":   "error",
			"error":    verr.Message,
			"field_id": verr.FieldID,
		})
	case isOneOf(err, notFoundErrors):
		c.JSON(http.StatusNotFound, gin.H{
			"status": "error",
			"error":  err.Error(),
		})
	case isOneOf(err, badRequestErrors):
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  err.Error(),
		})
	case errors.Is(err, models.ErrExecutionClosed):
		c.JSON(http.StatusConflict, gin.H{
			"status": "error",
			"error":  err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Внутренняя ошибка: " + err.Error(),
		})
	}
}

// respondBadRequest ответ на некорректное тело запроса
func respondBadRequest(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"status": "error",
			"error":  fmt.Sprintf("Тело запроса больше %d байт", tooLarge.Limit),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"status": "error",
		"error":  "Неверные данные: " + err.Error(),
	})
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"status": "success",
		"data":   data,
	})
}

// imageRequest изображение в теле JSON запроса
type imageRequest struct {
	Image string `json:"image" binding:"required"`
}

// readImage читает изображение из multipart поля "image" или из JSON
// с base64 строкой (допускается префикс data URL)
func readImage(c *gin.Context, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	// base64 раздувает данные на треть, запас на data URL и обертку
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize*4/3+1024)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("image")
		if err != nil {
			return nil, fmt.Errorf("поле image не найдено: %w", err)
		}
		if header.Size > maxSize {
			return nil, fmt.Errorf("изображение больше %d байт", maxSize)
		}
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(io.LimitReader(file, maxSize))
	}

	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	encoded := req.Image
	if idx := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:") && idx >= 0 {
		encoded = encoded[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("некорректный base64: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("изображение больше %d байт", maxSize)
	}
	return data, nil
}
