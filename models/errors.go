package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrTemplateNotFound     = errors.New("шаблон не найден")
	ErrInspectionNotFound   = errors.New("инспекция не найдена")
	ErrFieldNotFound        = errors.New("поле не найдено")
	ErrOptionNotFound       = errors.New("опция не найдена")
	ErrDraftNotFound        = errors.New("черновик не найден")
	ErrTemplateNameRequired = errors.New("название шаблона обязательно")
	ErrInvalidFieldKind     = errors.New("неизвестный тип поля")
	ErrInvalidAutoFill      = errors.New("неизвестный источник автозаполнения")
	ErrOptionsNotSupported  = errors.New("тип поля не поддерживает опции")
	ErrValueKindMismatch    = errors.New("значение не соответствует типу поля")
	ErrDuplicateFieldID     = errors.New("идентификатор поля не уникален")
	ErrCorruptCollection    = errors.New("повреждены данные коллекции")
	ErrExecutionClosed      = errors.New("заполнение уже завершено")
	ErrInvalidPosition      = errors.New("недопустимая позиция поля")
	ErrScanNotSupported     = errors.New("поле не поддерживает сканирование")
	ErrCompanyNameRequired  = errors.New("название компании обязательно")
	ErrInvalidPaymentMethod = errors.New("неизвестный способ оплаты")
	ErrInvalidVehicleType   = errors.New("неизвестная категория ТС")
	ErrUnsupportedExport    = errors.New("неподдерживаемый формат экспорта")
)

// ValidationError единственная блокирующая ошибка проверки формы.
// FieldID указывает на поле, к которому нужно вернуть пользователя.
type ValidationError struct {
	FieldID string `json:"field_id"`
	Label   string `json:"label"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PlateFieldID псевдо-идентификатор поля номера в блоке данных ТС
const PlateFieldID = "plate"

// NewRequiredFieldError строит ошибку незаполненного обязательного поля
func NewRequiredFieldError(f Field) *ValidationError {
	return &ValidationError{
		FieldID: f.ID,
		Label:   f.Label,
		Message: fmt.Sprintf("O campo \"%s\" é obrigatório.", f.Label),
	}
}

// NewPlateRequiredError строит ошибку отсутствующего номера ТС
func NewPlateRequiredError() *ValidationError {
	return &ValidationError{
		FieldID: PlateFieldID,
		Label:   "Placa",
		Message: "A placa do veículo é obrigatória.",
	}
}

// NewID генерирует новый идентификатор записи
var NewID = func() string {
	return uuid.NewString()
}
