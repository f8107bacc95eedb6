package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod способ оплаты услуги
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "Dinheiro"
	PaymentCard     PaymentMethod = "Cartão"
	PaymentPix      PaymentMethod = "PIX"
	PaymentInvoiced PaymentMethod = "Faturado"
)

// Valid проверяет способ оплаты
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentPix, PaymentInvoiced:
		return true
	}
	return false
}

// InspectionStatus статус инспекции
type InspectionStatus string

const (
	InspectionPending   InspectionStatus = "Pendente"
	InspectionCompleted InspectionStatus = "Concluída"
)

// DefaultClientName имя клиента, если оно не указано
const DefaultClientName = "Consumidor Final"

// Inspection выполненная проверка ТС по шаблону. Поля являются снимком
// шаблона на момент заполнения и не зависят от его последующих изменений.
type Inspection struct {
	ID             string           `json:"id"`
	TemplateID     string           `json:"template_id"`
	TemplateName   string           `json:"template_name"`
	Date           time.Time        `json:"date"`
	CompanyID      string           `json:"company_id"`
	CompanyName    string           `json:"company_name"`
	ClientID       string           `json:"client_id"`
	ClientName     string           `json:"client_name"`
	ProfessionalID string           `json:"professional_id,omitempty"`
	VehicleType    VehicleCategory  `json:"vehicle_type"`
	Brand          string           `json:"brand"`
	Model          string           `json:"model"`
	Plate          string           `json:"plate"`
	IMEI           string           `json:"imei,omitempty"`
	Fields         []Field          `json:"fields"`
	TotalValue     decimal.Decimal  `json:"total_value"`
	PaymentMethod  PaymentMethod    `json:"payment_method"`
	Status         InspectionStatus `json:"status"`
}

// Recalculate пересчитывает итоговую сумму по полям
func (i *Inspection) Recalculate() {
	i.TotalValue = ComputeTotal(i.Fields)
}

// NormalizedCompany название компании для группировки в отчетах
func (i *Inspection) NormalizedCompany() string {
	return NormalizeCompanyName(i.CompanyName)
}

// Matches проверяет вхождение строки поиска без учета регистра
func (i *Inspection) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, s := range []string{i.CompanyName, i.ClientName, i.Plate, i.Brand, i.Model} {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

// Clone глубокая копия инспекции
func (i Inspection) Clone() Inspection {
	c := i
	c.Fields = make([]Field, len(i.Fields))
	for idx, f := range i.Fields {
		c.Fields[idx] = f.Clone()
	}
	return c
}
