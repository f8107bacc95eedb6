package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldKind тип поля чек-листа
type FieldKind string

const (
	FieldSelectSimple FieldKind = "SELECT_SIMPLE"
	FieldSelectPrice  FieldKind = "SELECT_PRICE"
	FieldMultiSelect  FieldKind = "MULTI_SELECT"
	FieldBoolean      FieldKind = "BOOLEAN"
	FieldText         FieldKind = "TEXT"
	FieldNumber       FieldKind = "NUMBER"
	FieldDate         FieldKind = "DATE"
	FieldPhoto        FieldKind = "PHOTO"
	FieldPlateScan    FieldKind = "AI_PLATE"
	FieldVehicleScan  FieldKind = "AI_VEHICLE"
	FieldImeiScan     FieldKind = "AI_IMEI"
	FieldManualPrice  FieldKind = "MANUAL_PRICE"
)

// AllFieldKinds возвращает типы полей в порядке палитры редактора
func AllFieldKinds() []FieldKind {
	return []FieldKind{
		FieldSelectSimple, FieldSelectPrice, FieldMultiSelect, FieldVehicleScan,
		FieldPlateScan, FieldPhoto, FieldDate, FieldBoolean, FieldText,
		FieldNumber, FieldImeiScan, FieldManualPrice,
	}
}

var fieldKindLabels = map[FieldKind]string{
	FieldSelectSimple: "SELEÇÃO SIMPLES",
	FieldSelectPrice:  "SELEÇÃO (+ PREÇO)",
	FieldMultiSelect:  "MÚLTIPLA (+ PREÇO)",
	FieldVehicleScan:  "VEÍCULO",
	FieldPlateScan:    "PLACA (SCANNER)",
	FieldPhoto:        "FOTO",
	FieldDate:         "DATA/HORA",
	FieldBoolean:      "OK / FALHA",
	FieldText:         "TEXTO",
	FieldNumber:       "NÚMERO",
	FieldImeiScan:     "IMEI (IA)",
	FieldManualPrice:  "PREÇO MANUAL",
}

// Valid проверяет, что тип поля известен
func (k FieldKind) Valid() bool {
	_, ok := fieldKindLabels[k]
	return ok
}

// DefaultLabel подпись нового поля в редакторе
func (k FieldKind) DefaultLabel() string {
	return fieldKindLabels[k]
}

// SupportsOptions true для типов со списком опций
func (k FieldKind) SupportsOptions() bool {
	return k == FieldSelectSimple || k == FieldSelectPrice || k == FieldMultiSelect
}

// IsPriced true для типов, влияющих на итоговую сумму
func (k FieldKind) IsPriced() bool {
	return k == FieldSelectPrice || k == FieldMultiSelect || k == FieldManualPrice
}

// IsScan true для полей, заполняемых распознаванием изображения
func (k FieldKind) IsScan() bool {
	return k == FieldPlateScan || k == FieldVehicleScan || k == FieldImeiScan
}

// IsTextual true для типов, значение которых хранится строкой
func (k FieldKind) IsTextual() bool {
	switch k {
	case FieldText, FieldNumber, FieldDate, FieldManualPrice,
		FieldPlateScan, FieldVehicleScan, FieldImeiScan:
		return true
	}
	return false
}

// AutoFillSource справочник для массового заполнения опций
type AutoFillSource string

const (
	AutoFillNone         AutoFillSource = "NONE"
	AutoFillVehicleTypes AutoFillSource = "TIPOS"
	AutoFillCarModels    AutoFillSource = "CARROS"
	AutoFillBrands       AutoFillSource = "MARCAS"
	AutoFillServices     AutoFillSource = "SERVIÇOS"
)

// Valid проверяет источник автозаполнения; пустая строка равна NONE
func (s AutoFillSource) Valid() bool {
	switch s {
	case "", AutoFillNone, AutoFillVehicleTypes, AutoFillCarModels, AutoFillBrands, AutoFillServices:
		return true
	}
	return false
}

// Option выбираемый вариант поля с необязательной ценой
type Option struct {
	ID    string          `json:"id"`
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

// Field поле чек-листа. В шаблоне Value пустое, в инспекции хранит ответ.
type Field struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Kind     FieldKind      `json:"type"`
	Required bool           `json:"required"`
	AutoFill AutoFillSource `json:"auto_fill,omitempty"`
	Options  []Option       `json:"options"`
	Value    FieldValue     `json:"value,omitempty"`

	// rawValue исходное значение поля неизвестного типа
	rawValue json.RawMessage
}

type fieldJSON struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Kind     FieldKind       `json:"type"`
	Required bool            `json:"required"`
	AutoFill AutoFillSource  `json:"auto_fill,omitempty"`
	Options  []Option        `json:"options"`
	Value    json.RawMessage `json:"value,omitempty"`
}

func (f Field) MarshalJSON() ([]byte, error) {
	out := fieldJSON{
		ID:       f.ID,
		Label:    f.Label,
		Kind:     f.Kind,
		Required: f.Required,
		AutoFill: f.AutoFill,
		Options:  f.Options,
	}
	if out.Options == nil {
		out.Options = []Option{}
	}
	if !f.Kind.Valid() && len(f.rawValue) > 0 {
		out.Value = f.rawValue
	} else if f.Value != nil {
		raw, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		out.Value = raw
	}
	return json.Marshal(out)
}

func (f *Field) UnmarshalJSON(data []byte) error {
	var in fieldJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*f = Field{
		ID:       in.ID,
		Label:    in.Label,
		Kind:     in.Kind,
		Required: in.Required,
		AutoFill: in.AutoFill,
		Options:  in.Options,
	}
	if f.Options == nil {
		f.Options = []Option{}
	}
	// Поле неизвестного типа сохраняется как есть и не влияет на сумму
	if !in.Kind.Valid() {
		if len(in.Value) > 0 {
			f.rawValue = append(json.RawMessage(nil), in.Value...)
		}
		return nil
	}
	if len(in.Value) > 0 {
		v, err := DecodeValue(in.Kind, in.Value)
		if err != nil {
			return err
		}
		f.Value = v
	}
	return nil
}

// FindOption ищет опцию по идентификатору
func (f *Field) FindOption(id string) (*Option, bool) {
	for i := range f.Options {
		if f.Options[i].ID == id {
			return &f.Options[i], true
		}
	}
	return nil, false
}

// HasOptionLabel проверяет наличие опции с подписью
func (f *Field) HasOptionLabel(label string) bool {
	for _, o := range f.Options {
		if o.Label == label {
			return true
		}
	}
	return false
}

// SetValue устанавливает ответ, проверяя соответствие типу поля
func (f *Field) SetValue(v FieldValue) error {
	if v == nil {
		f.Value = EmptyValue(f.Kind)
		return nil
	}
	if !f.Kind.Accepts(v) {
		return fmt.Errorf("%w: %s не принимает %T", ErrValueKindMismatch, f.Kind, v)
	}
	f.Value = v
	return nil
}

// Instantiate копия определения поля с пустым начальным значением
func (f Field) Instantiate() Field {
	inst := f.Clone()
	inst.Value = EmptyValue(f.Kind)
	return inst
}

// Clone глубокая копия поля вместе с опциями и значением
func (f Field) Clone() Field {
	c := f
	c.Options = make([]Option, len(f.Options))
	copy(c.Options, f.Options)
	switch v := f.Value.(type) {
	case ChoicesValue:
		c.Value = append(ChoicesValue{}, v...)
	case PhotoValue:
		c.Value = append(PhotoValue{}, v...)
	}
	return c
}

// Satisfied проверяет, заполнено ли поле в смысле обязательности
func (f *Field) Satisfied() bool {
	switch v := f.Value.(type) {
	case BoolValue:
		_, ok := v.Get()
		return ok
	case TextValue:
		return strings.TrimSpace(string(v)) != ""
	case ChoiceValue:
		if v == "" {
			return false
		}
		_, ok := f.FindOption(string(v))
		return ok
	case ChoicesValue:
		if len(v) == 0 {
			return false
		}
		for _, id := range v {
			if _, ok := f.FindOption(id); !ok {
				return false
			}
		}
		return true
	case PhotoValue:
		return len(v) > 0
	default:
		return false
	}
}

// Contribution вклад поля в итоговую сумму инспекции
func (f *Field) Contribution() decimal.Decimal {
	switch f.Kind {
	case FieldSelectPrice:
		id, ok := f.Value.(ChoiceValue)
		if !ok || id == "" {
			return decimal.Zero
		}
		if opt, found := f.FindOption(string(id)); found {
			return opt.Price
		}
		return decimal.Zero
	case FieldMultiSelect:
		ids, ok := f.Value.(ChoicesValue)
		if !ok {
			return decimal.Zero
		}
		sum := decimal.Zero
		for _, id := range ids {
			if opt, found := f.FindOption(id); found {
				sum = sum.Add(opt.Price)
			}
		}
		return sum
	case FieldManualPrice:
		text, ok := f.Value.(TextValue)
		if !ok {
			return decimal.Zero
		}
		amount, _ := ParseAmount(string(text))
		return amount
	default:
		return decimal.Zero
	}
}

// ParseAmount разбирает денежный текст. Понимает формат pt-BR: префикс R$,
// точки как разделители тысяч и запятую как десятичный разделитель.
// Неразборчивый текст дает ноль и false.
func ParseAmount(text string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "R$"))
	if s == "" {
		return decimal.Zero, false
	}
	comma := strings.LastIndex(s, ",")
	switch {
	case comma >= 0 && comma > strings.LastIndex(s, "."):
		// 1.234,56
		s = strings.ReplaceAll(s[:comma], ".", "") + "." + s[comma+1:]
	case comma >= 0:
		// 1,234.56
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ComputeTotal сумма вкладов всех полей
func ComputeTotal(fields []Field) decimal.Decimal {
	total := decimal.Zero
	for i := range fields {
		total = total.Add(fields[i].Contribution())
	}
	return total
}
