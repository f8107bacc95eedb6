package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CopySuffix добавляется к названию дубликата шаблона
const CopySuffix = " (Cópia)"

// Template шаблон чек-листа: упорядоченный набор определений полей
type Template struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	CompanyID          string    `json:"company_id"`
	IsFavorite         bool      `json:"is_favorite"`
	IncludeVehicleInfo bool      `json:"include_vehicle_info"`
	Fields             []Field   `json:"fields"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// UnmarshalJSON считает блок данных ТС включенным, если ключ
// include_vehicle_info отсутствует
func (t *Template) UnmarshalJSON(data []byte) error {
	type plain Template
	if err := json.Unmarshal(data, (*plain)(t)); err != nil {
		return err
	}
	var flag struct {
		IncludeVehicleInfo *bool `json:"include_vehicle_info"`
	}
	if err := json.Unmarshal(data, &flag); err != nil {
		return err
	}
	t.IncludeVehicleInfo = flag.IncludeVehicleInfo == nil || *flag.IncludeVehicleInfo
	return nil
}

// Validate проверяет название, типы полей и уникальность идентификаторов
func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrTemplateNameRequired
	}
	seen := make(map[string]struct{}, len(t.Fields))
	for _, f := range t.Fields {
		if !f.Kind.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidFieldKind, f.Kind)
		}
		if !f.AutoFill.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidAutoFill, f.AutoFill)
		}
		if _, dup := seen[f.ID]; dup || f.ID == "" {
			return fmt.Errorf("%w: %q", ErrDuplicateFieldID, f.ID)
		}
		seen[f.ID] = struct{}{}
	}
	return nil
}

// FindField ищет поле по идентификатору
func (t *Template) FindField(id string) (*Field, bool) {
	for i := range t.Fields {
		if t.Fields[i].ID == id {
			return &t.Fields[i], true
		}
	}
	return nil, false
}

// Normalize приводит определения полей к виду хранения: опции всегда есть,
// значения не хранятся, пустой источник автозаполнения равен NONE
func (t *Template) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	if t.Fields == nil {
		t.Fields = []Field{}
	}
	for i := range t.Fields {
		f := t.Fields[i].Clone()
		f.Value = nil
		if f.AutoFill == "" {
			f.AutoFill = AutoFillNone
		}
		t.Fields[i] = f
	}
}

// Clone глубокая копия шаблона
func (t Template) Clone() Template {
	c := t
	c.Fields = make([]Field, len(t.Fields))
	for i, f := range t.Fields {
		c.Fields[i] = f.Clone()
	}
	return c
}

// Duplicate копия шаблона с новыми идентификаторами шаблона, полей и опций.
// Копия не избранная, к названию добавляется суффикс.
func (t Template) Duplicate() Template {
	c := t.Clone()
	c.ID = NewID()
	c.Name = t.Name + CopySuffix
	c.IsFavorite = false
	for i := range c.Fields {
		c.Fields[i].ID = NewID()
		for j := range c.Fields[i].Options {
			c.Fields[i].Options[j].ID = NewID()
		}
	}
	return c
}

// Instantiate поля шаблона с пустыми начальными значениями для заполнения
func (t *Template) Instantiate() []Field {
	fields := make([]Field, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = f.Instantiate()
	}
	return fields
}

func booleanItems(count int) []Field {
	fields := make([]Field, count)
	for i := range fields {
		fields[i] = Field{
			ID:       NewID(),
			Label:    fmt.Sprintf("Item de Verificação %d", i+1),
			Kind:     FieldBoolean,
			Required: true,
			AutoFill: AutoFillNone,
			Options:  []Option{},
		}
	}
	return fields
}

// DefaultTemplates стартовый набор шаблонов для пустого хранилища
func DefaultTemplates(companyID string) []Template {
	field := func(id, label string, kind FieldKind, required bool) Field {
		return Field{ID: id, Label: label, Kind: kind, Required: required, AutoFill: AutoFillNone, Options: []Option{}}
	}
	return []Template{
		{
			ID: "v4-template", Name: "V4", CompanyID: companyID, IsFavorite: true, IncludeVehicleInfo: true,
			Fields: []Field{
				field("f1", "Checklist de Entrada V4", FieldBoolean, true),
				field("f2", "Fotos do Perímetro", FieldPhoto, false),
			},
		},
		{
			ID: "sas-template", Name: "SAS", CompanyID: companyID, IncludeVehicleInfo: true,
			Fields: []Field{
				field("s1", "Vistoria Padrão SAS", FieldBoolean, true),
				field("s2", "Leitura de Placa", FieldPlateScan, true),
			},
		},
		{
			ID: "1", Name: "Instalação Rastreador Pro", CompanyID: companyID, IsFavorite: true, IncludeVehicleInfo: true,
			Fields: []Field{
				field("f1", "Placa do Veículo", FieldPlateScan, true),
				field("f2", "Teste de Ignição", FieldBoolean, true),
				field("f3", "Posicionamento GPS", FieldBoolean, true),
				field("f4", "Fotos da Instalação", FieldPhoto, false),
			},
		},
		{
			ID: "2", Name: "Manutenção Corretiva", CompanyID: companyID, IncludeVehicleInfo: true,
			Fields: booleanItems(6),
		},
	}
}
