package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"checkmaster/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NewOptionLabel подпись опции, добавленной вручную
const NewOptionLabel = "Nova Opção"

// TemplateDraft черновик шаблона в редакторе
type TemplateDraft struct {
	ID                 string         `json:"id"`
	TemplateID         string         `json:"template_id,omitempty"`
	Name               string         `json:"name"`
	IncludeVehicleInfo bool           `json:"include_vehicle_info"`
	Fields             []models.Field `json:"fields"`
	DragIndex          *int           `json:"drag_index"`
}

// FieldPatch изменяемые атрибуты поля; nil означает "не менять"
type FieldPatch struct {
	Label    *string `json:"label"`
	Required *bool   `json:"required"`
}

// OptionPatch изменяемые атрибуты опции
type OptionPatch struct {
	Label *string          `json:"label"`
	Price *decimal.Decimal `json:"price"`
}

func (d *TemplateDraft) clone() TemplateDraft {
	c := *d
	c.Fields = make([]models.Field, len(d.Fields))
	for i, f := range d.Fields {
		c.Fields[i] = f.Clone()
	}
	if d.DragIndex != nil {
		idx := *d.DragIndex
		c.DragIndex = &idx
	}
	return c
}

func (d *TemplateDraft) fieldIndex(id string) (int, error) {
	for i := range d.Fields {
		if d.Fields[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", models.ErrFieldNotFound, id)
}

func (d *TemplateDraft) field(id string) (*models.Field, error) {
	idx, err := d.fieldIndex(id)
	if err != nil {
		return nil, err
	}
	return &d.Fields[idx], nil
}

func (d *TemplateDraft) optionsField(id string) (*models.Field, error) {
	f, err := d.field(id)
	if err != nil {
		return nil, err
	}
	if !f.Kind.SupportsOptions() {
		return nil, fmt.Errorf("%w: %s", models.ErrOptionsNotSupported, f.Kind)
	}
	return f, nil
}

// AddField добавляет в конец поле выбранного типа с подписью по умолчанию
func (d *TemplateDraft) AddField(kind models.FieldKind) (*models.Field, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidFieldKind, kind)
	}
	d.Fields = append(d.Fields, models.Field{
		ID:       models.NewID(),
		Label:    kind.DefaultLabel(),
		Kind:     kind,
		AutoFill: models.AutoFillNone,
		Options:  []models.Option{},
	})
	return &d.Fields[len(d.Fields)-1], nil
}

// UpdateField меняет подпись и обязательность поля
func (d *TemplateDraft) UpdateField(id string, patch FieldPatch) error {
	f, err := d.field(id)
	if err != nil {
		return err
	}
	if patch.Label != nil {
		f.Label = *patch.Label
	}
	if patch.Required != nil {
		f.Required = *patch.Required
	}
	return nil
}

// RemoveField удаляет поле вместе с его опциями
func (d *TemplateDraft) RemoveField(id string) error {
	idx, err := d.fieldIndex(id)
	if err != nil {
		return err
	}
	d.Fields = append(d.Fields[:idx], d.Fields[idx+1:]...)
	d.DragIndex = nil
	return nil
}

// MoveField переносит поле с позиции from на позицию to, остальные сдвигаются
func (d *TemplateDraft) MoveField(from, to int) error {
	n := len(d.Fields)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: %d -> %d", models.ErrInvalidPosition, from, to)
	}
	if from == to {
		return nil
	}
	moved := d.Fields[from]
	rest := append(d.Fields[:from:from], d.Fields[from+1:]...)
	out := make([]models.Field, 0, n)
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	d.Fields = out
	return nil
}

// MoveFieldTo переносит поле по идентификатору на позицию to
func (d *TemplateDraft) MoveFieldTo(id string, to int) error {
	from, err := d.fieldIndex(id)
	if err != nil {
		return err
	}
	return d.MoveField(from, to)
}

// BeginDrag запоминает перетаскиваемое поле
func (d *TemplateDraft) BeginDrag(index int) error {
	if index < 0 || index >= len(d.Fields) {
		return fmt.Errorf("%w: %d", models.ErrInvalidPosition, index)
	}
	d.DragIndex = &index
	return nil
}

// DragOver переносит перетаскиваемое поле на позицию под указателем.
// Без активного перетаскивания ничего не делает.
func (d *TemplateDraft) DragOver(index int) error {
	if d.DragIndex == nil || *d.DragIndex == index {
		return nil
	}
	if err := d.MoveField(*d.DragIndex, index); err != nil {
		return err
	}
	d.DragIndex = &index
	return nil
}

// EndDrag завершает перетаскивание
func (d *TemplateDraft) EndDrag() {
	d.DragIndex = nil
}

// SetAutoFill задает справочник для массового заполнения опций
func (d *TemplateDraft) SetAutoFill(fieldID string, source models.AutoFillSource) error {
	if !source.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidAutoFill, source)
	}
	f, err := d.optionsField(fieldID)
	if err != nil {
		return err
	}
	if source == "" {
		source = models.AutoFillNone
	}
	f.AutoFill = source
	return nil
}

// ToggleCatalogItem добавляет опцию с подписью и ценой 0 или удаляет
// существующую опцию с такой подписью
func (d *TemplateDraft) ToggleCatalogItem(fieldID, label string) (added bool, err error) {
	f, err := d.optionsField(fieldID)
	if err != nil {
		return false, err
	}
	for i, o := range f.Options {
		if o.Label == label {
			f.Options = append(f.Options[:i], f.Options[i+1:]...)
			return false, nil
		}
	}
	f.Options = append(f.Options, models.Option{ID: models.NewID(), Label: label, Price: decimal.Zero})
	return true, nil
}

// SelectAllFromCatalog добавляет все элементы справочника поля, которых еще нет
func (d *TemplateDraft) SelectAllFromCatalog(fieldID string, catalog *models.Catalog) (int, error) {
	f, err := d.optionsField(fieldID)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, item := range catalog.Items(f.AutoFill) {
		if f.HasOptionLabel(item) {
			continue
		}
		f.Options = append(f.Options, models.Option{ID: models.NewID(), Label: item, Price: decimal.Zero})
		added++
	}
	return added, nil
}

// ClearOptions очищает опции и сбрасывает справочник
func (d *TemplateDraft) ClearOptions(fieldID string) error {
	f, err := d.optionsField(fieldID)
	if err != nil {
		return err
	}
	f.Options = []models.Option{}
	f.AutoFill = models.AutoFillNone
	return nil
}

// AddOption добавляет опцию вручную
func (d *TemplateDraft) AddOption(fieldID string) (*models.Option, error) {
	f, err := d.optionsField(fieldID)
	if err != nil {
		return nil, err
	}
	f.Options = append(f.Options, models.Option{ID: models.NewID(), Label: NewOptionLabel, Price: decimal.Zero})
	return &f.Options[len(f.Options)-1], nil
}

// UpdateOption меняет подпись и цену опции
func (d *TemplateDraft) UpdateOption(fieldID, optionID string, patch OptionPatch) error {
	f, err := d.optionsField(fieldID)
	if err != nil {
		return err
	}
	opt, ok := f.FindOption(optionID)
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrOptionNotFound, optionID)
	}
	if patch.Label != nil {
		opt.Label = *patch.Label
	}
	if patch.Price != nil {
		opt.Price = *patch.Price
	}
	return nil
}

// RemoveOption удаляет опцию
func (d *TemplateDraft) RemoveOption(fieldID, optionID string) error {
	f, err := d.optionsField(fieldID)
	if err != nil {
		return err
	}
	for i, o := range f.Options {
		if o.ID == optionID {
			f.Options = append(f.Options[:i], f.Options[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", models.ErrOptionNotFound, optionID)
}

// DraftHeader изменяемые атрибуты самого шаблона
type DraftHeader struct {
	Name               *string `json:"name"`
	IncludeVehicleInfo *bool   `json:"include_vehicle_info"`
}

// Apply применяет изменения заголовка
func (h DraftHeader) Apply(d *TemplateDraft) {
	if h.Name != nil {
		d.Name = *h.Name
	}
	if h.IncludeVehicleInfo != nil {
		d.IncludeVehicleInfo = *h.IncludeVehicleInfo
	}
}

// TemplateEditorService управляет черновиками шаблонов
type TemplateEditorService struct {
	templates *TemplateService
	companies *CompanyService
	catalog   *models.Catalog
	drafts    *draftRegistry[*TemplateDraft]
	logger    *zap.Logger
}

// NewTemplateEditorService создает сервис редактора
func NewTemplateEditorService(templates *TemplateService, companies *CompanyService, catalog *models.Catalog, logger *zap.Logger) *TemplateEditorService {
	if catalog == nil {
		catalog = models.DefaultCatalog()
	}
	return &TemplateEditorService{
		templates: templates,
		companies: companies,
		catalog:   catalog,
		drafts:    newDraftRegistry[*TemplateDraft](),
		logger:    loggerOrNop(logger),
	}
}

// Open создает черновик: пустой для нового шаблона или копию существующего
func (s *TemplateEditorService) Open(ctx context.Context, templateID string) (TemplateDraft, error) {
	draft := &TemplateDraft{
		ID:                 models.NewID(),
		IncludeVehicleInfo: true,
		Fields:             []models.Field{},
	}

	if templateID != "" {
		t, err := s.templates.Get(ctx, templateID)
		if err != nil {
			return TemplateDraft{}, err
		}
		c := t.Clone()
		draft.TemplateID = c.ID
		draft.Name = c.Name
		draft.IncludeVehicleInfo = c.IncludeVehicleInfo
		draft.Fields = c.Fields
		for i := range draft.Fields {
			if draft.Fields[i].Options == nil {
				draft.Fields[i].Options = []models.Option{}
			}
		}
	}

	s.drafts.put(draft.ID, draft)
	s.logger.Debug("Открыт черновик шаблона", zap.String("draft_id", draft.ID), zap.String("template_id", templateID))
	return draft.clone(), nil
}

// Get возвращает снимок черновика
func (s *TemplateEditorService) Get(id string) (TemplateDraft, error) {
	return s.Apply(id, func(*TemplateDraft) error { return nil })
}

// Apply выполняет изменение черновика и возвращает его снимок.
// При ошибке изменения черновик остается прежним.
func (s *TemplateEditorService) Apply(id string, fn func(d *TemplateDraft) error) (TemplateDraft, error) {
	entry, ok := s.drafts.get(id)
	if !ok {
		return TemplateDraft{}, fmt.Errorf("%w: %s", models.ErrDraftNotFound, id)
	}
	var snapshot TemplateDraft
	err := entry.with(func(d *TemplateDraft) error {
		work := d.clone()
		if err := fn(&work); err != nil {
			return err
		}
		*d = work
		snapshot = d.clone()
		return nil
	})
	return snapshot, err
}

// Catalog справочники, используемые редактором
func (s *TemplateEditorService) Catalog() *models.Catalog {
	return s.catalog
}

// SelectAll добавляет все элементы справочника поля
func (s *TemplateEditorService) SelectAll(id, fieldID string) (TemplateDraft, error) {
	return s.Apply(id, func(d *TemplateDraft) error {
		_, err := d.SelectAllFromCatalog(fieldID, s.catalog)
		return err
	})
}

// Discard удаляет черновик без сохранения
func (s *TemplateEditorService) Discard(id string) error {
	if _, ok := s.drafts.remove(id); !ok {
		return fmt.Errorf("%w: %s", models.ErrDraftNotFound, id)
	}
	return nil
}

// Save сохраняет черновик как шаблон. При ошибке черновик остается открытым.
func (s *TemplateEditorService) Save(ctx context.Context, id string) (*models.Template, error) {
	entry, ok := s.drafts.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrDraftNotFound, id)
	}

	var saved *models.Template
	err := entry.with(func(d *TemplateDraft) error {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return models.ErrTemplateNameRequired
		}

		company, err := s.companies.Current(ctx)
		if err != nil {
			return err
		}

		template := models.Template{
			ID:                 d.TemplateID,
			Name:               name,
			CompanyID:          company.ID,
			IncludeVehicleInfo: d.IncludeVehicleInfo,
			Fields:             d.clone().Fields,
		}
		if d.TemplateID != "" {
			existing, err := s.templates.Get(ctx, d.TemplateID)
			switch {
			case err == nil:
				template.IsFavorite = existing.IsFavorite
			case !errors.Is(err, models.ErrTemplateNotFound):
				return err
			}
		}

		saved, err = s.templates.Save(ctx, template)
		return err
	})
	if err != nil {
		s.logger.Warn("Черновик шаблона не сохранен", zap.String("draft_id", id), zap.Error(err))
		return nil, err
	}

	s.drafts.remove(id)
	return saved, nil
}

// Expire удаляет заброшенные черновики
func (s *TemplateEditorService) Expire(ttl time.Duration) int {
	return len(s.drafts.expired(ttl, time.Now()))
}
