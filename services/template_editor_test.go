package services

import (
	"context"
	"testing"
	"time"

	"checkmaster/models"
	"checkmaster/testutils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TemplateEditorTestSuite struct {
	suite.Suite
	ctx       context.Context
	store     *testutils.FailingStore
	templates *TemplateService
	companies *CompanyService
	editor    *TemplateEditorService
}

func (s *TemplateEditorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutils.NewFailingStore()
	s.templates = NewTemplateService(s.store, nil)
	s.companies = NewCompanyService(s.store, nil)
	s.editor = NewTemplateEditorService(s.templates, s.companies, nil, nil)
}

// draftWithFields открывает новый черновик с полями заданных типов
func (s *TemplateEditorTestSuite) draftWithFields(kinds ...models.FieldKind) TemplateDraft {
	draft, err := s.editor.Open(s.ctx, "")
	s.Require().NoError(err)
	draft, err = s.editor.Apply(draft.ID, func(d *TemplateDraft) error {
		for _, k := range kinds {
			if _, err := d.AddField(k); err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)
	return draft
}

func (s *TemplateEditorTestSuite) TestOpenNewDraft() {
	draft, err := s.editor.Open(s.ctx, "")
	s.Require().NoError(err)
	s.NotEmpty(draft.ID)
	s.Empty(draft.TemplateID)
	s.True(draft.IncludeVehicleInfo)
	s.Empty(draft.Fields)
}

func (s *TemplateEditorTestSuite) TestOpenExistingIsCopy() {
	draft, err := s.editor.Open(s.ctx, "v4-template")
	s.Require().NoError(err)
	s.Equal("V4", draft.Name)
	s.Len(draft.Fields, 2)

	_, err = s.editor.Apply(draft.ID, func(d *TemplateDraft) error {
		d.Fields[0].Label = "Alterado"
		return nil
	})
	s.Require().NoError(err)

	stored, err := s.templates.Get(s.ctx, "v4-template")
	s.Require().NoError(err)
	s.Equal("Checklist de Entrada V4", stored.Fields[0].Label)

	_, err = s.editor.Open(s.ctx, "missing")
	s.ErrorIs(err, models.ErrTemplateNotFound)
}

func (s *TemplateEditorTestSuite) TestAddField() {
	draft := s.draftWithFields(models.FieldSelectPrice)
	f := draft.Fields[0]
	s.Equal("SELEÇÃO (+ PREÇO)", f.Label)
	s.False(f.Required)
	s.Equal(models.AutoFillNone, f.AutoFill)
	s.Empty(f.Options)

	_, err := s.editor.Apply(draft.ID, func(d *TemplateDraft) error {
		_, err := d.AddField("RADIO")
		return err
	})
	s.ErrorIs(err, models.ErrInvalidFieldKind)
}

func (s *TemplateEditorTestSuite) TestFailedChangeLeavesDraftUntouched() {
	draft := s.draftWithFields(models.FieldText)

	_, err := s.editor.Apply(draft.ID, func(d *TemplateDraft) error {
		d.Name = "parcial"
		return d.RemoveField("missing")
	})
	s.ErrorIs(err, models.ErrFieldNotFound)

	got, err := s.editor.Get(draft.ID)
	s.Require().NoError(err)
	s.Empty(got.Name)
	s.Len(got.Fields, 1)
}

func (s *TemplateEditorTestSuite) TestMoveAndDrag() {
	draft := s.draftWithFields(models.FieldText, models.FieldNumber, models.FieldDate, models.FieldPhoto)
	ids := func(d TemplateDraft) []string {
		out := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			out[i] = f.ID
		}
		return out
	}
	a, b, c, d := draft.Fields[0].ID, draft.Fields[1].ID, draft.Fields[2].ID, draft.Fields[3].ID

	moved, err := s.editor.Apply(draft.ID, func(dr *TemplateDraft) error {
		return dr.MoveFieldTo(a, 2)
	})
	s.Require().NoError(err)
	s.Equal([]string{b, c, a, d}, ids(moved))

	// Перетаскивание: start на 3, over 1, over 0, end
	dragged, err := s.editor.Apply(draft.ID, func(dr *TemplateDraft) error {
		if err := dr.BeginDrag(3); err != nil {
			return err
		}
		if err := dr.DragOver(1); err != nil {
			return err
		}
		return dr.DragOver(0)
	})
	s.Require().NoError(err)
	s.Equal([]string{d, b, c, a}, ids(dragged))
	s.Require().NotNil(dragged.DragIndex)
	s.Equal(0, *dragged.DragIndex)

	ended, err := s.editor.Apply(draft.ID, func(dr *TemplateDraft) error {
		dr.EndDrag()
		return dr.DragOver(2)
	})
	s.Require().NoError(err)
	s.Nil(ended.DragIndex)
	s.Equal([]string{d, b, c, a}, ids(ended), "без перетаскивания DragOver ничего не делает")

	_, err = s.editor.Apply(draft.ID, func(dr *TemplateDraft) error {
		return dr.MoveField(0, 4)
	})
	s.ErrorIs(err, models.ErrInvalidPosition)
}

func (s *TemplateEditorTestSuite) TestCatalogToggleAndSelectAll() {
	draft := s.draftWithFields(models.FieldMultiSelect, models.FieldText)
	fieldID := draft.Fields[0].ID

	draft, err := s.editor.Apply(draft.ID, func(d *TemplateDraft) error {
		return d.SetAutoFill(fieldID, models.AutoFillVehicleTypes)
	})
	s.Require().NoError(err)
	s.Equal(models.AutoFillVehicleTypes, draft.Fields[0].AutoFill)

	var added bool
	draft, err = s.editor.Apply(draft.ID, func(d *TemplateDraft) error {
		var err error
		added, err = d.ToggleCatalogItem(fieldID, "Moto")
		return err
	})
	s.Require().NoError(err)
	s.True(added)
	s.Require().Len(draft.Fields[0].Options, 1)
	s.True(draft.Fields[0].Options[0].Price.IsZero())

	draft, err = s.editor.SelectAll(draft.ID, fieldID)
	s.Require().NoError(err)
	s.Len(draft.Fields[0].Options, len(models.AllVehicleCategories()), "Moto не дублируется")

	draft, err = s.editor.Apply(draft.ID, func(d *TemplateDraft) error {
		var err error
		added, err = d.ToggleCatalogItem(fieldID, "Moto")
		return err
	})
	s.Require().NoError(err)
	s.False(added)
	s.Len(draft.Fields[0].Options, len(models.AllVehicleCategories())-1)

	draft, err = s.editor.Apply(draft.ID, func(d *TemplateDraft) error {
		return d.ClearOptions(fieldID)
	})
	s.Require().NoError(err)
	s.Empty(draft.Fields[0].Options)
	s.Equal(models.AutoFillNone, draft.Fields[0].AutoFill)

	// Текстовое поле не имеет опций
	_, err = s.editor.Apply(draft.ID, func(d *TemplateDraft) error {
		return d.SetAutoFill(draft.Fields[1].ID, models.AutoFillBrands)
	})
	s.ErrorIs(err, models.ErrOptionsNotSupported)
}

func (s *TemplateEditorTestSuite) TestManualOptions() {
	draft := s.draftWithFields(models.FieldSelectPrice)
	fieldID := draft.Fields[0].ID

	draft, err := s.editor.Apply(draft.ID, func(d *TemplateDraft) error {
		_, err := d.AddOption(fieldID)
		return err
	})
	s.Require().NoError(err)
	opt := draft.Fields[0].Options[0]
	s.Equal(NewOptionLabel, opt.Label)

	label := "Instalação"
	price := decimal.NewFromInt(150)
	draft, err = s.editor.Apply(draft.ID, func(d *TemplateDraft) error {
		return d.UpdateOption(fieldID, opt.ID, OptionPatch{Label: &label, Price: &price})
	})
	s.Require().NoError(err)
	s.Equal(label, draft.Fields[0].Options[0].Label)
	s.True(draft.Fields[0].Options[0].Price.Equal(price))

	draft, err = s.editor.Apply(draft.ID, func(d *TemplateDraft) error {
		return d.RemoveOption(fieldID, opt.ID)
	})
	s.Require().NoError(err)
	s.Empty(draft.Fields[0].Options)

	_, err = s.editor.Apply(draft.ID, func(d *TemplateDraft) error {
		return d.RemoveOption(fieldID, opt.ID)
	})
	s.ErrorIs(err, models.ErrOptionNotFound)
}

func (s *TemplateEditorTestSuite) TestSaveNewTemplate() {
	draft := s.draftWithFields(models.FieldBoolean)
	name := "  Checklist Novo "
	required := true
	_, err := s.editor.Apply(draft.ID, func(d *TemplateDraft) error {
		DraftHeader{Name: &name}.Apply(d)
		return d.UpdateField(d.Fields[0].ID, FieldPatch{Required: &required})
	})
	s.Require().NoError(err)

	saved, err := s.editor.Save(s.ctx, draft.ID)
	s.Require().NoError(err)
	s.Equal("Checklist Novo", saved.Name)
	s.Equal(models.DefaultCompany().ID, saved.CompanyID)
	s.True(saved.Fields[0].Required)

	_, err = s.editor.Get(draft.ID)
	s.ErrorIs(err, models.ErrDraftNotFound, "черновик закрыт после сохранения")

	all, err := s.templates.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 5)
}

func (s *TemplateEditorTestSuite) TestSaveExistingKeepsFavorite() {
	draft, err := s.editor.Open(s.ctx, "v4-template")
	s.Require().NoError(err)

	saved, err := s.editor.Save(s.ctx, draft.ID)
	s.Require().NoError(err)
	s.Equal("v4-template", saved.ID)
	s.True(saved.IsFavorite)
}

func (s *TemplateEditorTestSuite) TestSaveRequiresName() {
	draft := s.draftWithFields(models.FieldText)
	_, err := s.editor.Save(s.ctx, draft.ID)
	s.ErrorIs(err, models.ErrTemplateNameRequired)

	_, err = s.editor.Get(draft.ID)
	s.NoError(err)
}

func (s *TemplateEditorTestSuite) TestSaveFailureKeepsDraft() {
	_, err := s.templates.List(s.ctx)
	s.Require().NoError(err)

	draft := s.draftWithFields(models.FieldText)
	name := "Falha"
	_, err = s.editor.Apply(draft.ID, func(d *TemplateDraft) error {
		DraftHeader{Name: &name}.Apply(d)
		return nil
	})
	s.Require().NoError(err)

	s.store.FailWrites = true
	_, err = s.editor.Save(s.ctx, draft.ID)
	s.ErrorIs(err, testutils.ErrStoreUnavailable)

	got, err := s.editor.Get(draft.ID)
	s.Require().NoError(err)
	s.Equal("Falha", got.Name)
	s.Len(got.Fields, 1)

	s.store.FailWrites = false
	_, err = s.editor.Save(s.ctx, draft.ID)
	s.NoError(err)
}

func (s *TemplateEditorTestSuite) TestDiscardAndExpire() {
	draft := s.draftWithFields()
	s.Require().NoError(s.editor.Discard(draft.ID))
	s.ErrorIs(s.editor.Discard(draft.ID), models.ErrDraftNotFound)

	s.draftWithFields()
	s.Equal(0, s.editor.Expire(time.Hour))
	s.Equal(1, s.editor.Expire(-time.Second))
}

func TestTemplateEditorSuite(t *testing.T) {
	suite.Run(t, new(TemplateEditorTestSuite))
}

func TestMoveFieldSplice(t *testing.T) {
	d := &TemplateDraft{Fields: []models.Field{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	require.NoError(t, d.MoveField(2, 0))
	assert.Equal(t, "c", d.Fields[0].ID)
	assert.Equal(t, "a", d.Fields[1].ID)
	assert.Equal(t, "b", d.Fields[2].ID)

	require.NoError(t, d.MoveField(0, 2))
	assert.Equal(t, []string{"a", "b", "c"}, []string{d.Fields[0].ID, d.Fields[1].ID, d.Fields[2].ID})
}
