package models

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTemplate() Template {
	return Template{
		ID:                 "t1",
		Name:               "Vistoria",
		IsFavorite:         true,
		IncludeVehicleInfo: true,
		Fields: []Field{
			{ID: "f1", Label: "Serviço", Kind: FieldSelectPrice, AutoFill: AutoFillServices, Options: []Option{
				{ID: "o1", Label: "Rastreador", Price: decimal.NewFromInt(120)},
				{ID: "o2", Label: "Bloqueio", Price: decimal.NewFromInt(80)},
			}},
			{ID: "f2", Label: "Ignição", Kind: FieldBoolean, Required: true, Options: []Option{}},
		},
	}
}

func TestTemplateValidate(t *testing.T) {
	tmpl := sampleTemplate()
	require.NoError(t, tmpl.Validate())

	tmpl.Name = "  "
	assert.ErrorIs(t, tmpl.Validate(), ErrTemplateNameRequired)

	tmpl = sampleTemplate()
	tmpl.Fields[1].ID = "f1"
	assert.ErrorIs(t, tmpl.Validate(), ErrDuplicateFieldID)

	tmpl = sampleTemplate()
	tmpl.Fields[0].AutoFill = "OUTRO"
	assert.ErrorIs(t, tmpl.Validate(), ErrInvalidAutoFill)

	tmpl = sampleTemplate()
	tmpl.Fields[0].Kind = "RADIO"
	assert.ErrorIs(t, tmpl.Validate(), ErrInvalidFieldKind)
}

func TestTemplateJSONVehicleInfoDefault(t *testing.T) {
	var tmpl Template
	require.NoError(t, json.Unmarshal([]byte(`{"id":"t","name":"X","fields":[{"id":"a","type":"BOOLEAN"}]}`), &tmpl))
	assert.True(t, tmpl.IncludeVehicleInfo)
	assert.Equal(t, "X", tmpl.Name)
	require.Len(t, tmpl.Fields, 1)
	assert.Equal(t, FieldBoolean, tmpl.Fields[0].Kind)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"t","name":"X","include_vehicle_info":false}`), &tmpl))
	assert.False(t, tmpl.IncludeVehicleInfo)

	// Явное значение сохраняется при повторном чтении
	data, err := json.Marshal(tmpl)
	require.NoError(t, err)
	var back Template
	require.NoError(t, json.Unmarshal(data, &back))
	assert.False(t, back.IncludeVehicleInfo)
}

func TestTemplateNormalize(t *testing.T) {
	tmpl := sampleTemplate()
	tmpl.Name = "  Vistoria  "
	tmpl.Fields[1].AutoFill = ""
	tmpl.Fields[1].Value = BoolOf(true)

	tmpl.Normalize()
	assert.Equal(t, "Vistoria", tmpl.Name)
	assert.Equal(t, AutoFillNone, tmpl.Fields[1].AutoFill)
	assert.Nil(t, tmpl.Fields[1].Value)

	empty := Template{Name: "x"}
	empty.Normalize()
	assert.NotNil(t, empty.Fields)
}

func TestTemplateDuplicate(t *testing.T) {
	original := sampleTemplate()
	dup := original.Duplicate()

	assert.Equal(t, "Vistoria"+CopySuffix, dup.Name)
	assert.False(t, dup.IsFavorite)
	assert.NotEqual(t, original.ID, dup.ID)

	// Идентификаторы полей и опций копии не пересекаются с оригиналом
	ids := map[string]bool{}
	for _, f := range original.Fields {
		ids[f.ID] = true
		for _, o := range f.Options {
			ids[o.ID] = true
		}
	}
	for _, f := range dup.Fields {
		assert.False(t, ids[f.ID], "field id %s reused", f.ID)
		for _, o := range f.Options {
			assert.False(t, ids[o.ID], "option id %s reused", o.ID)
		}
	}

	// Кроме идентификаторов поля совпадают
	ignoreIDs := cmp.Options{
		cmpopts.IgnoreFields(Field{}, "ID"),
		cmpopts.IgnoreUnexported(Field{}),
		cmpopts.IgnoreFields(Option{}, "ID"),
		cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	}
	if diff := cmp.Diff(original.Fields, dup.Fields, ignoreIDs); diff != "" {
		t.Errorf("duplicate fields mismatch (-original +dup):\n%s", diff)
	}

	// Изменение копии не затрагивает оригинал
	dup.Fields[0].Options[0].Label = "changed"
	assert.Equal(t, "Rastreador", original.Fields[0].Options[0].Label)
}

func TestTemplateInstantiate(t *testing.T) {
	tmpl := sampleTemplate()
	fields := tmpl.Instantiate()
	require.Len(t, fields, 2)
	assert.Equal(t, ChoiceValue(""), fields[0].Value)
	assert.Equal(t, UnsetBool(), fields[1].Value)
	assert.Nil(t, tmpl.Fields[0].Value)
}

func TestDefaultTemplates(t *testing.T) {
	templates := DefaultTemplates("comp1")
	require.Len(t, templates, 4)
	for _, tmpl := range templates {
		assert.NoError(t, tmpl.Validate(), tmpl.Name)
		assert.Equal(t, "comp1", tmpl.CompanyID)
	}
	assert.Len(t, templates[3].Fields, 6)
}

func TestCatalogItems(t *testing.T) {
	catalog := DefaultCatalog()

	types := catalog.Items(AutoFillVehicleTypes)
	assert.Len(t, types, len(AllVehicleCategories()))

	cars := catalog.Items(AutoFillCarModels)
	assert.Len(t, cars, carModelsLimit)

	brands := catalog.Items(AutoFillBrands)
	seen := map[string]bool{}
	for _, b := range brands {
		assert.False(t, seen[b], "duplicate brand %s", b)
		seen[b] = true
	}

	assert.Empty(t, catalog.Items(AutoFillNone))
	assert.NotEmpty(t, catalog.Items(AutoFillServices))
}
