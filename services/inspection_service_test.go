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
)

func pricedInspection(company, plate string, price int64, date time.Time) models.Inspection {
	return models.Inspection{
		CompanyName: company,
		Plate:       plate,
		Date:        date,
		Fields: []models.Field{{
			ID:    "svc",
			Kind:  models.FieldSelectPrice,
			Value: models.ChoiceValue("o"),
			Options: []models.Option{
				{ID: "o", Label: "Serviço", Price: decimal.NewFromInt(price)},
			},
		}},
	}
}

func TestInspectionService(t *testing.T) {
	ctx := context.Background()

	t.Run("Пустое хранилище", func(t *testing.T) {
		service := NewInspectionService(testutils.NewFailingStore(), nil)
		all, err := service.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("Сохранение пересчитывает сумму", func(t *testing.T) {
		service := NewInspectionService(testutils.NewFailingStore(), nil)
		ins := pricedInspection("V4", "ABC1D23", 150, time.Now())
		ins.TotalValue = decimal.NewFromInt(999)

		saved, err := service.Save(ctx, ins)
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.True(t, saved.TotalValue.Equal(decimal.NewFromInt(150)))

		got, err := service.Get(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ChoiceValue("o"), got.Fields[0].Value)
	})

	t.Run("Замена по идентификатору", func(t *testing.T) {
		service := NewInspectionService(testutils.NewFailingStore(), nil)
		saved, err := service.Save(ctx, pricedInspection("V4", "AAA", 10, time.Now()))
		require.NoError(t, err)

		saved.Plate = "BBB"
		_, err = service.Save(ctx, *saved)
		require.NoError(t, err)

		all, err := service.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "BBB", all[0].Plate)
	})

	t.Run("Поиск, новые первыми", func(t *testing.T) {
		service := NewInspectionService(testutils.NewFailingStore(), nil)
		now := time.Now()
		_, err := service.Save(ctx, pricedInspection("V4", "OLD1234", 10, now.Add(-time.Hour)))
		require.NoError(t, err)
		_, err = service.Save(ctx, pricedInspection("SAS", "NEW1234", 10, now))
		require.NoError(t, err)

		found, err := service.Search(ctx, "1234")
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "NEW1234", found[0].Plate)

		found, err = service.Search(ctx, "sas")
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("Удаление", func(t *testing.T) {
		service := NewInspectionService(testutils.NewFailingStore(), nil)
		saved, err := service.Save(ctx, pricedInspection("V4", "AAA", 10, time.Now()))
		require.NoError(t, err)

		require.NoError(t, service.Delete(ctx, saved.ID))
		_, err = service.Get(ctx, saved.ID)
		assert.ErrorIs(t, err, models.ErrInspectionNotFound)
		assert.ErrorIs(t, service.Delete(ctx, saved.ID), models.ErrInspectionNotFound)
	})

	t.Run("Поврежденные данные", func(t *testing.T) {
		store := testutils.NewFailingStore()
		store.Put(KeyInspections, "garbage")
		service := NewInspectionService(store, nil)

		all, err := service.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("Запись после поврежденного документа", func(t *testing.T) {
		store := testutils.NewFailingStore()
		store.Put(KeyInspections, "garbage")
		service := NewInspectionService(store, nil)

		saved, err := service.Save(ctx, pricedInspection("NEW", "CCC", 5, time.Now()))
		require.NoError(t, err)

		all, err := service.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, saved.ID, all[0].ID)

		backup, found := store.Raw(KeyInspections + ".corrupt")
		require.True(t, found)
		assert.Equal(t, "garbage", backup)
	})

	t.Run("Неизвестный тип поля не портит историю", func(t *testing.T) {
		store := testutils.NewFailingStore()
		store.Put(KeyInspections, `[
			{"id":"a","company_name":"V4","total_value":"100","fields":[]},
			{"id":"b","company_name":"SAS","total_value":"30","fields":[{"id":"sig","label":"Assinatura","type":"SIGNATURE","value":"x"}]}
		]`)
		service := NewInspectionService(store, nil)

		all, err := service.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)

		_, err = service.Save(ctx, pricedInspection("NEW", "CCC", 5, time.Now()))
		require.NoError(t, err)

		all, err = service.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "a", all[0].ID)
		assert.Equal(t, "b", all[1].ID)
		assert.Equal(t, models.FieldKind("SIGNATURE"), all[1].Fields[0].Kind)

		raw, _ := store.Raw(KeyInspections)
		assert.Contains(t, raw, `"type":"SIGNATURE"`)
		_, found := store.Raw(KeyInspections + ".corrupt")
		assert.False(t, found)
	})

	t.Run("Нечитаемая запись среди корректных", func(t *testing.T) {
		store := testutils.NewFailingStore()
		store.Put(KeyInspections, `[{"id":"a","company_name":"V4","fields":[]},42,{"id":"b","company_name":"SAS","fields":[]}]`)
		service := NewInspectionService(store, nil)

		all, err := service.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)

		require.NoError(t, service.Delete(ctx, "a"))

		all, err = service.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "b", all[0].ID)

		backup, found := store.Raw(KeyInspections + ".corrupt")
		require.True(t, found)
		assert.Contains(t, backup, "42")
	})

	t.Run("Копия поврежденного документа не записалась", func(t *testing.T) {
		store := testutils.NewFailingStore()
		store.Put(KeyInspections, `[{"id":"a","fields":[]},42]`)
		store.FailKey(KeyInspections + ".corrupt")
		service := NewInspectionService(store, nil)

		_, err := service.Save(ctx, pricedInspection("NEW", "CCC", 5, time.Now()))
		assert.ErrorIs(t, err, models.ErrCorruptCollection)

		raw, _ := store.Raw(KeyInspections)
		assert.Equal(t, `[{"id":"a","fields":[]},42]`, raw)
	})

	t.Run("Ошибка чтения", func(t *testing.T) {
		store := testutils.NewFailingStore()
		store.FailReads = true
		service := NewInspectionService(store, nil)

		_, err := service.List(ctx)
		assert.ErrorIs(t, err, testutils.ErrStoreUnavailable)
	})
}

func TestCompanyService(t *testing.T) {
	ctx := context.Background()

	t.Run("Компания по умолчанию", func(t *testing.T) {
		service := NewCompanyService(testutils.NewFailingStore(), nil)
		current, err := service.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultCompany(), current)
	})

	t.Run("Поврежденная активная компания", func(t *testing.T) {
		store := testutils.NewFailingStore()
		store.Put(KeyCurrentCompany, "{")
		service := NewCompanyService(store, nil)

		current, err := service.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultCompany(), current)
	})

	t.Run("Смена активной компании", func(t *testing.T) {
		service := NewCompanyService(testutils.NewFailingStore(), nil)
		company, err := service.SetCurrent(ctx, models.Company{Name: "  V4 Rastreamento "})
		require.NoError(t, err)
		assert.NotEmpty(t, company.ID)
		assert.Equal(t, "V4 Rastreamento", company.Name)

		current, err := service.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, company, current)

		all, err := service.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, models.DefaultCompany(), all[0])

		session, err := service.Session(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, company, session.Company)
		assert.NotNil(t, session.Catalog)
	})

	t.Run("Ошибка записи списка не меняет активную компанию", func(t *testing.T) {
		store := testutils.NewFailingStore()
		service := NewCompanyService(store, nil)
		first, err := service.SetCurrent(ctx, models.Company{Name: "V4"})
		require.NoError(t, err)

		store.FailKey(KeyCompanies)
		_, err = service.SetCurrent(ctx, models.Company{Name: "SAS"})
		assert.ErrorIs(t, err, testutils.ErrStoreUnavailable)

		current, err := service.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, current)
	})

	t.Run("Пустое название", func(t *testing.T) {
		service := NewCompanyService(testutils.NewFailingStore(), nil)
		_, err := service.SetCurrent(ctx, models.Company{Name: " "})
		assert.ErrorIs(t, err, models.ErrCompanyNameRequired)
	})
}
