package services

import (
	"context"
	"testing"

	"checkmaster/models"
	"checkmaster/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TemplateServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *testutils.FailingStore
	service *TemplateService
}

func (s *TemplateServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutils.NewFailingStore()
	s.service = NewTemplateService(s.store, nil)
}

func (s *TemplateServiceTestSuite) TestListSeedsDefaults() {
	templates, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Len(templates, 4)

	// Стартовый набор записан в хранилище
	raw, found, err := s.store.Get(s.ctx, KeyTemplates)
	s.Require().NoError(err)
	s.True(found)
	s.Contains(string(raw), "v4-template")
}

func (s *TemplateServiceTestSuite) TestEmptyListIsNotReseeded() {
	s.store.Put(KeyTemplates, "[]")

	templates, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(templates)
}

func (s *TemplateServiceTestSuite) TestCorruptCollectionIsEmpty() {
	s.store.Put(KeyTemplates, "{not json")

	templates, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(templates)
}

func (s *TemplateServiceTestSuite) TestSaveAfterCorruptCollectionKeepsBackup() {
	s.store.Put(KeyTemplates, "{not json")

	_, err := s.service.Save(s.ctx, models.Template{Name: "Nova"})
	s.Require().NoError(err)

	templates, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Len(templates, 1)

	backup, found := s.store.Raw(KeyTemplates + ".corrupt")
	s.True(found)
	s.Equal("{not json", backup)
}

func (s *TemplateServiceTestSuite) TestBrokenRecordDoesNotDropOthers() {
	s.store.Put(KeyTemplates, `[{"id":"t1","name":"Um","fields":[]},"oops",{"id":"t2","name":"Dois","fields":[]}]`)

	templates, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Len(templates, 2)

	_, err = s.service.ToggleFavorite(s.ctx, "t2")
	s.Require().NoError(err)

	templates, err = s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(templates, 2)
	s.Equal("t1", templates[0].ID)
	s.True(templates[1].IsFavorite)
}

func (s *TemplateServiceTestSuite) TestSaveCreatesAndReplaces() {
	created, err := s.service.Save(s.ctx, models.Template{
		Name: "  Nova Vistoria ",
		Fields: []models.Field{
			{ID: "a", Label: "Ok", Kind: models.FieldBoolean},
		},
	})
	s.Require().NoError(err)
	s.NotEmpty(created.ID)
	s.Equal("Nova Vistoria", created.Name)
	s.Equal(models.AutoFillNone, created.Fields[0].AutoFill)
	s.False(created.UpdatedAt.IsZero())

	created.Name = "Renomeada"
	updated, err := s.service.Save(s.ctx, *created)
	s.Require().NoError(err)
	s.Equal(created.ID, updated.ID)

	all, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 5)

	got, err := s.service.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Renomeada", got.Name)
}

func (s *TemplateServiceTestSuite) TestSaveRejectsInvalid() {
	_, err := s.service.Save(s.ctx, models.Template{Name: " "})
	s.ErrorIs(err, models.ErrTemplateNameRequired)

	_, err = s.service.Save(s.ctx, models.Template{Name: "x", Fields: []models.Field{
		{ID: "a", Kind: models.FieldText},
		{ID: "a", Kind: models.FieldText},
	}})
	s.ErrorIs(err, models.ErrDuplicateFieldID)
}

func (s *TemplateServiceTestSuite) TestSaveFailureKeepsCollection() {
	_, err := s.service.List(s.ctx)
	s.Require().NoError(err)

	s.store.FailWrites = true
	_, err = s.service.Save(s.ctx, models.Template{Name: "Falha"})
	s.ErrorIs(err, testutils.ErrStoreUnavailable)

	s.store.FailWrites = false
	all, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 4)
}

func (s *TemplateServiceTestSuite) TestDelete() {
	s.Require().NoError(s.service.Delete(s.ctx, "sas-template"))

	_, err := s.service.Get(s.ctx, "sas-template")
	s.ErrorIs(err, models.ErrTemplateNotFound)

	s.ErrorIs(s.service.Delete(s.ctx, "sas-template"), models.ErrTemplateNotFound)
}

func (s *TemplateServiceTestSuite) TestDuplicate() {
	dup, err := s.service.Duplicate(s.ctx, "v4-template")
	s.Require().NoError(err)
	s.Equal("V4"+models.CopySuffix, dup.Name)
	s.False(dup.IsFavorite)
	s.NotEqual("f1", dup.Fields[0].ID)

	all, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 5)

	_, err = s.service.Duplicate(s.ctx, "missing")
	s.ErrorIs(err, models.ErrTemplateNotFound)
}

func (s *TemplateServiceTestSuite) TestToggleFavorite() {
	favorites, err := s.service.Favorites(s.ctx)
	s.Require().NoError(err)
	s.Len(favorites, 2)

	t, err := s.service.ToggleFavorite(s.ctx, "sas-template")
	s.Require().NoError(err)
	s.True(t.IsFavorite)

	favorites, err = s.service.Favorites(s.ctx)
	s.Require().NoError(err)
	s.Len(favorites, 3)
}

func TestTemplateServiceSuite(t *testing.T) {
	suite.Run(t, new(TemplateServiceTestSuite))
}

// TestTemplateServiceWithDatabase проверяет работу поверх SQLite хранилища
func TestTemplateServiceWithDatabase(t *testing.T) {
	ctx := context.Background()
	store := testutils.NewTestStore(t)
	service := NewTemplateService(store, nil)

	templates, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, templates, 4)

	_, err = service.ToggleFavorite(ctx, "2")
	require.NoError(t, err)

	// Новый экземпляр сервиса читает сохраненное состояние
	reopened := NewTemplateService(store, nil)
	got, err := reopened.Get(ctx, "2")
	require.NoError(t, err)
	assert.True(t, got.IsFavorite)
}
