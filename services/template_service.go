package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"checkmaster/database"
	"checkmaster/models"

	"go.uber.org/zap"
)

// TemplateService CRUD шаблонов чек-листов
type TemplateService struct {
	mu        sync.Mutex
	templates collection[models.Template]
	logger    *zap.Logger
	now       func() time.Time
}

// NewTemplateService создает сервис шаблонов
func NewTemplateService(store database.KVStore, logger *zap.Logger) *TemplateService {
	logger = loggerOrNop(logger)
	return &TemplateService{
		templates: newCollection[models.Template](store, KeyTemplates, logger),
		logger:    logger,
		now:       time.Now,
	}
}

// List возвращает все шаблоны. При первом чтении пустого хранилища
// записывается стартовый набор.
func (s *TemplateService) List(ctx context.Context) ([]models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(ctx)
}

func (s *TemplateService) listLocked(ctx context.Context) ([]models.Template, error) {
	return s.seedLocked(ctx, s.templates.load)
}

// listForUpdateLocked читает шаблоны перед перезаписью коллекции
func (s *TemplateService) listForUpdateLocked(ctx context.Context) ([]models.Template, error) {
	return s.seedLocked(ctx, s.templates.loadForUpdate)
}

func (s *TemplateService) seedLocked(ctx context.Context, load func(context.Context) ([]models.Template, bool, error)) ([]models.Template, error) {
	items, found, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if found {
		return items, nil
	}

	defaults := models.DefaultTemplates(models.DefaultCompany().ID)
	if err := s.templates.save(ctx, defaults); err != nil {
		return nil, err
	}
	s.logger.Info("Созданы шаблоны по умолчанию", zap.Int("count", len(defaults)))
	return defaults, nil
}

// Favorites возвращает избранные шаблоны
func (s *TemplateService) Favorites(ctx context.Context) ([]models.Template, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	favorites := make([]models.Template, 0)
	for _, t := range all {
		if t.IsFavorite {
			favorites = append(favorites, t)
		}
	}
	return favorites, nil
}

// Get возвращает шаблон по идентификатору
func (s *TemplateService) Get(ctx context.Context, id string) (*models.Template, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", models.ErrTemplateNotFound, id)
}

// Save заменяет шаблон с тем же идентификатором или добавляет новый
func (s *TemplateService) Save(ctx context.Context, template models.Template) (*models.Template, error) {
	t := template.Clone()
	if t.ID == "" {
		t.ID = models.NewID()
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.UpdatedAt = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.listForUpdateLocked(ctx)
	if err != nil {
		return nil, err
	}

	replaced := false
	for i := range all {
		if all[i].ID == t.ID {
			all[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, t)
	}

	if err := s.templates.save(ctx, all); err != nil {
		s.logger.Error("Не удалось сохранить шаблон", zap.String("template_id", t.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Шаблон сохранен",
		zap.String("template_id", t.ID),
		zap.String("name", t.Name),
		zap.Bool("created", !replaced))
	return &t, nil
}

// Delete удаляет шаблон. Инспекции, созданные по нему, не затрагиваются.
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.listForUpdateLocked(ctx)
	if err != nil {
		return err
	}

	filtered := make([]models.Template, 0, len(all))
	for _, t := range all {
		if t.ID != id {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == len(all) {
		return fmt.Errorf("%w: %s", models.ErrTemplateNotFound, id)
	}

	if err := s.templates.save(ctx, filtered); err != nil {
		return err
	}
	s.logger.Info("Шаблон удален", zap.String("template_id", id))
	return nil
}

// Duplicate добавляет копию шаблона с новыми идентификаторами
func (s *TemplateService) Duplicate(ctx context.Context, id string) (*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.listForUpdateLocked(ctx)
	if err != nil {
		return nil, err
	}

	for _, t := range all {
		if t.ID != id {
			continue
		}
		dup := t.Duplicate()
		dup.UpdatedAt = s.now()
		all = append(all, dup)
		if err := s.templates.save(ctx, all); err != nil {
			return nil, err
		}
		s.logger.Info("Шаблон скопирован", zap.String("source_id", id), zap.String("template_id", dup.ID))
		return &dup, nil
	}
	return nil, fmt.Errorf("%w: %s", models.ErrTemplateNotFound, id)
}

// ToggleFavorite переключает признак избранного
func (s *TemplateService) ToggleFavorite(ctx context.Context, id string) (*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.listForUpdateLocked(ctx)
	if err != nil {
		return nil, err
	}

	for i := range all {
		if all[i].ID != id {
			continue
		}
		all[i].IsFavorite = !all[i].IsFavorite
		if err := s.templates.save(ctx, all); err != nil {
			return nil, err
		}
		t := all[i]
		return &t, nil
	}
	return nil, fmt.Errorf("%w: %s", models.ErrTemplateNotFound, id)
}
