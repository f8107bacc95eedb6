package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"checkmaster/database"
	"checkmaster/models"

	"go.uber.org/zap"
)

// InspectionService CRUD выполненных инспекций
type InspectionService struct {
	mu          sync.Mutex
	inspections collection[models.Inspection]
	logger      *zap.Logger
}

// NewInspectionService создает сервис инспекций
func NewInspectionService(store database.KVStore, logger *zap.Logger) *InspectionService {
	logger = loggerOrNop(logger)
	return &InspectionService{
		inspections: newCollection[models.Inspection](store, KeyInspections, logger),
		logger:      logger,
	}
}

// List возвращает все инспекции в порядке добавления
func (s *InspectionService) List(ctx context.Context) ([]models.Inspection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, _, err := s.inspections.load(ctx)
	return items, err
}

// Search возвращает инспекции, подходящие под строку поиска, новые первыми
func (s *InspectionService) Search(ctx context.Context, term string) ([]models.Inspection, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	found := make([]models.Inspection, 0, len(all))
	for i := range all {
		if all[i].Matches(term) {
			found = append(found, all[i])
		}
	}
	sort.SliceStable(found, func(a, b int) bool {
		return found[a].Date.After(found[b].Date)
	})
	return found, nil
}

// Get возвращает инспекцию по идентификатору
func (s *InspectionService) Get(ctx context.Context, id string) (*models.Inspection, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", models.ErrInspectionNotFound, id)
}

// Save заменяет инспекцию с тем же идентификатором или добавляет новую.
// Итоговая сумма всегда пересчитывается по полям.
func (s *InspectionService) Save(ctx context.Context, inspection models.Inspection) (*models.Inspection, error) {
	ins := inspection.Clone()
	if ins.ID == "" {
		ins.ID = models.NewID()
	}
	ins.Recalculate()

	s.mu.Lock()
	defer s.mu.Unlock()

	all, _, err := s.inspections.loadForUpdate(ctx)
	if err != nil {
		return nil, err
	}

	replaced := false
	for i := range all {
		if all[i].ID == ins.ID {
			all[i] = ins
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, ins)
	}

	if err := s.inspections.save(ctx, all); err != nil {
		s.logger.Error("Не удалось сохранить инспекцию", zap.String("inspection_id", ins.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Инспекция сохранена",
		zap.String("inspection_id", ins.ID),
		zap.String("plate", ins.Plate),
		zap.String("total", ins.TotalValue.StringFixed(2)),
		zap.Bool("created", !replaced))
	return &ins, nil
}

// Delete удаляет инспекцию
func (s *InspectionService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, _, err := s.inspections.loadForUpdate(ctx)
	if err != nil {
		return err
	}

	filtered := make([]models.Inspection, 0, len(all))
	for _, ins := range all {
		if ins.ID != id {
			filtered = append(filtered, ins)
		}
	}
	if len(filtered) == len(all) {
		return fmt.Errorf("%w: %s", models.ErrInspectionNotFound, id)
	}

	if err := s.inspections.save(ctx, filtered); err != nil {
		return err
	}
	s.logger.Info("Инспекция удалена", zap.String("inspection_id", id))
	return nil
}
