package services

import (
	"context"
	"strings"
	"sync"

	"checkmaster/database"
	"checkmaster/models"

	"go.uber.org/zap"
)

// CompanyService активная компания и список компаний
type CompanyService struct {
	mu        sync.Mutex
	store     database.KVStore
	companies collection[models.Company]
	logger    *zap.Logger
}

// NewCompanyService создает сервис компаний
func NewCompanyService(store database.KVStore, logger *zap.Logger) *CompanyService {
	logger = loggerOrNop(logger)
	return &CompanyService{
		store:     store,
		companies: newCollection[models.Company](store, KeyCompanies, logger),
		logger:    logger,
	}
}

// Current возвращает активную компанию; по умолчанию Empresa Matriz
func (s *CompanyService) Current(ctx context.Context) (models.Company, error) {
	company, found, err := loadDocument[models.Company](ctx, s.store, KeyCurrentCompany, s.logger)
	if err != nil {
		return models.Company{}, err
	}
	if !found || company.ID == "" {
		return models.DefaultCompany(), nil
	}
	return company, nil
}

// SetCurrent делает компанию активной и добавляет ее в список компаний
func (s *CompanyService) SetCurrent(ctx context.Context, company models.Company) (models.Company, error) {
	company.Name = strings.TrimSpace(company.Name)
	if company.Name == "" {
		return models.Company{}, models.ErrCompanyNameRequired
	}
	if company.ID == "" {
		company.ID = models.NewID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, _, err := s.companies.loadForUpdate(ctx)
	if err != nil {
		return models.Company{}, err
	}
	known := false
	for i := range all {
		if all[i].ID == company.ID {
			all[i] = company
			known = true
			break
		}
	}
	if !known {
		all = append(all, company)
	}
	// Список пишется первым: при ошибке активная компания не меняется
	if err := s.companies.save(ctx, all); err != nil {
		return models.Company{}, err
	}
	if err := saveDocument(ctx, s.store, KeyCurrentCompany, company); err != nil {
		return models.Company{}, err
	}

	s.logger.Info("Активная компания изменена", zap.String("company_id", company.ID), zap.String("name", company.Name))
	return company, nil
}

// List возвращает известные компании; компания по умолчанию всегда первая
func (s *CompanyService) List(ctx context.Context) ([]models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, _, err := s.companies.load(ctx)
	if err != nil {
		return nil, err
	}
	def := models.DefaultCompany()
	out := []models.Company{def}
	for _, c := range all {
		if c.ID != def.ID {
			out = append(out, c)
		}
	}
	return out, nil
}

// Session собирает контекст запроса из активной компании и справочников
func (s *CompanyService) Session(ctx context.Context, catalog *models.Catalog) (models.Session, error) {
	company, err := s.Current(ctx)
	if err != nil {
		return models.Session{}, err
	}
	return models.NewSession(company, catalog), nil
}
