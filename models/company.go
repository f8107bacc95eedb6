package models

import "strings"

// Company компания, от имени которой выполняются инспекции
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultCompany активная компания по умолчанию
func DefaultCompany() Company {
	return Company{ID: "comp1", Name: "Empresa Matriz"}
}

// HeadquartersName название компании в отчетах, если оно не указано
const HeadquartersName = "EMPRESA MATRIZ"

// NormalizeCompanyName приводит название к ключу группировки отчетов
func NormalizeCompanyName(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	if n == "" {
		return HeadquartersName
	}
	return n
}

// Session явный контекст запроса: активная компания и справочники
type Session struct {
	Company Company
	Catalog *Catalog
}

// NewSession создает сессию; nil каталог заменяется встроенным
func NewSession(company Company, catalog *Catalog) Session {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return Session{Company: company, Catalog: catalog}
}
