package api

import (
	"net/http"

	"checkmaster/models"
	"checkmaster/services"

	"github.com/gin-gonic/gin"
)

// CompaniesAPI активная компания и список компаний
type CompaniesAPI struct {
	Companies *services.CompanyService
}

// NewCompaniesAPI создает новый экземпляр CompaniesAPI
func NewCompaniesAPI(companies *services.CompanyService) *CompaniesAPI {
	return &CompaniesAPI{Companies: companies}
}

// CompanyRequest структура для смены активной компании
type CompanyRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// RegisterCompaniesRoutes регистрирует маршруты для управления компаниями
func (api *CompaniesAPI) RegisterCompaniesRoutes(r *gin.RouterGroup) {
	companies := r.Group("/companies")
	{
		companies.GET("", api.GetCompanies)
		companies.GET("/current", api.GetCurrentCompany)
		companies.PUT("/current", api.SetCurrentCompany)
	}
}

// GetCompanies список известных компаний
func (api *CompaniesAPI) GetCompanies(c *gin.Context) {
	companies, err := api.Companies.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, companies)
}

// GetCurrentCompany активная компания
func (api *CompaniesAPI) GetCurrentCompany(c *gin.Context) {
	company, err := api.Companies.Current(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, company)
}

// SetCurrentCompany меняет активную компанию
func (api *CompaniesAPI) SetCurrentCompany(c *gin.Context) {
	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	company, err := api.Companies.SetCurrent(c.Request.Context(), models.Company{ID: req.ID, Name: req.Name})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, company)
}
