package services

import (
	"context"

	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CompanySales summarises the sales made through one company
type CompanySales struct {
	Company string          `json:"company"`
	Sales   int64           `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ManagerCommission totals the agent commission earned by one manager
type ManagerCommission struct {
	ManagerID  uint            `json:"managerId"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Sales      int64           `json:"sales"`
	Commission decimal.Decimal `json:"commission"`
}

// DashboardSummary is the overview shown on the dashboard
type DashboardSummary struct {
	StatusCounts map[string]int64    `json:"statusCounts"`
	Companies    []CompanySales      `json:"companies"`
	Managers     []ManagerCommission `json:"managers"`
}

// DashboardService computes dashboard figures
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a dashboard service bound to db
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// Summary computes the dashboard for viewer. Managers only see their own phones.
// Money is summed in Go so the result does not depend on the SQL dialect's
// numeric types.
func (s *DashboardService) Summary(ctx context.Context, viewer *models.User) (*DashboardSummary, error) {
	scope := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Phone{})
		if viewer.IsManager() {
			q = q.Where("phones.manager_id = ?", viewer.ID)
		}
		return q
	}

	summary := &DashboardSummary{
		StatusCounts: make(map[string]int64, len(models.PhoneStatuses)),
		Companies:    []CompanySales{},
		Managers:     []ManagerCommission{},
	}
	for _, status := range models.PhoneStatuses {
		summary.StatusCounts[status] = 0
	}

	var counts []struct {
		Status string
		Count  int64
	}
	if err := scope().Select("status, COUNT(*) AS count").Group("status").Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		summary.StatusCounts[c.Status] = c.Count
	}

	var sold []models.Phone
	err := scope().
		Preload("Manager").
		Where("phones.status IN ?", []string{models.PhoneStatusSold, models.PhoneStatusReconcile}).
		Order("phones.id ASC").
		Find(&sold).Error
	if err != nil {
		return nil, err
	}

	companyIndex := make(map[string]int)
	managerIndex := make(map[uint]int)
	for _, phone := range sold {
		company := ""
		if phone.Company != nil {
			company = *phone.Company
		}
		i, ok := companyIndex[company]
		if !ok {
			i = len(summary.Companies)
			companyIndex[company] = i
			summary.Companies = append(summary.Companies, CompanySales{Company: company, Revenue: decimal.Zero})
		}
		summary.Companies[i].Sales++
		summary.Companies[i].Revenue = summary.Companies[i].Revenue.Add(phone.SellingPrice)

		j, ok := managerIndex[phone.ManagerID]
		if !ok {
			j = len(summary.Managers)
			managerIndex[phone.ManagerID] = j
			summary.Managers = append(summary.Managers, ManagerCommission{
				ManagerID:  phone.ManagerID,
				FirstName:  phone.Manager.FirstName,
				LastName:   phone.Manager.LastName,
				Commission: decimal.Zero,
			})
		}
		summary.Managers[j].Sales++
		if phone.AgentCommission.Valid {
			summary.Managers[j].Commission = summary.Managers[j].Commission.Add(phone.AgentCommission.Decimal)
		}
	}

	return summary, nil
}
