package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionUpdate sets the commission of one model in one region. A zero or
// missing regionId is reported as REGION_NOT_FOUND like any unknown region.
type CommissionUpdate struct {
	ModelID  uint            `json:"model" binding:"required"`
	RegionID models.RegionID `json:"regionId"`
	Amount   decimal.Decimal `json:"amount"`
}

// CommissionService edits the per-region commission tables of phone models
type CommissionService struct {
	db *gorm.DB
}

// NewCommissionService creates a commission service bound to db
func NewCommissionService(db *gorm.DB) *CommissionService {
	return &CommissionService{db: db}
}

// ApplyBatch upserts every entry into its model's table. Entries are applied
// in order, so a later entry for the same model and region wins. The whole
// batch runs in one transaction: an unknown model (404) or region (400) rolls
// back every entry.
func (s *CommissionService) ApplyBatch(ctx context.Context, updates []CommissionUpdate) ([]models.PhoneModel, error) {
	if len(updates) == 0 {
		return nil, validationError("VALIDATION_ERROR", "At least one commission entry is required")
	}

	var changed []models.PhoneModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		touched := make(map[uint]*models.PhoneModel)
		var order []uint
		knownRegions := make(map[uint]bool)

		for i, u := range updates {
			if u.Amount.IsNegative() {
				return validationError("VALIDATION_ERROR", fmt.Sprintf("Entry %d: amount cannot be negative", i))
			}

			model, ok := touched[u.ModelID]
			if !ok {
				model = &models.PhoneModel{}
				if err := tx.First(model, u.ModelID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return notFoundError("MODEL_NOT_FOUND", fmt.Sprintf("Phone model %d not found", u.ModelID))
					}
					return err
				}
				touched[u.ModelID] = model
				order = append(order, u.ModelID)
			}

			regionID := uint(u.RegionID)
			if regionID == 0 {
				return validationError("REGION_NOT_FOUND", fmt.Sprintf("Entry %d: regionId is required", i))
			}
			if !knownRegions[regionID] {
				var count int64
				if err := tx.Model(&models.Location{}).Where("id = ?", regionID).Count(&count).Error; err != nil {
					return err
				}
				if count == 0 {
					return validationError("REGION_NOT_FOUND", fmt.Sprintf("Region %d does not exist", regionID))
				}
				knownRegions[regionID] = true
			}

			model.Commissions = model.Commissions.Upsert(regionID, u.Amount)
		}

		for _, id := range order {
			model := touched[id]
			if err := tx.Model(model).Update("commissions", model.Commissions).Error; err != nil {
				return err
			}
			changed = append(changed, *model)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return changed, nil
}

// ResolvePhoneCommission returns the commission the phone's manager earns for
// selling it: the model's entry for the manager's region, if any. Model and
// Manager must be loaded.
func ResolvePhoneCommission(phone *models.Phone) decimal.NullDecimal {
	if phone.Manager.RegionID == nil {
		return decimal.NullDecimal{}
	}
	return phone.Model.Commissions.Resolve(*phone.Manager.RegionID)
}
