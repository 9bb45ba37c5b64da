package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PhoneInput carries the fields of a new phone
type PhoneInput struct {
	IMEI          string          `json:"imei" binding:"required"`
	ModelID       uint            `json:"modelId" binding:"required"`
	SupplierID    uint            `json:"supplierId" binding:"required"`
	ManagerID     uint            `json:"managerId" binding:"required"`
	Capacity      string          `json:"capacity"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"`
	BuyDate       *time.Time      `json:"buyDate"`
}

// PhoneUpdate carries the editable fields of a phone; nil fields are kept
type PhoneUpdate struct {
	IMEI          *string          `json:"imei"`
	ModelID       *uint            `json:"modelId"`
	SupplierID    *uint            `json:"supplierId"`
	ManagerID     *uint            `json:"managerId"`
	Capacity      *string          `json:"capacity"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice"`
	SellingPrice  *decimal.Decimal `json:"sellingPrice"`
	BuyDate       *time.Time       `json:"buyDate"`
}

// CustomerInput identifies the buyer of a phone
type CustomerInput struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	IDNumber    string `json:"idNumber" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	NkFirstName string `json:"nkFirstName"`
	NkLastName  string `json:"nkLastName"`
	NkPhone     string `json:"nkPhone"`
}

// SaleInput records the sale of a phone to a customer
type SaleInput struct {
	PhoneID         uint                `json:"phoneId" binding:"required"`
	SellingPrice    *decimal.Decimal    `json:"sellingPrice"` // nil keeps the phone's listed price
	Company         string              `json:"company" binding:"required"`
	SaleDate        *time.Time          `json:"saleDate"`
	AgentCommission decimal.NullDecimal `json:"agentCommission"`
	Customer        CustomerInput       `json:"customer" binding:"required"`
}

// PhoneFilter narrows a phone listing. From/To apply to the sale date when
// filtering sold or reconciled phones and to the buy date otherwise.
type PhoneFilter struct {
	Status    string     `form:"status" binding:"omitempty,phonestatus"`
	ManagerID uint       `form:"managerId"`
	ModelID   uint       `form:"modelId"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
}

// PhoneService drives the phone lifecycle:
// active -> sold -> reconcile (and back to sold), and active <-> lost.
type PhoneService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPhoneService creates a phone service bound to db
func NewPhoneService(db *gorm.DB) *PhoneService {
	return &PhoneService{db: db, now: time.Now}
}

// Create registers a new phone in stock
func (s *PhoneService) Create(ctx context.Context, in PhoneInput) (*models.Phone, error) {
	imei := strings.TrimSpace(in.IMEI)
	if imei == "" {
		return nil, validationError("VALIDATION_ERROR", "IMEI is required")
	}
	if in.PurchasePrice.IsNegative() || in.SellingPrice.IsNegative() {
		return nil, validationError("VALIDATION_ERROR", "Prices cannot be negative")
	}

	buyDate := s.now()
	if in.BuyDate != nil {
		buyDate = *in.BuyDate
	}

	phone := models.Phone{
		IMEI:          imei,
		ModelID:       in.ModelID,
		SupplierID:    in.SupplierID,
		ManagerID:     in.ManagerID,
		Capacity:      in.Capacity,
		PurchasePrice: in.PurchasePrice,
		SellingPrice:  in.SellingPrice,
		Status:        models.PhoneStatusActive,
		BuyDate:       buyDate,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkPhoneReferences(tx, in.ModelID, in.SupplierID, in.ManagerID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&phone).Error; err != nil {
			return translateWriteError(err, "IMEI_EXISTS", "A phone with this IMEI already exists")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, phone.ID)
}

// Update edits the stock details of a phone
func (s *PhoneService) Update(ctx context.Context, id uint, in PhoneUpdate) (*models.Phone, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		phone, err := findPhone(tx, id)
		if err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if in.IMEI != nil {
			imei := strings.TrimSpace(*in.IMEI)
			if imei == "" {
				return validationError("VALIDATION_ERROR", "IMEI cannot be empty")
			}
			updates["imei"] = imei
		}

		modelID, supplierID, managerID := phone.ModelID, phone.SupplierID, phone.ManagerID
		if in.ModelID != nil {
			modelID = *in.ModelID
			updates["model_id"] = modelID
		}
		if in.SupplierID != nil {
			supplierID = *in.SupplierID
			updates["supplier_id"] = supplierID
		}
		if in.ManagerID != nil {
			managerID = *in.ManagerID
			updates["manager_id"] = managerID
		}
		if err := checkPhoneReferences(tx, modelID, supplierID, managerID); err != nil {
			return err
		}

		if in.Capacity != nil {
			updates["capacity"] = *in.Capacity
		}
		if in.PurchasePrice != nil {
			if in.PurchasePrice.IsNegative() {
				return validationError("VALIDATION_ERROR", "Prices cannot be negative")
			}
			updates["purchase_price"] = *in.PurchasePrice
		}
		if in.SellingPrice != nil {
			if in.SellingPrice.IsNegative() {
				return validationError("VALIDATION_ERROR", "Prices cannot be negative")
			}
			updates["selling_price"] = *in.SellingPrice
		}
		if in.BuyDate != nil {
			updates["buy_date"] = *in.BuyDate
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(phone).Updates(updates).Error; err != nil {
			return translateWriteError(err, "IMEI_EXISTS", "A phone with this IMEI already exists")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// ToggleLost flips a phone between active and lost
func (s *PhoneService) ToggleLost(ctx context.Context, id uint) (*models.Phone, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		phone, err := findPhone(tx, id)
		if err != nil {
			return err
		}

		next := ""
		switch phone.Status {
		case models.PhoneStatusActive:
			next = models.PhoneStatusLost
		case models.PhoneStatusLost:
			next = models.PhoneStatusActive
		default:
			return validationError("INVALID_STATUS", "Only active or lost phones can be marked lost or found")
		}
		return tx.Model(phone).Update("status", next).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Sell records the sale of an active phone. The customer is looked up by ID
// number and created when absent. The agent commission is the caller's value
// when given, otherwise the commission resolved from the model's table for the
// manager's region, which may be null.
func (s *PhoneService) Sell(ctx context.Context, seller *models.User, in SaleInput) (*models.Phone, error) {
	company := strings.TrimSpace(in.Company)
	if company == "" {
		return nil, validationError("VALIDATION_ERROR", "Company is required")
	}
	if in.SellingPrice != nil && in.SellingPrice.IsNegative() {
		return nil, validationError("VALIDATION_ERROR", "Selling price cannot be negative")
	}
	if in.AgentCommission.Valid && in.AgentCommission.Decimal.IsNegative() {
		return nil, validationError("VALIDATION_ERROR", "Agent commission cannot be negative")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var phone models.Phone
		if err := tx.Preload("Model").Preload("Manager").First(&phone, in.PhoneID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("PHONE_NOT_FOUND", "Phone not found")
			}
			return err
		}

		if seller.IsManager() && phone.ManagerID != seller.ID {
			return forbiddenError("FORBIDDEN", "You can only sell phones assigned to you")
		}
		if phone.Status != models.PhoneStatusActive {
			return conflictError("PHONE_NOT_ACTIVE", "Only active phones can be sold")
		}

		customer, err := findOrCreateCustomer(tx, in.Customer)
		if err != nil {
			return err
		}

		commission := in.AgentCommission
		if !commission.Valid {
			commission = ResolvePhoneCommission(&phone)
		}

		saleDate := s.now()
		if in.SaleDate != nil {
			saleDate = *in.SaleDate
		}

		updates := map[string]interface{}{
			"status":           models.PhoneStatusSold,
			"sale_date":        saleDate,
			"company":          company,
			"customer_id":      customer.ID,
			"agent_commission": commission,
		}
		if in.SellingPrice != nil {
			updates["selling_price"] = *in.SellingPrice
		}
		return tx.Model(&phone).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, in.PhoneID)
}

// Reconcile marks a sold phone's proceeds as settled
func (s *PhoneService) Reconcile(ctx context.Context, id uint) (*models.Phone, error) {
	return s.transition(ctx, id, models.PhoneStatusSold, func(phone *models.Phone) map[string]interface{} {
		return map[string]interface{}{
			"status":         models.PhoneStatusReconcile,
			"reconcile_date": s.now(),
		}
	})
}

// Revert moves a reconciled phone back to sold
func (s *PhoneService) Revert(ctx context.Context, id uint) (*models.Phone, error) {
	return s.transition(ctx, id, models.PhoneStatusReconcile, func(phone *models.Phone) map[string]interface{} {
		return map[string]interface{}{
			"status":         models.PhoneStatusSold,
			"reconcile_date": nil,
		}
	})
}

func (s *PhoneService) transition(ctx context.Context, id uint, from string, updates func(*models.Phone) map[string]interface{}) (*models.Phone, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		phone, err := findPhone(tx, id)
		if err != nil {
			return err
		}
		if phone.Status != from {
			return validationError("INVALID_STATUS", "Phone must be "+from+" for this operation")
		}
		return tx.Model(phone).Updates(updates(phone)).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete removes a phone permanently
func (s *PhoneService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		phone, err := findPhone(tx, id)
		if err != nil {
			return err
		}
		return tx.Delete(phone).Error
	})
}

// Get loads a phone with its relations and current commission
func (s *PhoneService) Get(ctx context.Context, id uint) (*models.Phone, error) {
	var phone models.Phone
	if err := preloadPhone(s.db.WithContext(ctx)).First(&phone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("PHONE_NOT_FOUND", "Phone not found")
		}
		return nil, err
	}
	phone.Commission = ResolvePhoneCommission(&phone)
	return &phone, nil
}

// List returns the phones visible to viewer matching filter, newest first.
// Managers only ever see phones assigned to them.
func (s *PhoneService) List(ctx context.Context, viewer *models.User, filter PhoneFilter) ([]models.Phone, error) {
	query := preloadPhone(s.db.WithContext(ctx))

	if viewer.IsManager() {
		query = query.Where("phones.manager_id = ?", viewer.ID)
	} else if filter.ManagerID != 0 {
		query = query.Where("phones.manager_id = ?", filter.ManagerID)
	}
	if filter.ModelID != 0 {
		query = query.Where("phones.model_id = ?", filter.ModelID)
	}

	dateColumn := "phones.buy_date"
	if filter.Status != "" {
		query = query.Where("phones.status = ?", filter.Status)
		if filter.Status == models.PhoneStatusSold || filter.Status == models.PhoneStatusReconcile {
			dateColumn = "phones.sale_date"
		}
	}
	if filter.From != nil {
		query = query.Where(dateColumn+" >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where(dateColumn+" < ?", filter.To.AddDate(0, 0, 1))
	}

	var phones []models.Phone
	if err := query.Order("phones.id DESC").Find(&phones).Error; err != nil {
		return nil, err
	}
	for i := range phones {
		phones[i].Commission = ResolvePhoneCommission(&phones[i])
	}
	return phones, nil
}

// SoldBetween returns sold and reconciled phones with a sale date in [from, to)
func (s *PhoneService) SoldBetween(ctx context.Context, from, to time.Time) ([]models.Phone, error) {
	var phones []models.Phone
	err := preloadPhone(s.db.WithContext(ctx)).
		Where("phones.status IN ?", []string{models.PhoneStatusSold, models.PhoneStatusReconcile}).
		Where("phones.sale_date >= ? AND phones.sale_date < ?", from, to).
		Order("phones.sale_date ASC").
		Find(&phones).Error
	return phones, err
}

func preloadPhone(db *gorm.DB) *gorm.DB {
	return db.Preload("Model").
		Preload("Supplier").
		Preload("Manager").
		Preload("Customer")
}

func findPhone(tx *gorm.DB, id uint) (*models.Phone, error) {
	var phone models.Phone
	if err := tx.First(&phone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("PHONE_NOT_FOUND", "Phone not found")
		}
		return nil, err
	}
	return &phone, nil
}

func checkPhoneReferences(tx *gorm.DB, modelID, supplierID, managerID uint) error {
	var count int64
	if err := tx.Model(&models.PhoneModel{}).Where("id = ?", modelID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFoundError("MODEL_NOT_FOUND", "Phone model not found")
	}

	if err := tx.Model(&models.Supplier{}).Where("id = ?", supplierID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFoundError("SUPPLIER_NOT_FOUND", "Supplier not found")
	}

	var manager models.User
	if err := tx.First(&manager, managerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundError("MANAGER_NOT_FOUND", "Manager not found")
		}
		return err
	}
	if !manager.IsManager() {
		return validationError("INVALID_ROLE", "Phones can only be assigned to managers")
	}
	return nil
}

func findOrCreateCustomer(tx *gorm.DB, in CustomerInput) (*models.Customer, error) {
	idNumber := strings.TrimSpace(in.IDNumber)

	var customer models.Customer
	err := tx.Where("id_number = ?", idNumber).First(&customer).Error
	if err == nil {
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer = models.Customer{
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		IDNumber:    idNumber,
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		NkFirstName: strings.TrimSpace(in.NkFirstName),
		NkLastName:  strings.TrimSpace(in.NkLastName),
		NkPhone:     strings.TrimSpace(in.NkPhone),
	}
	if err := tx.Create(&customer).Error; err != nil {
		return nil, translateWriteError(err, "CUSTOMER_PHONE_EXISTS", "Another customer already uses this phone number")
	}
	return &customer, nil
}
