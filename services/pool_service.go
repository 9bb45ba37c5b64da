package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PoolInput carries the fields needed to create a pool
type PoolInput struct {
	Name           string
	SuperManagerID uint
	MemberIDs      []uint
	PoolCommission decimal.Decimal
}

// PoolUpdate carries the optional fields of a pool edit. Nil fields are left
// untouched; a nil MemberIDs keeps the current membership while an empty
// slice clears it.
type PoolUpdate struct {
	Name           *string
	SuperManagerID *uint
	MemberIDs      []uint
	PoolCommission *decimal.Decimal
}

// PoolManagerView is the public shape of a manager inside a pool
type PoolManagerView struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// PoolView is a pool with its resolved super-manager and members
type PoolView struct {
	ID             uint              `json:"id"`
	Name           string            `json:"name"`
	SuperManagerID *uint             `json:"superManagerId"`
	SuperManager   *PoolManagerView  `json:"superManager"`
	PoolCommission decimal.Decimal   `json:"poolCommission"`
	Members        []PoolManagerView `json:"members"`
	MemberCount    int               `json:"memberCount"`
}

// PoolService keeps every manager in at most one pool and in at most one
// role (super-manager or member). Each operation runs in one transaction.
type PoolService struct {
	db *gorm.DB
}

// NewPoolService creates a pool service bound to db
func NewPoolService(db *gorm.DB) *PoolService {
	return &PoolService{db: db}
}

// Create creates a pool, first evicting the super-manager and every member
// from whatever pool role they held before.
func (s *PoolService) Create(ctx context.Context, in PoolInput) (*PoolView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("VALIDATION_ERROR", "Pool name is required")
	}
	if in.PoolCommission.IsNegative() {
		return nil, validationError("VALIDATION_ERROR", "Pool commission cannot be negative")
	}

	var poolID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePoolNameFree(tx, name, 0); err != nil {
			return err
		}
		if err := requireManager(tx, in.SuperManagerID); err != nil {
			return err
		}

		superID := in.SuperManagerID
		if err := evictFromSuperRoles(tx, []uint{superID}, 0); err != nil {
			return err
		}
		if err := evictFromMemberships(tx, []uint{superID}, 0); err != nil {
			return err
		}

		pool := models.Pool{
			Name:           name,
			SuperManagerID: &superID,
			PoolCommission: in.PoolCommission,
		}
		if err := tx.Omit(clause.Associations).Create(&pool).Error; err != nil {
			return translateWriteError(err, "POOL_EXISTS", "A pool with this name already exists")
		}

		memberIDs, err := managerIDs(tx, withoutID(uniqueIDs(in.MemberIDs), superID))
		if err != nil {
			return err
		}
		if err := evictFromSuperRoles(tx, memberIDs, pool.ID); err != nil {
			return err
		}
		if err := evictFromMemberships(tx, memberIDs, 0); err != nil {
			return err
		}
		if err := addMembers(tx, pool.ID, memberIDs); err != nil {
			return err
		}

		poolID = pool.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, poolID)
}

// Update edits a pool in place. A new super-manager is evicted from any
// prior role; added members are evicted from other pools, removed members
// lose their membership in this pool only.
func (s *PoolService) Update(ctx context.Context, id uint, in PoolUpdate) (*PoolView, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pool models.Pool
		if err := tx.First(&pool, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("POOL_NOT_FOUND", "Pool not found")
			}
			return err
		}

		updates := make(map[string]interface{})

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return validationError("VALIDATION_ERROR", "Pool name cannot be empty")
			}
			if name != pool.Name {
				if err := ensurePoolNameFree(tx, name, pool.ID); err != nil {
					return err
				}
				updates["name"] = name
			}
		}

		superID := pool.SuperManagerID
		if in.SuperManagerID != nil && (superID == nil || *superID != *in.SuperManagerID) {
			newSuper := *in.SuperManagerID
			if err := requireManager(tx, newSuper); err != nil {
				return err
			}
			if err := evictFromSuperRoles(tx, []uint{newSuper}, pool.ID); err != nil {
				return err
			}
			if err := evictFromMemberships(tx, []uint{newSuper}, 0); err != nil {
				return err
			}
			updates["super_manager_id"] = newSuper
			superID = &newSuper
		}

		if in.PoolCommission != nil {
			if in.PoolCommission.IsNegative() {
				return validationError("VALIDATION_ERROR", "Pool commission cannot be negative")
			}
			updates["pool_commission"] = *in.PoolCommission
		}

		if len(updates) > 0 {
			if err := tx.Model(&pool).Updates(updates).Error; err != nil {
				return translateWriteError(err, "POOL_EXISTS", "A pool with this name already exists")
			}
		}

		if in.MemberIDs == nil {
			return nil
		}

		desired := uniqueIDs(in.MemberIDs)
		if superID != nil {
			desired = withoutID(desired, *superID)
		}
		desired, err := managerIDs(tx, desired)
		if err != nil {
			return err
		}

		current, err := poolMemberIDs(tx, pool.ID)
		if err != nil {
			return err
		}

		removed := difference(current, desired)
		added := difference(desired, current)

		if len(removed) > 0 {
			if err := tx.Where("pool_id = ? AND manager_id IN ?", pool.ID, removed).
				Delete(&models.PoolMember{}).Error; err != nil {
				return err
			}
		}
		if err := evictFromSuperRoles(tx, added, pool.ID); err != nil {
			return err
		}
		if err := evictFromMemberships(tx, added, pool.ID); err != nil {
			return err
		}
		return addMembers(tx, pool.ID, added)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete removes a pool and its memberships, returning the former member count
func (s *PoolService) Delete(ctx context.Context, id uint) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pool models.Pool
		if err := tx.First(&pool, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("POOL_NOT_FOUND", "Pool not found")
			}
			return err
		}

		if err := tx.Model(&models.PoolMember{}).Where("pool_id = ?", pool.ID).Count(&count).Error; err != nil {
			return err
		}
		if err := tx.Where("pool_id = ?", pool.ID).Delete(&models.PoolMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&pool).Error
	})
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

// Get loads one pool with its super-manager and members
func (s *PoolService) Get(ctx context.Context, id uint) (*PoolView, error) {
	var pool models.Pool
	if err := preloadPool(s.db.WithContext(ctx)).First(&pool, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("POOL_NOT_FOUND", "Pool not found")
		}
		return nil, err
	}

	view := newPoolView(pool)
	return &view, nil
}

// List returns every pool ordered by name
func (s *PoolService) List(ctx context.Context) ([]PoolView, error) {
	var pools []models.Pool
	if err := preloadPool(s.db.WithContext(ctx)).Order("name ASC").Find(&pools).Error; err != nil {
		return nil, err
	}

	views := make([]PoolView, 0, len(pools))
	for _, pool := range pools {
		views = append(views, newPoolView(pool))
	}
	return views, nil
}

// EvictManager removes a manager from every pool role. Call it inside the
// transaction that deletes the manager or takes the manager role away.
func EvictManager(tx *gorm.DB, managerID uint) error {
	if err := evictFromSuperRoles(tx, []uint{managerID}, 0); err != nil {
		return err
	}
	return evictFromMemberships(tx, []uint{managerID}, 0)
}

func preloadPool(db *gorm.DB) *gorm.DB {
	return db.Preload("SuperManager").
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("pool_members.id ASC") }).
		Preload("Members.Manager")
}

func newPoolView(pool models.Pool) PoolView {
	view := PoolView{
		ID:             pool.ID,
		Name:           pool.Name,
		SuperManagerID: pool.SuperManagerID,
		PoolCommission: pool.PoolCommission,
		Members:        make([]PoolManagerView, 0, len(pool.Members)),
	}
	if pool.SuperManager != nil {
		view.SuperManager = &PoolManagerView{
			ID:        pool.SuperManager.ID,
			FirstName: pool.SuperManager.FirstName,
			LastName:  pool.SuperManager.LastName,
		}
	}
	for _, member := range pool.Members {
		view.Members = append(view.Members, PoolManagerView{
			ID:        member.ManagerID,
			FirstName: member.Manager.FirstName,
			LastName:  member.Manager.LastName,
		})
	}
	view.MemberCount = len(view.Members)
	return view
}

func ensurePoolNameFree(tx *gorm.DB, name string, exceptID uint) error {
	var count int64
	query := tx.Model(&models.Pool{}).Where("name = ?", name)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return conflictError("POOL_EXISTS", "A pool with this name already exists")
	}
	return nil
}

func requireManager(tx *gorm.DB, id uint) error {
	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundError("MANAGER_NOT_FOUND", "Super manager not found")
		}
		return err
	}
	if !user.IsManager() {
		return validationError("INVALID_ROLE", "Super manager must have the manager role")
	}
	return nil
}

// managerIDs keeps the ids that belong to existing managers, in input order
func managerIDs(tx *gorm.DB, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return []uint{}, nil
	}

	var found []uint
	if err := tx.Model(&models.User{}).
		Where("id IN ? AND role = ?", ids, models.RoleManager).
		Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	valid := make(map[uint]bool, len(found))
	for _, id := range found {
		valid[id] = true
	}

	out := make([]uint, 0, len(found))
	for _, id := range ids {
		if valid[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func poolMemberIDs(tx *gorm.DB, poolID uint) ([]uint, error) {
	var ids []uint
	err := tx.Model(&models.PoolMember{}).Where("pool_id = ?", poolID).Order("id ASC").Pluck("manager_id", &ids).Error
	return ids, err
}

// evictFromSuperRoles clears the super-manager slot of every pool (other than
// exceptPoolID) headed by one of ids
func evictFromSuperRoles(tx *gorm.DB, ids []uint, exceptPoolID uint) error {
	if len(ids) == 0 {
		return nil
	}
	query := tx.Model(&models.Pool{}).Where("super_manager_id IN ?", ids)
	if exceptPoolID != 0 {
		query = query.Where("id <> ?", exceptPoolID)
	}
	return query.Update("super_manager_id", nil).Error
}

// evictFromMemberships deletes the membership rows of ids in every pool
// other than exceptPoolID
func evictFromMemberships(tx *gorm.DB, ids []uint, exceptPoolID uint) error {
	if len(ids) == 0 {
		return nil
	}
	query := tx.Where("manager_id IN ?", ids)
	if exceptPoolID != 0 {
		query = query.Where("pool_id <> ?", exceptPoolID)
	}
	return query.Delete(&models.PoolMember{}).Error
}

func addMembers(tx *gorm.DB, poolID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	rows := make([]models.PoolMember, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.PoolMember{PoolID: poolID, ManagerID: id})
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return translateWriteError(err, "MANAGER_ALREADY_IN_POOL", "A manager is already assigned to a pool")
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func withoutID(ids []uint, drop uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

// difference returns the elements of a that are not in b
func difference(a, b []uint) []uint {
	inB := make(map[uint]bool, len(b))
	for _, id := range b {
		inB[id] = true
	}
	var out []uint
	for _, id := range a {
		if !inB[id] {
			out = append(out, id)
		}
	}
	return out
}
