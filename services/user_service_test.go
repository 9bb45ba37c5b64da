package services

import (
	"context"
	"testing"
	"time"

	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/Mghendi-Pato/pointofsale-sub000/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreateAndAuthenticate(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewUserService(db)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	super := seedUser(t, db, "Root", models.RoleSuperAdmin, nil)
	region := seedLocation(t, db, "Thika")

	user, err := svc.Create(ctx, &super, UserInput{
		FirstName:  "Alice",
		LastName:   "Wanjiru",
		Email:      " Alice@Example.com ",
		Password:   "correct-horse",
		Role:       models.RoleManager,
		RegionID:   &region.ID,
		Commission: decimal.NewNullDecimal(decimal.NewFromInt(300)),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "correct-horse", user.Password)
	require.NotNil(t, user.Region)
	assert.Equal(t, "Thika", user.Region.Name)

	_, err = svc.Create(ctx, &super, UserInput{
		FirstName: "Dup", LastName: "Dup", Email: "alice@example.com", Password: "correct-horse", Role: models.RoleManager,
	})
	requireServiceError(t, err, KindConflict, "USER_EXISTS")

	signedIn, err := svc.Authenticate(ctx, "ALICE@example.com", "correct-horse")
	require.NoError(t, err)
	require.NotNil(t, signedIn.LastLogin)
	assert.True(t, signedIn.LastLogin.Equal(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))

	_, err = svc.Authenticate(ctx, "alice@example.com", "wrong")
	requireServiceError(t, err, KindUnauthorized, "INVALID_CREDENTIALS")

	_, err = svc.Authenticate(ctx, "nobody@example.com", "correct-horse")
	requireServiceError(t, err, KindUnauthorized, "INVALID_CREDENTIALS")
}

func TestUserCreate_Rules(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	admin := seedUser(t, db, "Admin", models.RoleAdmin, nil)
	base := UserInput{FirstName: "B", LastName: "C", Email: "b@example.com", Password: "long-enough", Role: models.RoleManager}

	in := base
	in.Role = models.RoleAdmin
	_, err := svc.Create(ctx, &admin, in)
	requireServiceError(t, err, KindForbidden, "FORBIDDEN")

	in = base
	in.Role = "janitor"
	_, err = svc.Create(ctx, &admin, in)
	requireServiceError(t, err, KindValidation, "INVALID_ROLE")

	in = base
	in.Password = "short"
	_, err = svc.Create(ctx, &admin, in)
	requireServiceError(t, err, KindValidation, "WEAK_PASSWORD")

	in = base
	in.RegionID = uintPtr(999)
	_, err = svc.Create(ctx, &admin, in)
	requireServiceError(t, err, KindValidation, "REGION_NOT_FOUND")

	_, err = svc.Create(ctx, &admin, base)
	require.NoError(t, err)
}

func TestAuthenticate_Suspended(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewUserService(db)

	hash, err := utils.HashPassword("correct-horse")
	require.NoError(t, err)
	user := models.User{
		FirstName: "Sus", LastName: "Pended", Email: "sus@example.com",
		Password: hash, Role: models.RoleManager, Status: models.StatusSuspended,
	}
	require.NoError(t, db.Create(&user).Error)

	_, err = svc.Authenticate(context.Background(), "sus@example.com", "correct-horse")
	requireServiceError(t, err, KindForbidden, "ACCOUNT_SUSPENDED")
}

func TestUserUpdate_RoleChangeEvictsFromPools(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewUserService(db)
	pools := NewPoolService(db)
	ctx := context.Background()

	super := seedUser(t, db, "Root", models.RoleSuperAdmin, nil)
	head := seedManager(t, db, "Head")
	member := seedManager(t, db, "Member")
	pool, err := pools.Create(ctx, PoolInput{Name: "P", SuperManagerID: head.ID, MemberIDs: []uint{member.ID}})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, &super, member.ID, UserUpdate{Role: stringPtr(models.RoleShopKeeper)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleShopKeeper, updated.Role)

	pool, err = pools.Get(ctx, pool.ID)
	require.NoError(t, err)
	assert.Empty(t, pool.Members)

	_, err = svc.Update(ctx, &super, member.ID, UserUpdate{Role: stringPtr("janitor")})
	requireServiceError(t, err, KindValidation, "INVALID_ROLE")
}

func TestUserUpdate_AdminNeedsSuperAdmin(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	admin := seedUser(t, db, "Admin", models.RoleAdmin, nil)
	otherAdmin := seedUser(t, db, "Other", models.RoleAdmin, nil)
	manager := seedManager(t, db, "Manager")

	_, err := svc.Update(ctx, &admin, otherAdmin.ID, UserUpdate{FirstName: stringPtr("X")})
	requireServiceError(t, err, KindForbidden, "FORBIDDEN")

	_, err = svc.Update(ctx, &admin, manager.ID, UserUpdate{Role: stringPtr(models.RoleAdmin)})
	requireServiceError(t, err, KindForbidden, "FORBIDDEN")

	updated, err := svc.Update(ctx, &admin, manager.ID, UserUpdate{FirstName: stringPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.FirstName)
}

func TestUserChangePassword(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	hash, err := utils.HashPassword("old-password")
	require.NoError(t, err)
	user := models.User{FirstName: "P", LastName: "W", Email: "pw@example.com", Password: hash, Role: models.RoleManager, Status: models.StatusActive}
	require.NoError(t, db.Create(&user).Error)

	err = svc.ChangePassword(ctx, user.ID, "wrong-password", "new-password")
	requireServiceError(t, err, KindValidation, "INVALID_PASSWORD")

	err = svc.ChangePassword(ctx, user.ID, "old-password", "short")
	requireServiceError(t, err, KindValidation, "WEAK_PASSWORD")

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "old-password", "new-password"))
	_, err = svc.Authenticate(ctx, "pw@example.com", "new-password")
	require.NoError(t, err)
}

func TestUserToggleStatusAndDelete(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewUserService(db)
	pools := NewPoolService(db)
	ctx := context.Background()

	admin := seedUser(t, db, "Admin", models.RoleAdmin, nil)
	manager := seedManager(t, db, "Manager")

	_, err := svc.ToggleStatus(ctx, &admin, admin.ID)
	requireServiceError(t, err, KindValidation, "SELF_SUSPEND")

	suspended, err := svc.ToggleStatus(ctx, &admin, manager.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, suspended.Status)

	active, err := svc.ToggleStatus(ctx, &admin, manager.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, active.Status)

	pool, err := pools.Create(ctx, PoolInput{Name: "Solo", SuperManagerID: manager.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, &admin, manager.ID))
	_, err = svc.Get(ctx, manager.ID)
	requireServiceError(t, err, KindNotFound, "USER_NOT_FOUND")

	pool, err = pools.Get(ctx, pool.ID)
	require.NoError(t, err)
	assert.Nil(t, pool.SuperManagerID)

	err = svc.Delete(ctx, &admin, admin.ID)
	requireServiceError(t, err, KindValidation, "SELF_DELETE")
}

func TestUserList(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewUserService(db)

	seedManager(t, db, "Bob")
	seedManager(t, db, "Amy")
	seedUser(t, db, "Cat", models.RoleAdmin, nil)

	managers, err := svc.List(context.Background(), UserFilter{Role: models.RoleManager})
	require.NoError(t, err)
	require.Len(t, managers, 2)
	assert.Equal(t, "Amy", managers[0].FirstName)

	all, err := svc.List(context.Background(), UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
