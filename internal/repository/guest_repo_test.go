package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-core/internal/models"
)

func TestGuestRepository_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGuestRepository(db)
	ctx := context.Background()

	guest := &models.Guest{Name: "Alice", Contact: "555-0001", GuestType: models.GuestTypeRegular}
	require.NoError(t, repo.Create(ctx, guest))
	assert.NotZero(t, guest.ID)

	found, err := repo.GetByID(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Name)

	found.GuestType = models.GuestTypeVIP
	found.DiscountRate = 0.3
	require.NoError(t, repo.Update(ctx, found))

	updated, err := repo.GetByID(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GuestTypeVIP, updated.GuestType)
	assert.InDelta(t, 0.3, updated.DiscountRate, 1e-9)

	require.NoError(t, repo.Delete(ctx, guest.ID))
	_, err = repo.GetByID(ctx, guest.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGuestRepository_ExistsByContact(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGuestRepository(db)
	ctx := context.Background()

	alice := createGuest(t, db, "Alice", "555-0001", models.GuestTypeRegular)

	exists, err := repo.ExistsByContact(ctx, "555-0001", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	// 更新自身时排除自己
	exists, err = repo.ExistsByContact(ctx, "555-0001", alice.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// 精确匹配，区分大小写
	createGuest(t, db, "Bob", "bob@example.com", models.GuestTypeRegular)
	exists, err = repo.ExistsByContact(ctx, "BOB@example.com", 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGuestRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGuestRepository(db)
	ctx := context.Background()

	createGuest(t, db, "Alice Smith", "555-0001", models.GuestTypeRegular)
	createGuest(t, db, "Bob Jones", "555-0002", models.GuestTypeVIP)
	createGuest(t, db, "Carol Smith", "555-0003", models.GuestTypeVIP)

	t.Run("全部", func(t *testing.T) {
		list, total, err := repo.List(ctx, 0, 10, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, list, 3)
	})

	t.Run("按类型", func(t *testing.T) {
		list, total, err := repo.List(ctx, 0, 10, &GuestFilter{GuestType: "vip"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, list, 2)
	})

	t.Run("按关键字", func(t *testing.T) {
		list, total, err := repo.List(ctx, 0, 10, &GuestFilter{Keyword: "SMITH"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, list, 2)
	})

	t.Run("分页", func(t *testing.T) {
		list, total, err := repo.List(ctx, 2, 2, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, list, 1)
		assert.Equal(t, "Carol Smith", list[0].Name)
	})
}

func TestGuestRepository_SearchByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGuestRepository(db)
	ctx := context.Background()

	createGuest(t, db, "Alice Smith", "555-0001", models.GuestTypeRegular)
	createGuest(t, db, "Bob Jones", "555-0002", models.GuestTypeRegular)

	guests, err := repo.SearchByName(ctx, "ali", 10)
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, "Alice Smith", guests[0].Name)
}

func TestGuestRepository_CountByType(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGuestRepository(db)
	ctx := context.Background()

	createGuest(t, db, "Alice", "555-0001", models.GuestTypeRegular)
	createGuest(t, db, "Bob", "555-0002", models.GuestTypeVIP)
	createGuest(t, db, "Carol", "555-0003", models.GuestTypeVIP)

	counts, err := repo.CountByType(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.GuestTypeRegular])
	assert.Equal(t, int64(2), counts[models.GuestTypeVIP])
}

func TestGuestRepository_WithTx(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGuestRepository(db)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := repo.WithTx(tx).Create(ctx, &models.Guest{Name: "Tx", Contact: "555-9999", GuestType: models.GuestTypeRegular}); err != nil {
			return err
		}
		return gorm.ErrInvalidTransaction
	})
	require.Error(t, err)

	exists, err := repo.ExistsByContact(ctx, "555-9999", 0)
	require.NoError(t, err)
	assert.False(t, exists, "回滚后不应存在")
}
