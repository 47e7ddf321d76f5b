package referral

import (
	"fmt"
	"strings"
	"testing"

	"piogold-backend/models"
	"piogold-backend/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *storage.DBClient {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	dbc := storage.NewClient(db)
	require.NoError(t, dbc.AutoMigrate())
	return dbc
}

func TestDistributeNoReferrer(t *testing.T) {
	dbc := newTestDB(t)
	buyer, err := dbc.CreateUser("0xbuyer", "")
	require.NoError(t, err)

	created, err := NewEngine(dbc).Distribute("order-1", buyer.UserId, 500, 85)
	require.NoError(t, err)
	require.Zero(t, created)

	referrals, err := dbc.ReferralsByOrder("order-1")
	require.NoError(t, err)
	require.Empty(t, referrals)
}

func TestDistributeTwoLevelUpline(t *testing.T) {
	dbc := newTestDB(t)

	grandparent, err := dbc.CreateUser("0xgp", "")
	require.NoError(t, err)
	parent, err := dbc.CreateUser("0xparent", grandparent.UserId)
	require.NoError(t, err)
	buyer, err := dbc.CreateUser("0xbuyer", parent.UserId)
	require.NoError(t, err)

	created, err := NewEngine(dbc).Distribute("order-1", buyer.UserId, 500, 85)
	require.NoError(t, err)
	require.Equal(t, 2, created)

	referrals, err := dbc.ReferralsByOrder("order-1")
	require.NoError(t, err)
	require.Len(t, referrals, 2)

	require.Equal(t, 1, referrals[0].Level)
	require.Equal(t, parent.UserId, referrals[0].ReferrerId)
	require.Equal(t, buyer.UserId, referrals[0].RefereeId)
	require.Equal(t, 50.0, referrals[0].RewardUsdt)
	require.Equal(t, models.ReferralStatusPending, referrals[0].Status)

	require.Equal(t, 2, referrals[1].Level)
	require.Equal(t, grandparent.UserId, referrals[1].ReferrerId)
	require.Equal(t, 25.0, referrals[1].RewardUsdt)
}

func TestDistributeThreeLevelsMax(t *testing.T) {
	dbc := newTestDB(t)

	top, err := dbc.CreateUser("0xl4", "")
	require.NoError(t, err)
	l3, err := dbc.CreateUser("0xl3", top.UserId)
	require.NoError(t, err)
	l2, err := dbc.CreateUser("0xl2", l3.UserId)
	require.NoError(t, err)
	l1, err := dbc.CreateUser("0xl1", l2.UserId)
	require.NoError(t, err)
	buyer, err := dbc.CreateUser("0xbuyer", l1.UserId)
	require.NoError(t, err)

	created, err := NewEngine(dbc).Distribute("order-1", buyer.UserId, 1000, 85)
	require.NoError(t, err)
	require.Equal(t, 3, created)

	referrals, err := dbc.ReferralsByOrder("order-1")
	require.NoError(t, err)
	require.Len(t, referrals, 3)
	require.Equal(t, 100.0, referrals[0].RewardUsdt)
	require.Equal(t, 50.0, referrals[1].RewardUsdt)
	require.Equal(t, 30.0, referrals[2].RewardUsdt)
}

// Rewards convert at the price locked into the order, so a later global price
// change must not alter them.
func TestDistributeUsesLockedPrice(t *testing.T) {
	dbc := newTestDB(t)

	referrer, err := dbc.CreateUser("0xref", "")
	require.NoError(t, err)
	buyer, err := dbc.CreateUser("0xbuyer", referrer.UserId)
	require.NoError(t, err)

	lockedPrice := 85.0
	_, err = NewEngine(dbc).Distribute("order-1", buyer.UserId, 500, lockedPrice)
	require.NoError(t, err)

	newPrice := 170.0
	require.NoError(t, dbc.UpdateSettings(&storage.SettingsPatch{GoldPricePerGram: &newPrice}))

	referrals, err := dbc.ReferralsByOrder("order-1")
	require.NoError(t, err)
	require.Len(t, referrals, 1)
	require.InDelta(t, 50.0/lockedPrice, referrals[0].RewardPio, 1e-8)
}

func TestDistributeBreaksOnCycle(t *testing.T) {
	dbc := newTestDB(t)

	a, err := dbc.CreateUser("0xa", "")
	require.NoError(t, err)
	b, err := dbc.CreateUser("0xb", a.UserId)
	require.NoError(t, err)

	// Corrupt the graph: a refers b, b refers a.
	require.NoError(t, dbc.DB.Model(&models.User{}).
		Where("user_id = ?", a.UserId).Update("referrer_id", b.UserId).Error)

	// b's upline is a; a's upline is b again, which the walk must refuse to
	// revisit.
	created, err := NewEngine(dbc).Distribute("order-1", b.UserId, 500, 85)
	require.NoError(t, err)
	require.Equal(t, 1, created)

	referrals, err := dbc.ReferralsByOrder("order-1")
	require.NoError(t, err)
	require.Len(t, referrals, 1)
	require.Equal(t, a.UserId, referrals[0].ReferrerId)
}
