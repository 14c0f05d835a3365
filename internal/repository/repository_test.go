package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/volunteer-credits/internal/database/databasetest"
	"github.com/iliyamo/volunteer-credits/internal/model"
)

func newUser(t *testing.T, db *sqlx.DB, username string, kind model.UserType) *model.User {
	t.Helper()
	u, err := NewUserRepo(db).Create(context.Background(), NewUser{
		Username: username,
		Password: "password123",
		Name:     username,
		Email:    username + "@example.com",
		UserType: kind,
	}, 4)
	require.NoError(t, err)
	return u
}

func newOpportunity(t *testing.T, db *sqlx.DB, creatorID string, reward int) *model.Opportunity {
	t.Helper()
	o := &model.Opportunity{
		Title:            "Traffic duty",
		Description:      "Help at the junction",
		Category:         model.CategoryTrafficManagement,
		Location:         "Andheri",
		Date:             time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC),
		Duration:         4,
		VolunteersNeeded: 5,
		CreditsReward:    reward,
		CreatedByID:      creatorID,
	}
	require.NoError(t, NewOpportunityRepo(db).Create(context.Background(), o))
	return o
}

func TestUserRepo(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	users := NewUserRepo(db)

	badge := "MH-1001"
	u, err := users.Create(ctx, NewUser{
		Username: "officer", Password: "pw", Name: "Officer",
		Email: " Officer@Example.com ", UserType: model.UserTypePolice, BadgeNumber: &badge,
	}, 4)
	require.NoError(t, err)
	assert.Equal(t, "officer@example.com", u.Email)
	assert.Equal(t, 0, u.Credits)

	got, err := users.GetByUsername(ctx, "officer")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, model.UserTypePolice, got.UserType)
	require.NotNil(t, got.BadgeNumber)
	assert.Equal(t, badge, *got.BadgeNumber)
	assert.NotEqual(t, "pw", got.PasswordHash)

	_, err = users.Create(ctx, NewUser{Username: "officer", Password: "pw", Name: "x", Email: "other@example.com", UserType: model.UserTypeCitizen}, 4)
	assert.ErrorIs(t, err, ErrDuplicateUser)
	_, err = users.Create(ctx, NewUser{Username: "other", Password: "pw", Name: "x", Email: "officer@example.com", UserType: model.UserTypeCitizen}, 4)
	assert.ErrorIs(t, err, ErrDuplicateUser)

	_, err = users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTokenRepo(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	u := newUser(t, db, "citizen", model.UserTypeCitizen)
	tokens := NewTokenRepo(db)

	now := time.Now().UTC()
	require.NoError(t, tokens.StoreRefresh(ctx, u.ID, "live", now.Add(time.Hour)))
	require.NoError(t, tokens.StoreRefresh(ctx, u.ID, "expired", now.Add(-time.Hour)))

	uid, err := tokens.ValidateRefresh(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)

	_, err = tokens.ValidateRefresh(ctx, "expired")
	assert.ErrorIs(t, err, ErrInvalidRefresh)
	_, err = tokens.ValidateRefresh(ctx, "unknown")
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	require.NoError(t, tokens.RevokeByHash(ctx, "live"))
	assert.ErrorIs(t, tokens.RevokeByHash(ctx, "live"), ErrInvalidRefresh)
	_, err = tokens.ValidateRefresh(ctx, "live")
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	// Only the expired token is old enough to purge; the revoked one is recent.
	n, err := tokens.DeleteStale(ctx, now, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = tokens.DeleteStale(ctx, now, now.Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestOpportunityRepo(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	police := newUser(t, db, "police", model.UserTypePolice)
	other := newUser(t, db, "police2", model.UserTypePolice)
	opps := NewOpportunityRepo(db)

	first := newOpportunity(t, db, police.ID, 50)
	time.Sleep(2 * time.Millisecond)
	second := newOpportunity(t, db, police.ID, 20)
	newOpportunity(t, db, other.ID, 10)

	got, err := opps.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, first.Date.Equal(got.Date), "date round-trips")
	assert.True(t, got.IsActive)
	assert.Equal(t, 50, got.CreditsReward)

	mine, err := opps.ListByCreator(ctx, police.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID, "newest first")

	inactive := false
	title := "Updated"
	upd, err := opps.Update(ctx, second.ID, model.OpportunityPatch{Title: &title, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Updated", upd.Title)
	assert.False(t, upd.IsActive)

	active, err := opps.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)
	for _, o := range active {
		assert.NotEqual(t, second.ID, o.ID)
	}

	_, err = opps.Update(ctx, "missing", model.OpportunityPatch{Title: &title})
	assert.ErrorIs(t, err, ErrOpportunityNotFound)
	_, err = opps.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrOpportunityNotFound)
}

func TestApplicationRepo(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	police := newUser(t, db, "police", model.UserTypePolice)
	citizen := newUser(t, db, "citizen", model.UserTypeCitizen)
	opp := newOpportunity(t, db, police.ID, 50)
	apps := NewApplicationRepo(db)

	exists, err := apps.Exists(ctx, citizen.ID, opp.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	a, err := apps.Create(ctx, citizen.ID, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, a.Status)

	_, err = apps.Create(ctx, citizen.ID, opp.ID)
	assert.ErrorIs(t, err, ErrAlreadyApplied, "storage-level uniqueness")

	_, err = apps.UpdateStatus(ctx, a.ID, model.StatusPending, model.StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	upd, err := apps.UpdateStatus(ctx, a.ID, model.StatusPending, model.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, upd.Status)
	assert.Nil(t, upd.CompletedAt)

	// Stale "from" status loses.
	_, err = apps.UpdateStatus(ctx, a.ID, model.StatusPending, model.StatusRejected)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	at := time.Now().UTC()
	require.NoError(t, apps.CompleteTx(ctx, tx, a.ID, at))
	assert.ErrorIs(t, apps.CompleteTx(ctx, tx, a.ID, at), ErrInvalidTransition)
	require.NoError(t, tx.Commit())

	done, err := apps.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.WithinDuration(t, at, *done.CompletedAt, time.Second)

	byOpp, err := apps.ListByOpportunity(ctx, opp.ID)
	require.NoError(t, err)
	assert.Len(t, byOpp, 1)
	byUser, err := apps.ListByUser(ctx, citizen.ID)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)
}

func TestStatsRepo(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	police := newUser(t, db, "police", model.UserTypePolice)
	apps := NewApplicationRepo(db)

	opp := newOpportunity(t, db, police.ID, 10)
	closed := newOpportunity(t, db, police.ID, 10)
	inactive := false
	_, err := NewOpportunityRepo(db).Update(ctx, closed.ID, model.OpportunityPatch{IsActive: &inactive})
	require.NoError(t, err)

	statuses := []model.ApplicationStatus{model.StatusPending, model.StatusPending, model.StatusApproved, model.StatusRejected}
	for i, st := range statuses {
		c := newUser(t, db, "citizen"+string(rune('a'+i)), model.UserTypeCitizen)
		a, err := apps.Create(ctx, c.ID, opp.ID)
		require.NoError(t, err)
		if st != model.StatusPending {
			_, err = apps.UpdateStatus(ctx, a.ID, model.StatusPending, st)
			require.NoError(t, err)
		}
	}

	stats, err := NewStatsRepo(db).PoliceStats(ctx, police.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PoliceStats{
		ActiveOpportunities: 1,
		TotalVolunteers:     1,
		PendingApplications: 2,
		CompletedTasks:      0,
	}, stats)

	empty, err := NewStatsRepo(db).PoliceStats(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, model.PoliceStats{}, empty)
}

func TestRewardRepo(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	rewards := NewRewardRepo(db)

	featured := &model.Reward{Title: "Coffee", Description: "d", Brand: "Starbucks", Category: "Food", CreditsRequired: 200, IsActive: true, IsFeatured: true}
	plain := &model.Reward{Title: "Tickets", Description: "d", Brand: "BookMyShow", Category: "Fun", CreditsRequired: 600, IsActive: true}
	hidden := &model.Reward{Title: "Old", Description: "d", Brand: "Gone", Category: "Fun", CreditsRequired: 100, IsActive: false, IsFeatured: true}
	for _, rw := range []*model.Reward{featured, plain, hidden} {
		require.NoError(t, rewards.Create(ctx, rw))
	}

	all, err := rewards.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	feat, err := rewards.ListFeatured(ctx)
	require.NoError(t, err)
	require.Len(t, feat, 1)
	assert.Equal(t, featured.ID, feat[0].ID)

	got, err := rewards.GetByID(ctx, hidden.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	_, err = rewards.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrRewardNotFound)

	ok, err := rewards.ExistsByBrandTitle(ctx, "Starbucks", "Coffee")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = rewards.ExistsByBrandTitle(ctx, "Starbucks", "Tea")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedgerRepoDebitIsConditional(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	u := newUser(t, db, "citizen", model.UserTypeCitizen)
	ledger := NewLedgerRepo(db)

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, ledger.CreditTx(ctx, tx, u.ID, 30))
	require.NoError(t, ledger.AppendTx(ctx, tx, &model.Transaction{UserID: u.ID, Type: model.TransactionEarned, Amount: 30, Description: "seed"}))
	assert.ErrorIs(t, ledger.DebitTx(ctx, tx, u.ID, 31), ErrInsufficientCredits)
	require.NoError(t, ledger.DebitTx(ctx, tx, u.ID, 30))
	require.NoError(t, ledger.AppendTx(ctx, tx, &model.Transaction{UserID: u.ID, Type: model.TransactionSpent, Amount: 30, Description: "spend"}))
	bal, err := ledger.BalanceTx(ctx, tx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, bal)
	assert.ErrorIs(t, ledger.DebitTx(ctx, tx, "ghost", 1), ErrUserNotFound)
	assert.ErrorIs(t, ledger.CreditTx(ctx, tx, "ghost", 1), ErrUserNotFound)
	require.NoError(t, tx.Commit())

	sum, err := ledger.LedgerSum(ctx, db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sum)

	txs, err := ledger.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}
