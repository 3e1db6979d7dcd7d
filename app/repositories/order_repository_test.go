package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/shashiranjanraj/commandes/app/models"
	"github.com/shashiranjanraj/commandes/app/repositories"
	"github.com/shashiranjanraj/commandes/pkg/testkit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Wednesday 13 March 2024, 10:00 UTC.
var wednesday = time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)

func newRepo(t *testing.T, opts ...repositories.OrderOption) (*repositories.OrderRepository, *gorm.DB) {
	t.Helper()
	db := testkit.DB(t)
	opts = append([]repositories.OrderOption{
		repositories.WithLocation(time.UTC),
		repositories.WithClock(func() time.Time { return wednesday }),
	}, opts...)
	return repositories.NewOrderRepository(db, opts...), db
}

func order(nom, wilaya string, status models.OrderStatus, total string, at time.Time) *models.Order {
	return &models.Order{
		Nom:       nom,
		Prenom:    "Ali",
		Wilaya:    wilaya,
		Total:     decimal.RequireFromString(total),
		Quantite:  1,
		Status:    status,
		CreatedAt: at,
	}
}

func mustCreate(t *testing.T, repo *repositories.OrderRepository, o *models.Order, images ...models.OrderImage) *models.Order {
	t.Helper()
	created, err := repo.Create(context.Background(), o, images)
	require.NoError(t, err)
	return created
}

func img(name string) models.OrderImage {
	return models.OrderImage{URL: "/uploads/commandes/" + name, Name: name}
}

func TestCreateAndFindByID(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	desc := "Lit double"

	o := order("Ben", "Alger", "", "1500.50", time.Time{})
	o.Quantite = 2
	o.Description = &desc
	created := mustCreate(t, repo, o, img("a.jpg"), img("b.png"), img("c.gif"))

	require.NotZero(t, created.ID)
	assert.Equal(t, models.StatusConfirmed, created.Status)
	require.Len(t, created.Images, 3)

	got, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ben", got.Nom)
	assert.Equal(t, "Ali", got.Prenom)
	assert.Equal(t, "Alger", got.Wilaya)
	assert.True(t, decimal.RequireFromString("1500.50").Equal(got.Total), "total = %s", got.Total)
	assert.Equal(t, 2, got.Quantite)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)
	assert.Nil(t, got.Obs)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.False(t, got.CreatedAt.IsZero())

	require.Len(t, got.Images, 3)
	for i, name := range []string{"a.jpg", "b.png", "c.gif"} {
		assert.Equal(t, name, got.Images[i].Name)
		assert.NotEmpty(t, got.Images[i].URL)
		assert.Equal(t, created.ID, got.Images[i].CommandeID)
	}
}

func TestFindByIDMissing(t *testing.T) {
	repo, _ := newRepo(t)
	_, err := repo.FindByID(context.Background(), 4242)
	assert.ErrorIs(t, err, repositories.ErrOrderNotFound)
}

func TestCreateWithoutImagesReturnsEmptySlice(t *testing.T) {
	repo, _ := newRepo(t)
	created := mustCreate(t, repo, order("Ben", "Oran", models.StatusDelivered, "10", wednesday))
	assert.NotNil(t, created.Images)
	assert.Empty(t, created.Images)

	got, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Images)
	assert.Empty(t, got.Images)
}

func TestCreateRollsBackOnConstraintViolation(t *testing.T) {
	repo, db := newRepo(t)
	bad := order("Ben", "Oran", "", "5", wednesday)
	bad.Quantite = -1
	_, err := repo.Create(context.Background(), bad, []models.OrderImage{img("a.jpg")})
	require.Error(t, err)

	var orders, images int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderImage{}).Count(&images).Error)
	assert.Zero(t, orders)
	assert.Zero(t, images)
}

func TestFindAllFiltersAndOrder(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, order("A", "Alger", models.StatusConfirmed, "100", wednesday.Add(-3*time.Hour)))
	mustCreate(t, repo, order("B", "Oran", models.StatusDelivered, "200", wednesday.Add(-2*time.Hour)), img("b.jpg"))
	mustCreate(t, repo, order("C", "Alger", models.StatusDelivered, "300", wednesday.Add(-1*time.Hour)))

	all, err := repo.FindAll(ctx, 1, 10, repositories.OrderFilters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"C", "B", "A"}, []string{all[0].Nom, all[1].Nom, all[2].Nom})
	assert.Len(t, all[1].Images, 1)
	assert.NotNil(t, all[0].Images)

	delivered, err := repo.FindAll(ctx, 1, 10, repositories.OrderFilters{Status: models.StatusDelivered})
	require.NoError(t, err)
	require.Len(t, delivered, 2)
	for _, o := range delivered {
		assert.Equal(t, models.StatusDelivered, o.Status)
	}

	both, err := repo.FindAll(ctx, 1, 10, repositories.OrderFilters{Status: models.StatusDelivered, Wilaya: "Alger"})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "C", both[0].Nom)

	page2, err := repo.FindAll(ctx, 2, 2, repositories.OrderFilters{})
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "A", page2[0].Nom)

	none, err := repo.FindAll(ctx, 5, 10, repositories.OrderFilters{})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestFindAllMonthBoundaries(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, order("before", "Alger", "", "1", time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)))
	mustCreate(t, repo, order("first", "Alger", "", "1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	mustCreate(t, repo, order("last", "Alger", "", "1", time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)))
	mustCreate(t, repo, order("after", "Alger", "", "1", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))

	march, err := repo.FindAll(ctx, 1, 10, repositories.OrderFilters{Month: "2024-03"})
	require.NoError(t, err)
	require.Len(t, march, 2)
	assert.Equal(t, "last", march[0].Nom)
	assert.Equal(t, "first", march[1].Nom)

	_, err = repo.FindAll(ctx, 1, 10, repositories.OrderFilters{Month: "2024-3"})
	assert.ErrorIs(t, err, repositories.ErrInvalidMonth)
}

func TestFindAllMonthUsesLocation(t *testing.T) {
	plusOne := time.FixedZone("UTC+1", 3600)
	repo, _ := newRepo(t, repositories.WithLocation(plusOne))
	ctx := context.Background()

	// 23:30 UTC on 29 Feb is already 1 March at UTC+1.
	mustCreate(t, repo, order("local-march", "Alger", "", "1", time.Date(2024, 2, 29, 23, 30, 0, 0, time.UTC)))
	// 23:30 UTC on 31 March is 1 April at UTC+1.
	mustCreate(t, repo, order("local-april", "Alger", "", "1", time.Date(2024, 3, 31, 23, 30, 0, 0, time.UTC)))

	march, err := repo.FindAll(ctx, 1, 10, repositories.OrderFilters{Month: "2024-03"})
	require.NoError(t, err)
	require.Len(t, march, 1)
	assert.Equal(t, "local-march", march[0].Nom)
}

func TestFindTodayAndWeek(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, order("sunday-before", "Alger", "", "1", time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)))
	mustCreate(t, repo, order("monday", "Alger", "", "1", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)))
	mustCreate(t, repo, order("yesterday", "Alger", "", "1", time.Date(2024, 3, 12, 18, 0, 0, 0, time.UTC)))
	mustCreate(t, repo, order("today", "Alger", "", "1", time.Date(2024, 3, 13, 8, 0, 0, 0, time.UTC)), img("t.jpg"))
	mustCreate(t, repo, order("next-monday", "Alger", "", "1", time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)))

	today, err := repo.FindToday(ctx)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "today", today[0].Nom)
	assert.Len(t, today[0].Images, 1)

	week, err := repo.FindWeek(ctx)
	require.NoError(t, err)
	require.Len(t, week, 3)
	assert.Equal(t, []string{"today", "yesterday", "monday"}, []string{week[0].Nom, week[1].Nom, week[2].Nom})
}

func TestFindWeekOnSunday(t *testing.T) {
	sunday := time.Date(2024, 3, 17, 22, 0, 0, 0, time.UTC)
	repo, _ := newRepo(t, repositories.WithClock(func() time.Time { return sunday }))

	mustCreate(t, repo, order("monday", "Alger", "", "1", time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)))
	mustCreate(t, repo, order("prev-sunday", "Alger", "", "1", time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)))

	week, err := repo.FindWeek(context.Background())
	require.NoError(t, err)
	require.Len(t, week, 1)
	assert.Equal(t, "monday", week[0].Nom)
}

func TestUpdateOverwritesAndAppendsImages(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	obs := "fragile"

	created := mustCreate(t, repo, order("Ben", "Alger", models.StatusConfirmed, "100", wednesday), img("old.jpg"))

	upd := order("Benali", "Oran", models.StatusDelivered, "250.75", time.Time{})
	upd.Quantite = 0
	upd.Obs = &obs
	got, err := repo.Update(ctx, created.ID, upd, []models.OrderImage{img("new.jpg")})
	require.NoError(t, err)

	assert.Equal(t, "Benali", got.Nom)
	assert.Equal(t, "Oran", got.Wilaya)
	assert.Equal(t, models.StatusDelivered, got.Status)
	assert.True(t, decimal.RequireFromString("250.75").Equal(got.Total))
	assert.Equal(t, 0, got.Quantite)
	require.NotNil(t, got.Obs)
	assert.Equal(t, obs, *got.Obs)
	assert.True(t, got.UpdatedAt.Equal(wednesday), "updated_at = %s", got.UpdatedAt)

	require.Len(t, got.Images, 2)
	assert.Equal(t, "old.jpg", got.Images[0].Name)
	assert.Equal(t, "new.jpg", got.Images[1].Name)
}

func TestUpdateWithoutStatusKeepsStoredStatus(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	created := mustCreate(t, repo, order("Ben", "Alger", models.StatusDelivered, "100", wednesday))

	got, err := repo.Update(ctx, created.ID, order("Ben", "Blida", "", "120", time.Time{}), nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, got.Status)
	assert.Equal(t, "Blida", got.Wilaya)

	got, err = repo.Update(ctx, created.ID, order("Ben", "Blida", models.StatusCancelled, "120", time.Time{}), nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
}

func TestUpdateMissing(t *testing.T) {
	repo, db := newRepo(t)
	_, err := repo.Update(context.Background(), 999, order("x", "y", "", "1", time.Time{}), []models.OrderImage{img("x.jpg")})
	assert.ErrorIs(t, err, repositories.ErrOrderNotFound)

	var images int64
	require.NoError(t, db.Model(&models.OrderImage{}).Count(&images).Error)
	assert.Zero(t, images)
}

func TestDeleteRemovesImageRows(t *testing.T) {
	repo, db := newRepo(t)
	ctx := context.Background()

	keep := mustCreate(t, repo, order("keep", "Alger", "", "1", wednesday), img("k.jpg"))
	gone := mustCreate(t, repo, order("gone", "Alger", "", "1", wednesday), img("g1.jpg"), img("g2.jpg"))

	removed, err := repo.Delete(ctx, gone.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = repo.FindByID(ctx, gone.ID)
	assert.ErrorIs(t, err, repositories.ErrOrderNotFound)

	var orphans int64
	require.NoError(t, db.Model(&models.OrderImage{}).Where("commande_id = ?", gone.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)

	still, err := repo.FindByID(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, still.Images, 1)

	removed, err = repo.Delete(ctx, gone.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFindAndDeleteImage(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	created := mustCreate(t, repo, order("Ben", "Alger", "", "1", wednesday), img("a.jpg"), img("b.jpg"))
	target := created.Images[0]

	found, err := repo.FindImage(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", found.Name)
	assert.Equal(t, created.ID, found.CommandeID)

	removed, err := repo.DeleteImage(ctx, target.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = repo.FindImage(ctx, target.ID)
	assert.ErrorIs(t, err, repositories.ErrImageNotFound)

	removed, err = repo.DeleteImage(ctx, 999999)
	require.NoError(t, err)
	assert.False(t, removed)

	got, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 1)
	assert.Equal(t, "b.jpg", got.Images[0].Name)
}
