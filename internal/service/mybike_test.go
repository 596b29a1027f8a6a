package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/motogarage/motogarage-server/internal/apperr"
	"github.com/motogarage/motogarage-server/internal/models"
	"github.com/motogarage/motogarage-server/internal/repository"
	"github.com/motogarage/motogarage-server/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBikeID = "bike-cb400"
	testUserID = models.UserID("user-1")
)

func newTestService(t *testing.T) (service.Service, *repository.MemoryRepository) {
	t.Helper()

	repo := repository.NewMemoryRepository()
	repo.AddManufacturer(models.Manufacturer{ID: "maker-honda", Name: "ホンダ", NameEn: "Honda", Country: "Japan"})
	repo.AddBike(models.Bike{
		ID:             testBikeID,
		ManufacturerID: "maker-honda",
		ModelName:      "CB400 Super Four",
		Displacement:   399,
		ModelYear:      2019,
	})

	return service.NewDefaultService(repo, nil), repo
}

func intPtr(v int) *int          { return &v }
func strPtr(v string) *string    { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func TestRegisterMyBikeTotalMileageDefaults(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name            string
		purchaseMileage *int
		totalMileage    *int
		want            int
	}{
		{"explicit total mileage wins", intPtr(1000), intPtr(2500), 2500},
		{"falls back to purchase mileage", intPtr(1000), nil, 1000},
		{"defaults to zero", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)

			resp, err := svc.RegisterMyBike(ctx, testUserID, models.RegisterMyBikeRequest{
				BikeID:          testBikeID,
				PurchaseMileage: tt.purchaseMileage,
				TotalMileage:    tt.totalMileage,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.TotalMileage)

			detail, err := svc.GetMyBikeDetail(ctx, resp.MyBikeID, testUserID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, detail.MyBike.TotalMileage)
		})
	}
}

func TestRegisterMyBikeUnknownCatalogEntry(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RegisterMyBike(context.Background(), testUserID, models.RegisterMyBikeRequest{
		BikeID: "no-such-bike",
	})
	assert.True(t, apperr.IsNotFound(err))
}

func TestRegisterMyBikeReturnsCatalogAttributes(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.RegisterMyBike(context.Background(), testUserID, models.RegisterMyBikeRequest{
		BikeID:       testBikeID,
		PurchaseDate: timePtr(time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.MyBikeID)
	assert.NotEmpty(t, resp.UserBikeID)
	assert.Equal(t, "ホンダ", resp.Manufacturer)
	assert.Equal(t, "CB400 Super Four", resp.ModelName)
	assert.Equal(t, 399, resp.Displacement)
	assert.Equal(t, 2019, resp.ModelYear)
	assert.Equal(t, time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), resp.OwnedAt)
}

func TestRegisterMyBikeDuplicateSerial(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	first, err := svc.RegisterMyBike(ctx, testUserID, models.RegisterMyBikeRequest{
		BikeID:       testBikeID,
		SerialNumber: strPtr("NC42-1234567"),
	})
	require.NoError(t, err)

	// Duplicate serials are permitted by default: a transfer is a fresh
	// registration of the same unit.
	second, err := svc.RegisterMyBike(ctx, models.UserID("user-2"), models.RegisterMyBikeRequest{
		BikeID:       testBikeID,
		SerialNumber: strPtr("NC42-1234567"),
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.MyBikeID, second.MyBikeID)

	// Strict rejection is opt-in.
	_, err = svc.RegisterMyBike(ctx, models.UserID("user-3"), models.RegisterMyBikeRequest{
		BikeID:                testBikeID,
		SerialNumber:          strPtr("NC42-1234567"),
		RejectDuplicateSerial: true,
	})
	assert.True(t, apperr.IsConflict(err))
}

func TestRegisterMyBikeFieldValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RegisterMyBike(ctx, testUserID, models.RegisterMyBikeRequest{
		BikeID:       testBikeID,
		SerialNumber: strPtr(""),
	})
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, "serialNumber", apperr.FieldOf(err))

	_, err = svc.RegisterMyBike(ctx, testUserID, models.RegisterMyBikeRequest{
		BikeID:          testBikeID,
		PurchaseMileage: intPtr(-1),
	})
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, "purchaseMileage", apperr.FieldOf(err))
}

func TestMyBikeLengthLimitsCountCharacters(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	// 50 Japanese characters are 150 bytes; the limit is characters.
	nickname50 := strings.Repeat("バ", 50)
	resp, err := svc.RegisterMyBike(ctx, testUserID, models.RegisterMyBikeRequest{
		BikeID:   testBikeID,
		Nickname: strPtr(nickname50),
	})
	require.NoError(t, err)

	_, err = svc.RegisterMyBike(ctx, testUserID, models.RegisterMyBikeRequest{
		BikeID:   testBikeID,
		Nickname: strPtr(strings.Repeat("バ", 51)),
	})
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, "nickname", apperr.FieldOf(err))

	// Same rule on the update path.
	updated, err := svc.UpdateMyBike(ctx, resp.MyBikeID, testUserID, models.UpdateMyBikeRequest{
		Nickname: models.Some(strings.Repeat("イ", 50)),
	})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("イ", 50), *updated.MyBike.Nickname)

	_, err = svc.UpdateMyBike(ctx, resp.MyBikeID, testUserID, models.UpdateMyBikeRequest{
		Nickname: models.Some(strings.Repeat("イ", 51)),
	})
	assert.True(t, apperr.IsValidation(err))

	// Serial numbers count characters too.
	_, err = svc.RegisterMyBike(ctx, testUserID, models.RegisterMyBikeRequest{
		BikeID:       testBikeID,
		SerialNumber: strPtr(strings.Repeat("車", 100)),
	})
	require.NoError(t, err)

	_, err = svc.RegisterMyBike(ctx, testUserID, models.RegisterMyBikeRequest{
		BikeID:       testBikeID,
		SerialNumber: strPtr(strings.Repeat("車", 101)),
	})
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, "serialNumber", apperr.FieldOf(err))
}

func TestGetMyBikeDetailOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	resp, err := svc.RegisterMyBike(ctx, testUserID, models.RegisterMyBikeRequest{BikeID: testBikeID})
	require.NoError(t, err)

	// Another user's record reads as missing, not as forbidden.
	_, err = svc.GetMyBikeDetail(ctx, resp.MyBikeID, models.UserID("someone-else"))
	assert.True(t, apperr.IsNotFound(err))

	_, err = svc.GetMyBikeDetail(ctx, models.MyBikeID("no-such-id"), testUserID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestGetMyBikeDetailExcludesSoldBikes(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	resp, err := svc.RegisterMyBike(ctx, testUserID, models.RegisterMyBikeRequest{BikeID: testBikeID})
	require.NoError(t, err)

	repo.SetOwnStatus(resp.MyBikeID, models.OwnStatusSold)

	_, err = svc.GetMyBikeDetail(ctx, resp.MyBikeID, testUserID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestListMyBikesNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	var ids []models.MyBikeID
	for i := 0; i < 3; i++ {
		resp, err := svc.RegisterMyBike(ctx, testUserID, models.RegisterMyBikeRequest{BikeID: testBikeID})
		require.NoError(t, err)
		ids = append(ids, resp.MyBikeID)
		time.Sleep(2 * time.Millisecond) // Distinct creation times
	}

	list, err := svc.ListMyBikes(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, list.MyBikes, 3)
	assert.Equal(t, ids[2], list.MyBikes[0].MyBikeID)
	assert.Equal(t, ids[0], list.MyBikes[2].MyBikeID)

	other, err := svc.ListMyBikes(ctx, models.UserID("empty-garage"))
	require.NoError(t, err)
	assert.Empty(t, other.MyBikes)
}

func TestUpdateMyBikePartialSemantics(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	resp, err := svc.RegisterMyBike(ctx, testUserID, models.RegisterMyBikeRequest{
		BikeID:          testBikeID,
		Nickname:        strPtr("weekend bike"),
		PurchasePrice:   intPtr(500000),
		PurchaseMileage: intPtr(1000),
	})
	require.NoError(t, err)

	// Omitted fields keep their stored values.
	updated, err := svc.UpdateMyBike(ctx, resp.MyBikeID, testUserID, models.UpdateMyBikeRequest{
		Nickname: models.Some("commuter"),
	})
	require.NoError(t, err)
	assert.Equal(t, "commuter", *updated.MyBike.Nickname)
	assert.Equal(t, 500000, *updated.MyBike.PurchasePrice)
	assert.Equal(t, 1000, updated.MyBike.TotalMileage)

	// Explicit null clears a nullable field.
	updated, err = svc.UpdateMyBike(ctx, resp.MyBikeID, testUserID, models.UpdateMyBikeRequest{
		Nickname: models.Null[string](),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.MyBike.Nickname)
	assert.Equal(t, 500000, *updated.MyBike.PurchasePrice)

	// Null totalMileage keeps the current value.
	updated, err = svc.UpdateMyBike(ctx, resp.MyBikeID, testUserID, models.UpdateMyBikeRequest{
		TotalMileage: models.Null[int](),
	})
	require.NoError(t, err)
	assert.Equal(t, 1000, updated.MyBike.TotalMileage)

	// Direct edits may lower the total; the monotonic guard only applies to
	// fuel-log advances.
	updated, err = svc.UpdateMyBike(ctx, resp.MyBikeID, testUserID, models.UpdateMyBikeRequest{
		TotalMileage: models.Some(500),
	})
	require.NoError(t, err)
	assert.Equal(t, 500, updated.MyBike.TotalMileage)
}

func TestUpdateMyBikeValidationAndOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	resp, err := svc.RegisterMyBike(ctx, testUserID, models.RegisterMyBikeRequest{BikeID: testBikeID})
	require.NoError(t, err)

	_, err = svc.UpdateMyBike(ctx, resp.MyBikeID, testUserID, models.UpdateMyBikeRequest{
		TotalMileage: models.Some(-5),
	})
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, "totalMileage", apperr.FieldOf(err))

	_, err = svc.UpdateMyBike(ctx, resp.MyBikeID, models.UserID("intruder"), models.UpdateMyBikeRequest{
		Nickname: models.Some("mine now"),
	})
	assert.True(t, apperr.IsNotFound(err))
}
