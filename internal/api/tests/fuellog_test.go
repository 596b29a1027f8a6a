package api_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/motogarage/motogarage-server/internal/api/testutils"
	"github.com/motogarage/motogarage-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerBike(t *testing.T, env *testutils.TestEnv, token string, bikeID models.BikeID, purchaseMileage int) models.MyBikeID {
	t.Helper()

	w := env.PerformRequest(t, http.MethodPost, "/api/v1/my-bikes", token, models.RegisterMyBikeRequest{
		BikeID:          string(bikeID),
		PurchaseMileage: intPtr(purchaseMileage),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.RegisterMyBikeResponse
	testutils.DecodeJSON(t, w, &resp)
	return resp.MyBikeID
}

func TestRegisterFuelLog(t *testing.T) {
	env := testutils.NewTestEnv(t)
	bikeID := env.SeedCatalog()
	token := env.RegisterUser(t, "ext-1", "Rider", "rider@example.com")
	myBikeID := registerBike(t, env, token, bikeID, 1000)
	logsPath := "/api/v1/my-bikes/" + myBikeID.String() + "/fuel-logs"

	// Test case 1: Log with mileage advance
	w := env.PerformRequest(t, http.MethodPost, logsPath, token, models.RegisterFuelLogRequest{
		RefueledAt:         time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Mileage:            1500,
		Amount:             12.5,
		TotalPrice:         2100,
		UpdateTotalMileage: true,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.FuelLogResponse
	testutils.DecodeJSON(t, w, &created)
	assert.NotEmpty(t, created.FuelLog.ID)
	assert.Equal(t, 1500, created.FuelLog.Mileage)

	w = env.PerformRequest(t, http.MethodGet, "/api/v1/my-bikes/"+myBikeID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail models.MyBikeDetailResponse
	testutils.DecodeJSON(t, w, &detail)
	assert.Equal(t, 1500, detail.MyBike.TotalMileage)

	// Test case 2: Lower reading never regresses the total
	w = env.PerformRequest(t, http.MethodPost, logsPath, token, models.RegisterFuelLogRequest{
		RefueledAt:         time.Date(2024, 6, 8, 9, 0, 0, 0, time.UTC),
		Mileage:            1200,
		Amount:             8.0,
		TotalPrice:         1400,
		UpdateTotalMileage: true,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.PerformRequest(t, http.MethodGet, "/api/v1/my-bikes/"+myBikeID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	testutils.DecodeJSON(t, w, &detail)
	assert.Equal(t, 1500, detail.MyBike.TotalMileage)

	// Test case 3: Invalid amount
	w = env.PerformRequest(t, http.MethodPost, logsPath, token, models.RegisterFuelLogRequest{
		RefueledAt: time.Date(2024, 6, 9, 9, 0, 0, 0, time.UTC),
		Mileage:    1600,
		Amount:     0,
		TotalPrice: 100,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResp models.ErrorResponse
	testutils.DecodeJSON(t, w, &errResp)
	assert.Equal(t, "VALIDATION_ERROR", errResp.Code)
	assert.Equal(t, "amount", errResp.Field)

	// Test case 4: Another user's bike
	otherToken := env.RegisterUser(t, "ext-2", "Other", "other@example.com")
	w = env.PerformRequest(t, http.MethodPost, logsPath, otherToken, models.RegisterFuelLogRequest{
		RefueledAt: time.Date(2024, 6, 9, 9, 0, 0, 0, time.UTC),
		Mileage:    100,
		Amount:     5,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetFuelLogsPaging(t *testing.T) {
	env := testutils.NewTestEnv(t)
	bikeID := env.SeedCatalog()
	token := env.RegisterUser(t, "ext-1", "Rider", "rider@example.com")
	myBikeID := registerBike(t, env, token, bikeID, 0)
	logsPath := "/api/v1/my-bikes/" + myBikeID.String() + "/fuel-logs"

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		w := env.PerformRequest(t, http.MethodPost, logsPath, token, models.RegisterFuelLogRequest{
			RefueledAt: base.Add(time.Duration(i) * 24 * time.Hour),
			Mileage:    (i + 1) * 100,
			Amount:     10,
			TotalPrice: 1500,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// Test case 1: Second page of two, newest first
	w := env.PerformRequest(t, http.MethodGet, fmt.Sprintf("%s?page=2&pageSize=2", logsPath), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.FuelLogListResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 2, resp.PageSize)
	require.Len(t, resp.FuelLogs, 2)
	assert.True(t, resp.FuelLogs[0].RefueledAt.Equal(base.Add(2*24*time.Hour)))
	assert.True(t, resp.FuelLogs[1].RefueledAt.Equal(base.Add(1*24*time.Hour)))

	// Test case 2: Ascending mileage sort
	w = env.PerformRequest(t, http.MethodGet, logsPath+"?sortBy=mileage&sortOrder=asc", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	testutils.DecodeJSON(t, w, &resp)
	require.Len(t, resp.FuelLogs, 5)
	assert.Equal(t, 100, resp.FuelLogs[0].Mileage)

	// Test case 3: Page past the end is empty, not an error
	w = env.PerformRequest(t, http.MethodGet, logsPath+"?page=10", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	testutils.DecodeJSON(t, w, &resp)
	assert.Empty(t, resp.FuelLogs)

	// Test case 4: Unknown bike id
	w = env.PerformRequest(t, http.MethodGet, "/api/v1/my-bikes/no-such-id/fuel-logs", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateFuelLog(t *testing.T) {
	env := testutils.NewTestEnv(t)
	bikeID := env.SeedCatalog()
	token := env.RegisterUser(t, "ext-1", "Rider", "rider@example.com")
	myBikeID := registerBike(t, env, token, bikeID, 1000)
	logsPath := "/api/v1/my-bikes/" + myBikeID.String() + "/fuel-logs"

	w := env.PerformRequest(t, http.MethodPost, logsPath, token, models.RegisterFuelLogRequest{
		RefueledAt:         time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Mileage:            900,
		Amount:             10,
		TotalPrice:         1500,
		UpdateTotalMileage: true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.FuelLogResponse
	testutils.DecodeJSON(t, w, &created)
	logPath := logsPath + "/" + created.FuelLog.ID.String()

	// Test case 1: Patch one field
	w = env.PerformRequest(t, http.MethodPatch, logPath, token, map[string]interface{}{
		"totalPrice": 1600,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.FuelLogResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.Equal(t, 1600, resp.FuelLog.TotalPrice)
	assert.Equal(t, 900, resp.FuelLog.Mileage)

	// Test case 2: Raising the log mileage does not move the bike total
	w = env.PerformRequest(t, http.MethodPatch, logPath, token, map[string]interface{}{
		"mileage": 5000,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.PerformRequest(t, http.MethodGet, "/api/v1/my-bikes/"+myBikeID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail models.MyBikeDetailResponse
	testutils.DecodeJSON(t, w, &detail)
	assert.Equal(t, 1000, detail.MyBike.TotalMileage)

	// Test case 3: Empty payload
	w = env.PerformRequest(t, http.MethodPatch, logPath, token, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 4: Log addressed through a different bike
	otherBikeID := registerBike(t, env, token, bikeID, 0)
	w = env.PerformRequest(t, http.MethodPatch,
		"/api/v1/my-bikes/"+otherBikeID.String()+"/fuel-logs/"+created.FuelLog.ID.String(),
		token, map[string]interface{}{"mileage": 100})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Test case 5: Null for a non-nullable field
	w = env.PerformRequest(t, http.MethodPatch, logPath, token, map[string]interface{}{
		"amount": nil,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
