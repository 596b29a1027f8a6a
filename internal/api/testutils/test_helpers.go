// Package testutils provides helpers for exercising the HTTP API against the
// in-memory repository, with no external identity provider or database.
package testutils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/motogarage/motogarage-server/internal/api"
	"github.com/motogarage/motogarage-server/internal/models"
	"github.com/motogarage/motogarage-server/internal/repository"
	"github.com/motogarage/motogarage-server/internal/service"
	"github.com/stretchr/testify/require"
)

// TestSecret signs the identity tokens used by the tests.
const TestSecret = "test-secret"

// TestProvider is the identity provider name injected into the router.
const TestProvider = "firebase"

// TestEnv bundles a router with the repository behind it so tests can seed
// master data directly.
type TestEnv struct {
	Router *gin.Engine
	Repo   *repository.MemoryRepository
	Svc    service.Service
}

// NewTestEnv builds a full router over a fresh in-memory repository.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepository()
	svc := service.NewDefaultService(repo, nil)
	handler := api.NewHandler(svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("authSecret", []byte(TestSecret))
		c.Set("authProvider", TestProvider)
		c.Next()
	})
	handler.SetupRoutes(router)

	return &TestEnv{Router: router, Repo: repo, Svc: svc}
}

// SeedCatalog loads one manufacturer and one bike and returns the bike id.
func (e *TestEnv) SeedCatalog() models.BikeID {
	e.Repo.AddManufacturer(models.Manufacturer{ID: "maker-honda", Name: "ホンダ", NameEn: "Honda", Country: "Japan"})
	bike := models.Bike{
		ID:             "bike-cb400",
		ManufacturerID: "maker-honda",
		ModelName:      "CB400 Super Four",
		Displacement:   399,
		ModelYear:      2019,
	}
	e.Repo.AddBike(bike)
	return bike.ID
}

// MintToken issues an HS256 token the way the identity provider would.
func MintToken(t *testing.T, externalID, email string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   externalID,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(TestSecret))
	require.NoError(t, err)
	return signed
}

// PerformRequest runs one request through the router and returns the recorder.
func (e *TestEnv) PerformRequest(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// RegisterUser registers a fresh user through the API and returns the token
// for subsequent authenticated calls.
func (e *TestEnv) RegisterUser(t *testing.T, externalID, name, email string) string {
	t.Helper()

	token := MintToken(t, externalID, email)
	w := e.PerformRequest(t, http.MethodPost, "/api/v1/user/register", token, models.RegisterUserRequest{
		Name:  name,
		Email: email,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return token
}

// DecodeJSON unmarshals a recorded response body into out.
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}
