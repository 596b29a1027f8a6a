package repository

import (
	"context"
	"errors"

	"github.com/motogarage/motogarage-server/internal/models"
)

// ErrNotFound is returned by composite transactional operations when the
// record they must act on is missing or not visible to the caller. Plain
// reads return (nil, nil) instead.
var ErrNotFound = errors.New("repository: record not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("repository: duplicate record")

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// User operations. CreateUser persists the user and its identity-provider
	// link atomically.
	CreateUser(ctx context.Context, user *models.User, provider *models.AuthProvider) error
	GetUserByID(ctx context.Context, id models.UserID) (*models.User, error)
	FindUserIDByExternalID(ctx context.Context, provider, externalID string) (models.UserID, error)

	// Catalog operations (read-only master data)
	ListManufacturers(ctx context.Context) ([]models.Manufacturer, error)
	SearchBikes(ctx context.Context, params models.BikeSearchParams) ([]models.Bike, error)
	GetBike(ctx context.Context, id models.BikeID) (*models.Bike, error)

	// Ownership operations. RegisterMyBike creates the physical-unit row and
	// the ownership row in one transaction; neither survives without the other.
	// UpdateMyBike applies only the fields present in changes atomically:
	// omitted columns are never read back and rewritten, so a partial update
	// cannot clobber a concurrent total-mileage advance. Returns ErrNotFound
	// when the record is missing, not owned by userID, or no longer OWN.
	FindUserBikeBySerial(ctx context.Context, serialNumber string) (*models.UserBike, error)
	RegisterMyBike(ctx context.Context, userBike *models.UserBike, myBike *models.MyBike) error
	GetMyBike(ctx context.Context, id models.MyBikeID, userID models.UserID) (*models.MyBike, error)
	GetMyBikeDetail(ctx context.Context, id models.MyBikeID, userID models.UserID) (*models.MyBikeDetail, error)
	ListMyBikeDetails(ctx context.Context, userID models.UserID) ([]models.MyBikeDetail, error)
	UpdateMyBike(ctx context.Context, id models.MyBikeID, userID models.UserID, changes models.UpdateMyBikeRequest) (*models.MyBike, error)

	// Fuel-log operations. CreateFuelLog re-checks ownership, inserts the log
	// and, when advance is set and the reading exceeds the stored total,
	// advances total_mileage, all in one transaction so concurrent logs for
	// the same bike cannot lose the update. Returns ErrNotFound when the bike
	// is missing, sold, or owned by someone else.
	// UpdateFuelLog follows the same partial-write contract as UpdateMyBike,
	// scoped to the owning bike.
	CreateFuelLog(ctx context.Context, userID models.UserID, fuelLog *models.FuelLog, advance bool) error
	ListFuelLogs(ctx context.Context, myBikeID models.MyBikeID, query models.FuelLogQuery) ([]models.FuelLog, error)
	UpdateFuelLog(ctx context.Context, id models.FuelLogID, myBikeID models.MyBikeID, changes models.UpdateFuelLogRequest) (*models.FuelLog, error)
}
