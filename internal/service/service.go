package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/motogarage/motogarage-server/internal/apperr"
	"github.com/motogarage/motogarage-server/internal/models"
	"github.com/motogarage/motogarage-server/internal/repository"
	"go.uber.org/zap"
)

// Service defines all the business logic operations
type Service interface {
	// Users
	RegisterUser(ctx context.Context, provider, externalID string, req models.RegisterUserRequest) (*models.RegisterUserResponse, error)
	GetProfile(ctx context.Context, userID models.UserID) (*models.ProfileResponse, error)
	ResolveUser(ctx context.Context, provider, externalID string) (models.UserID, error)

	// Catalog
	ListManufacturers(ctx context.Context) (*models.ManufacturersResponse, error)
	SearchBikes(ctx context.Context, params models.BikeSearchParams) (*models.BikeSearchResponse, error)

	// Garage operations
	RegisterMyBike(ctx context.Context, userID models.UserID, req models.RegisterMyBikeRequest) (*models.RegisterMyBikeResponse, error)
	GetMyBikeDetail(ctx context.Context, myBikeID models.MyBikeID, userID models.UserID) (*models.MyBikeDetailResponse, error)
	ListMyBikes(ctx context.Context, userID models.UserID) (*models.MyBikeListResponse, error)
	UpdateMyBike(ctx context.Context, myBikeID models.MyBikeID, userID models.UserID, req models.UpdateMyBikeRequest) (*models.MyBikeResponse, error)

	// Fuel logs
	RegisterFuelLog(ctx context.Context, myBikeID models.MyBikeID, userID models.UserID, req models.RegisterFuelLogRequest) (*models.FuelLogResponse, error)
	GetFuelLogs(ctx context.Context, myBikeID models.MyBikeID, userID models.UserID, query models.FuelLogQuery) (*models.FuelLogListResponse, error)
	UpdateFuelLog(ctx context.Context, fuelLogID models.FuelLogID, myBikeID models.MyBikeID, userID models.UserID, req models.UpdateFuelLogRequest) (*models.FuelLogResponse, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo repository.Repository
	log  *zap.Logger
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &DefaultService{
		repo: repo,
		log:  log,
	}
}

// User methods
func (s *DefaultService) RegisterUser(ctx context.Context, provider, externalID string, req models.RegisterUserRequest) (*models.RegisterUserResponse, error) {
	if externalID == "" {
		return nil, apperr.Validation("externalId", "external subject id is required")
	}
	if req.Name == "" {
		return nil, apperr.Validation("name", "name is required")
	}
	if utf8.RuneCountInString(req.Name) > 50 {
		return nil, apperr.Validation("name", "name must be 50 characters or less")
	}

	user := &models.User{
		Name:  req.Name,
		Email: req.Email,
	}
	link := &models.AuthProvider{
		Provider:   provider,
		ExternalID: externalID,
	}

	if err := s.repo.CreateUser(ctx, user, link); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("user is already registered")
		}
		return nil, apperr.Internal("error creating user", err)
	}

	s.log.Info("user registered", zap.String("userId", user.ID.String()), zap.String("provider", provider))

	return &models.RegisterUserResponse{
		Status: "success",
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
	}, nil
}

func (s *DefaultService) GetProfile(ctx context.Context, userID models.UserID) (*models.ProfileResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("error getting user", err)
	}

	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	return &models.ProfileResponse{
		Status: "success",
		UserID: user.ID,
		Name:   user.Name,
	}, nil
}

// ResolveUser maps a verified identity-provider subject to the internal user
// id. NotFound means the subject has not completed registration.
func (s *DefaultService) ResolveUser(ctx context.Context, provider, externalID string) (models.UserID, error) {
	userID, err := s.repo.FindUserIDByExternalID(ctx, provider, externalID)
	if err != nil {
		return "", apperr.Internal("error resolving user", err)
	}

	if userID == "" {
		return "", apperr.NotFound("user is not registered")
	}

	return userID, nil
}

// Catalog methods
func (s *DefaultService) ListManufacturers(ctx context.Context) (*models.ManufacturersResponse, error) {
	manufacturers, err := s.repo.ListManufacturers(ctx)
	if err != nil {
		return nil, apperr.Internal("error listing manufacturers", err)
	}

	if manufacturers == nil {
		manufacturers = []models.Manufacturer{}
	}

	return &models.ManufacturersResponse{
		Status:        "success",
		Manufacturers: manufacturers,
	}, nil
}

func (s *DefaultService) SearchBikes(ctx context.Context, params models.BikeSearchParams) (*models.BikeSearchResponse, error) {
	bikes, err := s.repo.SearchBikes(ctx, params)
	if err != nil {
		return nil, apperr.Internal("error searching bikes", err)
	}

	if bikes == nil {
		bikes = []models.Bike{}
	}

	return &models.BikeSearchResponse{
		Status: "success",
		Bikes:  bikes,
	}, nil
}
