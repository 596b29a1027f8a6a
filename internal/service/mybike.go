package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/motogarage/motogarage-server/internal/apperr"
	"github.com/motogarage/motogarage-server/internal/models"
	"github.com/motogarage/motogarage-server/internal/repository"
	"go.uber.org/zap"
)

// RegisterMyBike creates the physical-unit record and the caller's ownership
// record in one transaction. The catalog entry must exist; a duplicate serial
// number is allowed unless the caller opts into strict rejection (transfers
// are modeled as a fresh registration of the same serial).
func (s *DefaultService) RegisterMyBike(
	ctx context.Context,
	userID models.UserID,
	req models.RegisterMyBikeRequest,
) (*models.RegisterMyBikeResponse, error) {
	if err := validateMyBikeFields(req.SerialNumber, req.Nickname, req.PurchasePrice, req.PurchaseMileage, req.TotalMileage); err != nil {
		return nil, err
	}

	bike, err := s.repo.GetBike(ctx, models.BikeID(req.BikeID))
	if err != nil {
		return nil, apperr.Internal("error getting bike", err)
	}

	if bike == nil {
		return nil, apperr.NotFound("the specified bike was not found")
	}

	if req.RejectDuplicateSerial && req.SerialNumber != nil {
		existing, err := s.repo.FindUserBikeBySerial(ctx, *req.SerialNumber)
		if err != nil {
			return nil, apperr.Internal("error checking serial number", err)
		}
		if existing != nil {
			return nil, apperr.Conflict("this serial number is already registered")
		}
	}

	totalMileage := 0
	if req.TotalMileage != nil {
		totalMileage = *req.TotalMileage
	} else if req.PurchaseMileage != nil {
		totalMileage = *req.PurchaseMileage
	}

	ownedAt := time.Now().UTC()
	if req.PurchaseDate != nil {
		ownedAt = *req.PurchaseDate
	}

	userBike := &models.UserBike{
		BikeID:       bike.ID,
		SerialNumber: req.SerialNumber,
	}
	myBike := &models.MyBike{
		UserID:          userID,
		Nickname:        req.Nickname,
		PurchaseDate:    req.PurchaseDate,
		PurchasePrice:   req.PurchasePrice,
		PurchaseMileage: req.PurchaseMileage,
		TotalMileage:    totalMileage,
		OwnedAt:         ownedAt,
		OwnStatus:       models.OwnStatusOwn,
	}

	if err := s.repo.RegisterMyBike(ctx, userBike, myBike); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("the specified bike was not found")
		}
		return nil, apperr.Internal("error registering bike", err)
	}

	s.log.Info("bike registered",
		zap.String("userId", userID.String()),
		zap.String("myBikeId", myBike.ID.String()),
		zap.Int("totalMileage", myBike.TotalMileage))

	return &models.RegisterMyBikeResponse{
		Status:       "success",
		MyBikeID:     myBike.ID,
		UserBikeID:   userBike.ID,
		BikeID:       bike.ID,
		Manufacturer: bike.ManufacturerName,
		ModelName:    bike.ModelName,
		Displacement: bike.Displacement,
		ModelYear:    bike.ModelYear,
		TotalMileage: myBike.TotalMileage,
		OwnedAt:      myBike.OwnedAt,
	}, nil
}

func (s *DefaultService) GetMyBikeDetail(
	ctx context.Context,
	myBikeID models.MyBikeID,
	userID models.UserID,
) (*models.MyBikeDetailResponse, error) {
	detail, err := s.repo.GetMyBikeDetail(ctx, myBikeID, userID)
	if err != nil {
		return nil, apperr.Internal("error getting bike detail", err)
	}

	if detail == nil {
		return nil, apperr.NotFound("the specified bike was not found")
	}

	return &models.MyBikeDetailResponse{
		Status: "success",
		MyBike: *detail,
	}, nil
}

func (s *DefaultService) ListMyBikes(ctx context.Context, userID models.UserID) (*models.MyBikeListResponse, error) {
	details, err := s.repo.ListMyBikeDetails(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("error listing bikes", err)
	}

	if details == nil {
		details = []models.MyBikeDetail{}
	}

	return &models.MyBikeListResponse{
		Status:  "success",
		MyBikes: details,
	}, nil
}

// UpdateMyBike applies a partial update. Only fields present in the request
// reach the database; an explicit null clears a nullable field, and a null
// totalMileage keeps the current value. The repository writes the supplied
// columns in a single statement, so an omitted totalMileage can never clobber
// a fuel-log advance that lands between request and write. Total mileage may
// be lowered here; the monotonic guard applies to fuel-log driven advances
// only, direct edits are corrections.
func (s *DefaultService) UpdateMyBike(
	ctx context.Context,
	myBikeID models.MyBikeID,
	userID models.UserID,
	req models.UpdateMyBikeRequest,
) (*models.MyBikeResponse, error) {
	if v, ok := req.Nickname.Get(); ok && utf8.RuneCountInString(v) > 50 {
		return nil, apperr.Validation("nickname", "nickname must be 50 characters or less")
	}
	if v, ok := req.PurchasePrice.Get(); ok && v < 0 {
		return nil, apperr.Validation("purchasePrice", "purchase price must be 0 or greater")
	}
	if v, ok := req.PurchaseMileage.Get(); ok && v < 0 {
		return nil, apperr.Validation("purchaseMileage", "purchase mileage must be 0 or greater")
	}
	if v, ok := req.TotalMileage.Get(); ok && v < 0 {
		return nil, apperr.Validation("totalMileage", "total mileage must be 0 or greater")
	}

	updated, err := s.repo.UpdateMyBike(ctx, myBikeID, userID, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("the specified bike was not found")
		}
		return nil, apperr.Internal("error updating bike", err)
	}

	return &models.MyBikeResponse{
		Status: "success",
		MyBike: *updated,
	}, nil
}

// validateMyBikeFields re-checks registration field rules at the service
// level so the rules hold for non-HTTP callers too. Lengths are counted in
// characters, not bytes; nicknames are routinely multibyte.
func validateMyBikeFields(serialNumber, nickname *string, purchasePrice, purchaseMileage, totalMileage *int) error {
	if serialNumber != nil {
		if n := utf8.RuneCountInString(*serialNumber); n < 1 || n > 100 {
			return apperr.Validation("serialNumber", "serial number must be between 1 and 100 characters")
		}
	}
	if nickname != nil && utf8.RuneCountInString(*nickname) > 50 {
		return apperr.Validation("nickname", "nickname must be 50 characters or less")
	}
	if purchasePrice != nil && *purchasePrice < 0 {
		return apperr.Validation("purchasePrice", "purchase price must be 0 or greater")
	}
	if purchaseMileage != nil && *purchaseMileage < 0 {
		return apperr.Validation("purchaseMileage", "purchase mileage must be 0 or greater")
	}
	if totalMileage != nil && *totalMileage < 0 {
		return apperr.Validation("totalMileage", "total mileage must be 0 or greater")
	}
	return nil
}
