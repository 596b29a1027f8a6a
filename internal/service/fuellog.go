package service

import (
	"context"
	"errors"

	"github.com/motogarage/motogarage-server/internal/apperr"
	"github.com/motogarage/motogarage-server/internal/models"
	"github.com/motogarage/motogarage-server/internal/repository"
	"go.uber.org/zap"
)

// RegisterFuelLog records a refuel event. The log itself is always created
// once validation passes; the running total only moves forward when
// updateTotalMileage is set and the reading is strictly greater than the
// stored total. Insert and advance share one transaction.
func (s *DefaultService) RegisterFuelLog(
	ctx context.Context,
	myBikeID models.MyBikeID,
	userID models.UserID,
	req models.RegisterFuelLogRequest,
) (*models.FuelLogResponse, error) {
	if req.RefueledAt.IsZero() {
		return nil, apperr.Validation("refueledAt", "refueled time is required")
	}
	if req.Mileage < 0 {
		return nil, apperr.Validation("mileage", "mileage must be 0 or greater")
	}
	if req.Amount <= 0 {
		return nil, apperr.Validation("amount", "amount must be greater than 0")
	}
	if req.TotalPrice < 0 {
		return nil, apperr.Validation("totalPrice", "total price must be 0 or greater")
	}

	fuelLog := &models.FuelLog{
		MyBikeID:   myBikeID,
		RefueledAt: req.RefueledAt,
		Mileage:    req.Mileage,
		Amount:     req.Amount,
		TotalPrice: req.TotalPrice,
	}

	if err := s.repo.CreateFuelLog(ctx, userID, fuelLog, req.UpdateTotalMileage); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("the specified bike was not found")
		}
		return nil, apperr.Internal("error creating fuel log", err)
	}

	s.log.Info("fuel log recorded",
		zap.String("myBikeId", myBikeID.String()),
		zap.Int("mileage", fuelLog.Mileage),
		zap.Bool("updateTotalMileage", req.UpdateTotalMileage))

	return &models.FuelLogResponse{
		Status:  "success",
		FuelLog: *fuelLog,
	}, nil
}

func (s *DefaultService) GetFuelLogs(
	ctx context.Context,
	myBikeID models.MyBikeID,
	userID models.UserID,
	query models.FuelLogQuery,
) (*models.FuelLogListResponse, error) {
	myBike, err := s.repo.GetMyBike(ctx, myBikeID, userID)
	if err != nil {
		return nil, apperr.Internal("error getting bike", err)
	}

	if myBike == nil {
		return nil, apperr.NotFound("the specified bike was not found")
	}

	fuelLogs, err := s.repo.ListFuelLogs(ctx, myBikeID, query)
	if err != nil {
		return nil, apperr.Internal("error listing fuel logs", err)
	}

	if fuelLogs == nil {
		fuelLogs = []models.FuelLog{}
	}

	return &models.FuelLogListResponse{
		Status:   "success",
		FuelLogs: fuelLogs,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}

// UpdateFuelLog edits an existing log. The log must belong to the given bike
// and the bike to the caller; a log id from another bike reads as not found.
// A request with no updatable field at all fails validation with the field
// set to "body". Edits never touch the bike's total mileage: they correct
// mistakes, they do not replay the advance rule.
func (s *DefaultService) UpdateFuelLog(
	ctx context.Context,
	fuelLogID models.FuelLogID,
	myBikeID models.MyBikeID,
	userID models.UserID,
	req models.UpdateFuelLogRequest,
) (*models.FuelLogResponse, error) {
	myBike, err := s.repo.GetMyBike(ctx, myBikeID, userID)
	if err != nil {
		return nil, apperr.Internal("error getting bike", err)
	}

	if myBike == nil {
		return nil, apperr.NotFound("the specified bike was not found")
	}

	if !req.RefueledAt.Defined && !req.Mileage.Defined && !req.Amount.Defined && !req.TotalPrice.Defined {
		return nil, apperr.Validation("body", "at least one field must be provided")
	}

	// None of the fuel-log fields are nullable.
	if req.RefueledAt.Defined {
		if v, ok := req.RefueledAt.Get(); !ok || v.IsZero() {
			return nil, apperr.Validation("refueledAt", "refueled time must be a valid timestamp")
		}
	}
	if req.Mileage.Defined {
		if v, ok := req.Mileage.Get(); !ok || v < 0 {
			return nil, apperr.Validation("mileage", "mileage must be 0 or greater")
		}
	}
	if req.Amount.Defined {
		if v, ok := req.Amount.Get(); !ok || v <= 0 {
			return nil, apperr.Validation("amount", "amount must be greater than 0")
		}
	}
	if req.TotalPrice.Defined {
		if v, ok := req.TotalPrice.Get(); !ok || v < 0 {
			return nil, apperr.Validation("totalPrice", "total price must be 0 or greater")
		}
	}

	updated, err := s.repo.UpdateFuelLog(ctx, fuelLogID, myBikeID, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("the specified fuel log was not found")
		}
		return nil, apperr.Internal("error updating fuel log", err)
	}

	return &models.FuelLogResponse{
		Status:  "success",
		FuelLog: *updated,
	}, nil
}
