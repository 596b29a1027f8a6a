package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/motogarage/motogarage-server/internal/models"
)

// MemoryRepository is a mutex-guarded in-memory implementation of Repository.
// It backs the unit and router tests and is handy for running the server
// without PostgreSQL. The CreateFuelLog advance happens under the same lock
// as the read, mirroring the SQL transaction.
type MemoryRepository struct {
	mu            sync.RWMutex
	users         map[models.UserID]models.User
	providers     map[string]models.AuthProvider // key: provider + "/" + externalID
	manufacturers map[string]models.Manufacturer
	bikes         map[models.BikeID]models.Bike
	userBikes     map[models.UserBikeID]models.UserBike
	myBikes       map[models.MyBikeID]models.MyBike
	fuelLogs      map[models.FuelLogID]models.FuelLog
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:         make(map[models.UserID]models.User),
		providers:     make(map[string]models.AuthProvider),
		manufacturers: make(map[string]models.Manufacturer),
		bikes:         make(map[models.BikeID]models.Bike),
		userBikes:     make(map[models.UserBikeID]models.UserBike),
		myBikes:       make(map[models.MyBikeID]models.MyBike),
		fuelLogs:      make(map[models.FuelLogID]models.FuelLog),
	}
}

func providerKey(provider, externalID string) string {
	return provider + "/" + externalID
}

// AddManufacturer loads a manufacturer master row (test/seed helper).
func (r *MemoryRepository) AddManufacturer(m models.Manufacturer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.manufacturers[m.ID] = m
}

// AddBike loads a catalog bike master row (test/seed helper).
func (r *MemoryRepository) AddBike(b models.Bike) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == "" {
		b.ID = models.BikeID(uuid.New().String())
	}
	if m, ok := r.manufacturers[b.ManufacturerID]; ok && b.ManufacturerName == "" {
		b.ManufacturerName = m.Name
	}
	r.bikes[b.ID] = b
}

// SetOwnStatus flips a bike's ownership status directly (test/seed helper;
// the public API has no sell operation).
func (r *MemoryRepository) SetOwnStatus(id models.MyBikeID, status models.OwnStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mb, ok := r.myBikes[id]; ok {
		mb.OwnStatus = status
		mb.UpdatedAt = time.Now().UTC()
		r.myBikes[id] = mb
	}
}

func (r *MemoryRepository) CreateUser(ctx context.Context, user *models.User, provider *models.AuthProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[providerKey(provider.Provider, provider.ExternalID)]; exists {
		return ErrDuplicate
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}

	if user.ID == "" {
		user.ID = models.UserID(uuid.New().String())
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	provider.UserID = user.ID
	provider.IsActive = true
	provider.CreatedAt = now

	r.users[user.ID] = *user
	r.providers[providerKey(provider.Provider, provider.ExternalID)] = *provider
	return nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id models.UserID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *MemoryRepository) FindUserIDByExternalID(ctx context.Context, provider, externalID string) (models.UserID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.providers[providerKey(provider, externalID)]
	if !ok || !link.IsActive {
		return "", nil
	}
	return link.UserID, nil
}

func (r *MemoryRepository) ListManufacturers(ctx context.Context) ([]models.Manufacturer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Manufacturer, 0, len(r.manufacturers))
	for _, m := range r.manufacturers {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].NameEn < list[j].NameEn })
	return list, nil
}

func (r *MemoryRepository) SearchBikes(ctx context.Context, params models.BikeSearchParams) ([]models.Bike, error) {
	params = params.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []models.Bike
	for _, b := range r.bikes {
		if params.ManufacturerID != "" && b.ManufacturerID != params.ManufacturerID {
			continue
		}
		if params.ModelName != "" && !strings.Contains(strings.ToLower(b.ModelName), strings.ToLower(params.ModelName)) {
			continue
		}
		if params.DisplacementMin > 0 && b.Displacement < params.DisplacementMin {
			continue
		}
		if params.DisplacementMax > 0 && b.Displacement > params.DisplacementMax {
			continue
		}
		if params.ModelYearMin > 0 && b.ModelYear < params.ModelYearMin {
			continue
		}
		if params.ModelYearMax > 0 && b.ModelYear > params.ModelYearMax {
			continue
		}
		list = append(list, b)
	}

	asc := params.SortOrder != models.SortDesc
	sort.Slice(list, func(i, j int) bool {
		var less bool
		switch params.SortBy {
		case models.BikeSortDisplacement:
			less = list[i].Displacement < list[j].Displacement
		case models.BikeSortModelYear:
			less = list[i].ModelYear < list[j].ModelYear
		default:
			less = list[i].ModelName < list[j].ModelName
		}
		if asc {
			return less
		}
		return !less
	})

	return page(list, params.Offset(), params.PageSize), nil
}

func (r *MemoryRepository) GetBike(ctx context.Context, id models.BikeID) (*models.Bike, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bike, ok := r.bikes[id]
	if !ok {
		return nil, nil
	}
	return &bike, nil
}

func (r *MemoryRepository) FindUserBikeBySerial(ctx context.Context, serialNumber string) (*models.UserBike, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *models.UserBike
	for id := range r.userBikes {
		ub := r.userBikes[id]
		if ub.SerialNumber == nil || *ub.SerialNumber != serialNumber {
			continue
		}
		if found == nil || ub.CreatedAt.After(found.CreatedAt) {
			copied := ub
			found = &copied
		}
	}
	return found, nil
}

func (r *MemoryRepository) RegisterMyBike(ctx context.Context, userBike *models.UserBike, myBike *models.MyBike) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bikes[userBike.BikeID]; !ok {
		return ErrNotFound
	}

	if userBike.ID == "" {
		userBike.ID = models.UserBikeID(uuid.New().String())
	}
	if myBike.ID == "" {
		myBike.ID = models.MyBikeID(uuid.New().String())
	}
	now := time.Now().UTC()
	userBike.CreatedAt = now
	myBike.UserBikeID = userBike.ID
	myBike.CreatedAt = now
	myBike.UpdatedAt = now

	r.userBikes[userBike.ID] = *userBike
	r.myBikes[myBike.ID] = *myBike
	return nil
}

func (r *MemoryRepository) getMyBikeLocked(id models.MyBikeID, userID models.UserID) (models.MyBike, bool) {
	mb, ok := r.myBikes[id]
	if !ok || mb.UserID != userID || mb.OwnStatus != models.OwnStatusOwn {
		return models.MyBike{}, false
	}
	return mb, true
}

func (r *MemoryRepository) GetMyBike(ctx context.Context, id models.MyBikeID, userID models.UserID) (*models.MyBike, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mb, ok := r.getMyBikeLocked(id, userID)
	if !ok {
		return nil, nil
	}
	return &mb, nil
}

func (r *MemoryRepository) detailLocked(mb models.MyBike) models.MyBikeDetail {
	ub := r.userBikes[mb.UserBikeID]
	bike := r.bikes[ub.BikeID]
	name := bike.ManufacturerName
	if m, ok := r.manufacturers[bike.ManufacturerID]; ok {
		name = m.Name
	}
	return models.MyBikeDetail{
		MyBikeID:         mb.ID,
		UserBikeID:       mb.UserBikeID,
		BikeID:           ub.BikeID,
		ManufacturerName: name,
		ModelName:        bike.ModelName,
		Displacement:     bike.Displacement,
		ModelYear:        bike.ModelYear,
		Nickname:         mb.Nickname,
		PurchaseDate:     mb.PurchaseDate,
		PurchasePrice:    mb.PurchasePrice,
		PurchaseMileage:  mb.PurchaseMileage,
		TotalMileage:     mb.TotalMileage,
		CreatedAt:        mb.CreatedAt,
		UpdatedAt:        mb.UpdatedAt,
	}
}

func (r *MemoryRepository) GetMyBikeDetail(ctx context.Context, id models.MyBikeID, userID models.UserID) (*models.MyBikeDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mb, ok := r.getMyBikeLocked(id, userID)
	if !ok {
		return nil, nil
	}
	detail := r.detailLocked(mb)
	return &detail, nil
}

func (r *MemoryRepository) ListMyBikeDetails(ctx context.Context, userID models.UserID) ([]models.MyBikeDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var owned []models.MyBike
	for _, mb := range r.myBikes {
		if mb.UserID == userID && mb.OwnStatus == models.OwnStatusOwn {
			owned = append(owned, mb)
		}
	}
	// Newest first
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })

	details := make([]models.MyBikeDetail, 0, len(owned))
	for _, mb := range owned {
		details = append(details, r.detailLocked(mb))
	}
	return details, nil
}

// UpdateMyBike applies only the supplied fields under one lock, matching the
// single-statement partial write of the SQL implementation.
func (r *MemoryRepository) UpdateMyBike(ctx context.Context, id models.MyBikeID, userID models.UserID, changes models.UpdateMyBikeRequest) (*models.MyBike, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mb, ok := r.getMyBikeLocked(id, userID)
	if !ok {
		return nil, ErrNotFound
	}

	if changes.Nickname.Defined {
		mb.Nickname = changes.Nickname.Value
	}
	if changes.PurchaseDate.Defined {
		mb.PurchaseDate = changes.PurchaseDate.Value
	}
	if changes.PurchasePrice.Defined {
		mb.PurchasePrice = changes.PurchasePrice.Value
	}
	if changes.PurchaseMileage.Defined {
		mb.PurchaseMileage = changes.PurchaseMileage.Value
	}
	// Null totalMileage keeps the current value.
	if v, ok := changes.TotalMileage.Get(); ok {
		mb.TotalMileage = v
	}
	mb.UpdatedAt = time.Now().UTC()

	r.myBikes[mb.ID] = mb
	return &mb, nil
}

func (r *MemoryRepository) CreateFuelLog(ctx context.Context, userID models.UserID, fuelLog *models.FuelLog, advance bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mb, ok := r.getMyBikeLocked(fuelLog.MyBikeID, userID)
	if !ok {
		return ErrNotFound
	}

	if fuelLog.ID == "" {
		fuelLog.ID = models.FuelLogID(uuid.New().String())
	}
	now := time.Now().UTC()
	fuelLog.CreatedAt = now
	fuelLog.UpdatedAt = now
	r.fuelLogs[fuelLog.ID] = *fuelLog

	if advance && fuelLog.Mileage > mb.TotalMileage {
		mb.TotalMileage = fuelLog.Mileage
		mb.UpdatedAt = now
		r.myBikes[mb.ID] = mb
	}
	return nil
}

func (r *MemoryRepository) ListFuelLogs(ctx context.Context, myBikeID models.MyBikeID, query models.FuelLogQuery) ([]models.FuelLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []models.FuelLog
	for _, fl := range r.fuelLogs {
		if fl.MyBikeID == myBikeID {
			list = append(list, fl)
		}
	}

	asc := query.SortOrder == models.SortAsc
	sort.Slice(list, func(i, j int) bool {
		var less bool
		if query.SortBy == models.FuelLogSortMileage {
			less = list[i].Mileage < list[j].Mileage
		} else {
			less = list[i].RefueledAt.Before(list[j].RefueledAt)
		}
		if asc {
			return less
		}
		return !less
	})

	return page(list, query.Offset(), query.PageSize), nil
}

func (r *MemoryRepository) UpdateFuelLog(ctx context.Context, id models.FuelLogID, myBikeID models.MyBikeID, changes models.UpdateFuelLogRequest) (*models.FuelLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fl, ok := r.fuelLogs[id]
	if !ok || fl.MyBikeID != myBikeID {
		return nil, ErrNotFound
	}

	if v, ok := changes.RefueledAt.Get(); ok {
		fl.RefueledAt = v
	}
	if v, ok := changes.Mileage.Get(); ok {
		fl.Mileage = v
	}
	if v, ok := changes.Amount.Get(); ok {
		fl.Amount = v
	}
	if v, ok := changes.TotalPrice.Get(); ok {
		fl.TotalPrice = v
	}
	fl.UpdatedAt = time.Now().UTC()

	r.fuelLogs[id] = fl
	return &fl, nil
}

func page[T any](list []T, offset, limit int) []T {
	if offset >= len(list) {
		return []T{}
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}
