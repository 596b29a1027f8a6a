package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/motogarage/motogarage-server/internal/models"
)

const pqUniqueViolation = "23505"

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

// withTx runs fn inside a transaction, rolling back on error.
func (r *PostgresRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// User repository methods
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User, provider *models.AuthProvider) error {
	if user.ID == "" {
		user.ID = models.UserID(uuid.New().String())
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	provider.UserID = user.ID
	provider.IsActive = true
	provider.CreatedAt = now

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, email, name, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, user.ID, user.Email, user.Name, user.CreatedAt, user.UpdatedAt)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO auth_providers (provider, external_id, user_id, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, provider.Provider, provider.ExternalID, provider.UserID, provider.IsActive, provider.CreatedAt)
		return err
	})

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id models.UserID) (*models.User, error) {
	query := `SELECT * FROM users WHERE id = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) FindUserIDByExternalID(ctx context.Context, provider, externalID string) (models.UserID, error) {
	query := `
		SELECT user_id FROM auth_providers
		WHERE provider = $1 AND external_id = $2 AND is_active
	`

	var userID models.UserID
	err := r.db.GetContext(ctx, &userID, query, provider, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil // Not registered yet
		}
		return "", err
	}

	return userID, nil
}

// Catalog repository methods
func (r *PostgresRepository) ListManufacturers(ctx context.Context) ([]models.Manufacturer, error) {
	query := `SELECT * FROM manufacturers ORDER BY name_en ASC`

	var manufacturers []models.Manufacturer
	err := r.db.SelectContext(ctx, &manufacturers, query)
	if err != nil {
		return nil, err
	}

	return manufacturers, nil
}

var bikeSortColumns = map[models.BikeSort]string{
	models.BikeSortModelName:    "b.model_name",
	models.BikeSortDisplacement: "b.displacement",
	models.BikeSortModelYear:    "b.model_year",
}

func (r *PostgresRepository) SearchBikes(ctx context.Context, params models.BikeSearchParams) ([]models.Bike, error) {
	params = params.Normalize()

	query := `
		SELECT b.id, b.manufacturer_id, m.name AS manufacturer_name,
		       b.model_name, b.displacement, b.model_year
		FROM bikes b
		JOIN manufacturers m ON m.id = b.manufacturer_id
		WHERE 1=1
	`

	var args []interface{}
	addArg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.ManufacturerID != "" {
		query += ` AND b.manufacturer_id = ` + addArg(params.ManufacturerID)
	}
	if params.ModelName != "" {
		query += ` AND b.model_name ILIKE ` + addArg("%"+params.ModelName+"%")
	}
	if params.DisplacementMin > 0 {
		query += ` AND b.displacement >= ` + addArg(params.DisplacementMin)
	}
	if params.DisplacementMax > 0 {
		query += ` AND b.displacement <= ` + addArg(params.DisplacementMax)
	}
	if params.ModelYearMin > 0 {
		query += ` AND b.model_year >= ` + addArg(params.ModelYearMin)
	}
	if params.ModelYearMax > 0 {
		query += ` AND b.model_year <= ` + addArg(params.ModelYearMax)
	}

	dir := "ASC"
	if params.SortOrder == models.SortDesc {
		dir = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", bikeSortColumns[params.SortBy], dir)
	query += ` LIMIT ` + addArg(params.PageSize)
	query += ` OFFSET ` + addArg(params.Offset())

	var bikes []models.Bike
	err := r.db.SelectContext(ctx, &bikes, query, args...)
	if err != nil {
		return nil, err
	}

	return bikes, nil
}

func (r *PostgresRepository) GetBike(ctx context.Context, id models.BikeID) (*models.Bike, error) {
	query := `
		SELECT b.id, b.manufacturer_id, m.name AS manufacturer_name,
		       b.model_name, b.displacement, b.model_year
		FROM bikes b
		JOIN manufacturers m ON m.id = b.manufacturer_id
		WHERE b.id = $1
	`

	var bike models.Bike
	err := r.db.GetContext(ctx, &bike, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Bike not found
		}
		return nil, err
	}

	return &bike, nil
}

// Ownership repository methods
func (r *PostgresRepository) FindUserBikeBySerial(ctx context.Context, serialNumber string) (*models.UserBike, error) {
	query := `
		SELECT * FROM user_bikes
		WHERE serial_number = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var userBike models.UserBike
	err := r.db.GetContext(ctx, &userBike, query, serialNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &userBike, nil
}

func (r *PostgresRepository) RegisterMyBike(ctx context.Context, userBike *models.UserBike, myBike *models.MyBike) error {
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

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO user_bikes (id, bike_id, serial_number, created_at)
			VALUES ($1, $2, $3, $4)
		`, userBike.ID, userBike.BikeID, userBike.SerialNumber, userBike.CreatedAt)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO my_bikes (
				id, user_bike_id, user_id, nickname, purchase_date, purchase_price,
				purchase_mileage, total_mileage, owned_at, sold_at, own_status,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, myBike.ID, myBike.UserBikeID, myBike.UserID, myBike.Nickname,
			myBike.PurchaseDate, myBike.PurchasePrice, myBike.PurchaseMileage,
			myBike.TotalMileage, myBike.OwnedAt, myBike.SoldAt, myBike.OwnStatus,
			myBike.CreatedAt, myBike.UpdatedAt)
		return err
	})
}

func (r *PostgresRepository) GetMyBike(ctx context.Context, id models.MyBikeID, userID models.UserID) (*models.MyBike, error) {
	query := `
		SELECT * FROM my_bikes
		WHERE id = $1 AND user_id = $2 AND own_status = 'OWN'
	`

	var myBike models.MyBike
	err := r.db.GetContext(ctx, &myBike, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Missing and not-owned are the same to callers
		}
		return nil, err
	}

	return &myBike, nil
}

const myBikeDetailColumns = `
	mb.id, mb.user_bike_id, ub.bike_id, m.name AS manufacturer_name,
	b.model_name, b.displacement, b.model_year, mb.nickname, mb.purchase_date,
	mb.purchase_price, mb.purchase_mileage, mb.total_mileage,
	mb.created_at, mb.updated_at
`

func (r *PostgresRepository) GetMyBikeDetail(ctx context.Context, id models.MyBikeID, userID models.UserID) (*models.MyBikeDetail, error) {
	query := `
		SELECT ` + myBikeDetailColumns + `
		FROM my_bikes mb
		JOIN user_bikes ub ON ub.id = mb.user_bike_id
		JOIN bikes b ON b.id = ub.bike_id
		JOIN manufacturers m ON m.id = b.manufacturer_id
		WHERE mb.id = $1 AND mb.user_id = $2 AND mb.own_status = 'OWN'
	`

	var detail models.MyBikeDetail
	err := r.db.GetContext(ctx, &detail, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &detail, nil
}

func (r *PostgresRepository) ListMyBikeDetails(ctx context.Context, userID models.UserID) ([]models.MyBikeDetail, error) {
	query := `
		SELECT ` + myBikeDetailColumns + `
		FROM my_bikes mb
		JOIN user_bikes ub ON ub.id = mb.user_bike_id
		JOIN bikes b ON b.id = ub.bike_id
		JOIN manufacturers m ON m.id = b.manufacturer_id
		WHERE mb.user_id = $1 AND mb.own_status = 'OWN'
		ORDER BY mb.created_at DESC
	`

	var details []models.MyBikeDetail
	err := r.db.SelectContext(ctx, &details, query, userID)
	if err != nil {
		return nil, err
	}

	return details, nil
}

// UpdateMyBike writes only the columns present in changes, in one statement.
// Omitted columns never appear in the SET clause, so a nickname-only edit
// cannot write back a stale total_mileage over a concurrent advance. A null
// totalMileage is skipped; the other nullable columns are set to NULL.
func (r *PostgresRepository) UpdateMyBike(ctx context.Context, id models.MyBikeID, userID models.UserID, changes models.UpdateMyBikeRequest) (*models.MyBike, error) {
	var args []interface{}
	addArg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	var set []string
	if changes.Nickname.Defined {
		set = append(set, "nickname = "+addArg(changes.Nickname.Value))
	}
	if changes.PurchaseDate.Defined {
		set = append(set, "purchase_date = "+addArg(changes.PurchaseDate.Value))
	}
	if changes.PurchasePrice.Defined {
		set = append(set, "purchase_price = "+addArg(changes.PurchasePrice.Value))
	}
	if changes.PurchaseMileage.Defined {
		set = append(set, "purchase_mileage = "+addArg(changes.PurchaseMileage.Value))
	}
	if v, ok := changes.TotalMileage.Get(); ok {
		set = append(set, "total_mileage = "+addArg(v))
	}
	set = append(set, "updated_at = "+addArg(time.Now().UTC()))

	query := fmt.Sprintf(
		"UPDATE my_bikes SET %s WHERE id = %s AND user_id = %s AND own_status = 'OWN' RETURNING *",
		strings.Join(set, ", "), addArg(id), addArg(userID))

	var myBike models.MyBike
	if err := r.db.GetContext(ctx, &myBike, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &myBike, nil
}

// Fuel-log repository methods
func (r *PostgresRepository) CreateFuelLog(ctx context.Context, userID models.UserID, fuelLog *models.FuelLog, advance bool) error {
	if fuelLog.ID == "" {
		fuelLog.ID = models.FuelLogID(uuid.New().String())
	}

	now := time.Now().UTC()
	fuelLog.CreatedAt = now
	fuelLog.UpdatedAt = now

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		// Lock the ownership row so a concurrent log for the same bike cannot
		// read a stale total_mileage.
		var totalMileage int
		err := tx.QueryRowContext(ctx, `
			SELECT total_mileage FROM my_bikes
			WHERE id = $1 AND user_id = $2 AND own_status = 'OWN'
			FOR UPDATE
		`, fuelLog.MyBikeID, userID).Scan(&totalMileage)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO fuel_logs (id, my_bike_id, refueled_at, mileage, amount, total_price, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, fuelLog.ID, fuelLog.MyBikeID, fuelLog.RefueledAt, fuelLog.Mileage,
			fuelLog.Amount, fuelLog.TotalPrice, fuelLog.CreatedAt, fuelLog.UpdatedAt)
		if err != nil {
			return err
		}

		// Strictly-greater guard: a back-filled receipt never lowers the
		// visible running total, and an equal reading is a no-op.
		if advance && fuelLog.Mileage > totalMileage {
			_, err = tx.ExecContext(ctx, `
				UPDATE my_bikes SET total_mileage = $1, updated_at = $2
				WHERE id = $3
			`, fuelLog.Mileage, now, fuelLog.MyBikeID)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

var fuelLogSortColumns = map[models.FuelLogSort]string{
	models.FuelLogSortRefueledAt: "refueled_at",
	models.FuelLogSortMileage:    "mileage",
}

func (r *PostgresRepository) ListFuelLogs(ctx context.Context, myBikeID models.MyBikeID, query models.FuelLogQuery) ([]models.FuelLog, error) {
	dir := "DESC"
	if query.SortOrder == models.SortAsc {
		dir = "ASC"
	}

	stmt := fmt.Sprintf(`
		SELECT * FROM fuel_logs
		WHERE my_bike_id = $1
		ORDER BY %s %s
		LIMIT $2 OFFSET $3
	`, fuelLogSortColumns[query.SortBy], dir)

	var fuelLogs []models.FuelLog
	err := r.db.SelectContext(ctx, &fuelLogs, stmt, myBikeID, query.PageSize, query.Offset())
	if err != nil {
		return nil, err
	}

	return fuelLogs, nil
}

// UpdateFuelLog writes only the supplied columns in one statement, scoped to
// the owning bike so a log id from another bike reads as missing.
func (r *PostgresRepository) UpdateFuelLog(ctx context.Context, id models.FuelLogID, myBikeID models.MyBikeID, changes models.UpdateFuelLogRequest) (*models.FuelLog, error) {
	var args []interface{}
	addArg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	var set []string
	if v, ok := changes.RefueledAt.Get(); ok {
		set = append(set, "refueled_at = "+addArg(v))
	}
	if v, ok := changes.Mileage.Get(); ok {
		set = append(set, "mileage = "+addArg(v))
	}
	if v, ok := changes.Amount.Get(); ok {
		set = append(set, "amount = "+addArg(v))
	}
	if v, ok := changes.TotalPrice.Get(); ok {
		set = append(set, "total_price = "+addArg(v))
	}
	set = append(set, "updated_at = "+addArg(time.Now().UTC()))

	query := fmt.Sprintf(
		"UPDATE fuel_logs SET %s WHERE id = %s AND my_bike_id = %s RETURNING *",
		strings.Join(set, ", "), addArg(id), addArg(myBikeID))

	var fuelLog models.FuelLog
	if err := r.db.GetContext(ctx, &fuelLog, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &fuelLog, nil
}
