package models

import (
	"time"
)

// OwnStatus is the lifecycle of a user's claim over a physical bike. Bikes
// are never hard-deleted; leaving OWN is the soft-delete.
type OwnStatus string

const (
	OwnStatusOwn         OwnStatus = "OWN"
	OwnStatusSold        OwnStatus = "SOLD"
	OwnStatusTransferred OwnStatus = "TRANSFERRED"
	OwnStatusScrapped    OwnStatus = "SCRAPPED"
)

// User represents a registered rider. Credentials live with the external
// identity provider; we only keep the provider link.
type User struct {
	ID        UserID    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// AuthProvider maps an external identity-provider subject to an internal user.
type AuthProvider struct {
	Provider   string    `db:"provider" json:"provider"`
	ExternalID string    `db:"external_id" json:"externalId"`
	UserID     UserID    `db:"user_id" json:"userId"`
	IsActive   bool      `db:"is_active" json:"isActive"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Manufacturer is master data maintained outside the request path.
type Manufacturer struct {
	ID      string `db:"id" json:"manufacturerId"`
	Name    string `db:"name" json:"name"`
	NameEn  string `db:"name_en" json:"nameEn"`
	Country string `db:"country" json:"country"`
}

// Bike is a catalog model entry (maker/model/year/displacement), not a
// physical unit. Read-only to this server.
type Bike struct {
	ID               BikeID `db:"id" json:"bikeId"`
	ManufacturerID   string `db:"manufacturer_id" json:"manufacturerId"`
	ManufacturerName string `db:"manufacturer_name" json:"manufacturer"`
	ModelName        string `db:"model_name" json:"modelName"`
	Displacement     int    `db:"displacement" json:"displacement"`
	ModelYear        int    `db:"model_year" json:"modelYear"`
}

// UserBike is one physical unit, optionally identified by serial number.
// Serial numbers are intentionally not unique: a transfer of ownership is a
// fresh registration of the same serial, not a mutation of this row.
type UserBike struct {
	ID           UserBikeID `db:"id" json:"userBikeId"`
	BikeID       BikeID     `db:"bike_id" json:"bikeId"`
	SerialNumber *string    `db:"serial_number" json:"serialNumber"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}

// MyBike is one user's ownership claim over a UserBike, carrying the running
// total mileage and the purchase facts.
type MyBike struct {
	ID              MyBikeID   `db:"id" json:"myBikeId"`
	UserBikeID      UserBikeID `db:"user_bike_id" json:"userBikeId"`
	UserID          UserID     `db:"user_id" json:"userId"`
	Nickname        *string    `db:"nickname" json:"nickname"`
	PurchaseDate    *time.Time `db:"purchase_date" json:"purchaseDate"`
	PurchasePrice   *int       `db:"purchase_price" json:"purchasePrice"`
	PurchaseMileage *int       `db:"purchase_mileage" json:"purchaseMileage"`
	TotalMileage    int        `db:"total_mileage" json:"totalMileage"`
	OwnedAt         time.Time  `db:"owned_at" json:"ownedAt"`
	SoldAt          *time.Time `db:"sold_at" json:"soldAt"`
	OwnStatus       OwnStatus  `db:"own_status" json:"ownStatus"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}

// MyBikeDetail joins a MyBike with its catalog attributes for responses.
type MyBikeDetail struct {
	MyBikeID         MyBikeID   `db:"id" json:"myBikeId"`
	UserBikeID       UserBikeID `db:"user_bike_id" json:"userBikeId"`
	BikeID           BikeID     `db:"bike_id" json:"bikeId"`
	ManufacturerName string     `db:"manufacturer_name" json:"manufacturerName"`
	ModelName        string     `db:"model_name" json:"modelName"`
	Displacement     int        `db:"displacement" json:"displacement"`
	ModelYear        int        `db:"model_year" json:"modelYear"`
	Nickname         *string    `db:"nickname" json:"nickname"`
	PurchaseDate     *time.Time `db:"purchase_date" json:"purchaseDate"`
	PurchasePrice    *int       `db:"purchase_price" json:"purchasePrice"`
	PurchaseMileage  *int       `db:"purchase_mileage" json:"purchaseMileage"`
	TotalMileage     int        `db:"total_mileage" json:"totalMileage"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updatedAt"`
}

// FuelLog is one refueling event recorded against a MyBike. Mileage is the
// odometer reading at refuel time, not a delta.
type FuelLog struct {
	ID         FuelLogID `db:"id" json:"fuelLogId"`
	MyBikeID   MyBikeID  `db:"my_bike_id" json:"myBikeId"`
	RefueledAt time.Time `db:"refueled_at" json:"refueledAt"`
	Mileage    int       `db:"mileage" json:"mileage"`
	Amount     float64   `db:"amount" json:"amount"`
	TotalPrice int       `db:"total_price" json:"totalPrice"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}
