package models

import "time"

// Request models
type RegisterUserRequest struct {
	Name  string `json:"name" binding:"required,max=50"`
	Email string `json:"email" binding:"required,email"`
}

type RegisterMyBikeRequest struct {
	BikeID                string     `json:"bikeId" binding:"required"`
	SerialNumber          *string    `json:"serialNumber" binding:"omitempty,min=1,max=100"`
	Nickname              *string    `json:"nickname" binding:"omitempty,max=50"`
	PurchaseDate          *time.Time `json:"purchaseDate"`
	PurchasePrice         *int       `json:"purchasePrice" binding:"omitempty,gte=0"`
	PurchaseMileage       *int       `json:"purchaseMileage" binding:"omitempty,gte=0"`
	TotalMileage          *int       `json:"totalMileage" binding:"omitempty,gte=0"`
	RejectDuplicateSerial bool       `json:"rejectDuplicateSerial"`
}

// UpdateMyBikeRequest carries field presence: an omitted key keeps the stored
// value, an explicit null clears it. TotalMileage ignores null.
type UpdateMyBikeRequest struct {
	Nickname        Optional[string]    `json:"nickname"`
	PurchaseDate    Optional[time.Time] `json:"purchaseDate"`
	PurchasePrice   Optional[int]       `json:"purchasePrice"`
	PurchaseMileage Optional[int]       `json:"purchaseMileage"`
	TotalMileage    Optional[int]       `json:"totalMileage"`
}

type RegisterFuelLogRequest struct {
	RefueledAt         time.Time `json:"refueledAt" binding:"required"`
	Mileage            int       `json:"mileage"`
	Amount             float64   `json:"amount"`
	TotalPrice         int       `json:"totalPrice"`
	UpdateTotalMileage bool      `json:"updateTotalMileage"`
}

type UpdateFuelLogRequest struct {
	RefueledAt Optional[time.Time] `json:"refueledAt"`
	Mileage    Optional[int]       `json:"mileage"`
	Amount     Optional[float64]   `json:"amount"`
	TotalPrice Optional[int]       `json:"totalPrice"`
}

// Response models
type RegisterUserResponse struct {
	Status string `json:"status"`
	UserID UserID `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type ProfileResponse struct {
	Status string `json:"status"`
	UserID UserID `json:"userId"`
	Name   string `json:"name"`
}

type ManufacturersResponse struct {
	Status        string         `json:"status"`
	Manufacturers []Manufacturer `json:"manufacturers"`
}

type BikeSearchResponse struct {
	Status string `json:"status"`
	Bikes  []Bike `json:"bikes"`
}

type RegisterMyBikeResponse struct {
	Status       string     `json:"status"`
	MyBikeID     MyBikeID   `json:"myBikeId"`
	UserBikeID   UserBikeID `json:"userBikeId"`
	BikeID       BikeID     `json:"bikeId"`
	Manufacturer string     `json:"manufacturer"`
	ModelName    string     `json:"modelName"`
	Displacement int        `json:"displacement"`
	ModelYear    int        `json:"modelYear"`
	TotalMileage int        `json:"totalMileage"`
	OwnedAt      time.Time  `json:"ownedAt"`
}

type MyBikeDetailResponse struct {
	Status string       `json:"status"`
	MyBike MyBikeDetail `json:"myBike"`
}

type MyBikeListResponse struct {
	Status  string         `json:"status"`
	MyBikes []MyBikeDetail `json:"myBikes"`
}

type MyBikeResponse struct {
	Status string `json:"status"`
	MyBike MyBike `json:"myBike"`
}

type FuelLogResponse struct {
	Status  string  `json:"status"`
	FuelLog FuelLog `json:"fuelLog"`
}

type FuelLogListResponse struct {
	Status   string    `json:"status"`
	FuelLogs []FuelLog `json:"fuelLogs"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}
