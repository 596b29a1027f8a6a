package models

// Distinct id types so a BikeID can never be passed where a MyBikeID is
// expected. They stay plain strings on the wire and in the database.
type (
	UserID     string
	BikeID     string
	UserBikeID string
	MyBikeID   string
	FuelLogID  string
)

func (id UserID) String() string     { return string(id) }
func (id BikeID) String() string     { return string(id) }
func (id UserBikeID) String() string { return string(id) }
func (id MyBikeID) String() string   { return string(id) }
func (id FuelLogID) String() string  { return string(id) }
