package user

import "time"

// Location is a named point of interest owned by exactly one user. Its id is
// unique within the owning user; coordinates are not deduplicated across
// users at the data level (the fetch orchestrator collapses them per sweep).
type Location struct {
	ID        string  `json:"id" bson:"id"`
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
	Name      string  `json:"name" bson:"name"`
}

// User is an identity plus its owned locations. The password is stored only
// as a salted hash and never serialized to clients.
type User struct {
	ID             string     `json:"id" bson:"id"`
	Name           string     `json:"name" bson:"name"`
	Email          string     `json:"email" bson:"email"`
	HashedPassword string     `json:"-" bson:"hashed_password"`
	Locations      []Location `json:"locations" bson:"locations"`
}

// Report is a free-form user-submitted report. Beyond the generated id and
// timestamp its fields are stored as submitted.
type Report struct {
	ID          string         `json:"id" bson:"id"`
	SubmittedAt time.Time      `json:"timestamp" bson:"timestamp"`
	Fields      map[string]any `json:"fields" bson:"fields"`
}
