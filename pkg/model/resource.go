package model

import "time"

type ResourceType string

const (
	ResourceField          ResourceType = "field"
	ResourceIndoorFacility ResourceType = "indoor_facility"
	ResourceGym            ResourceType = "gym"
	ResourceRoom           ResourceType = "room"
	ResourceEquipmentSet   ResourceType = "equipment_set"
	ResourceVehicle        ResourceType = "vehicle"
)

type ResourceStatus string

const (
	ResourceActive   ResourceStatus = "active"
	ResourceInactive ResourceStatus = "inactive"
)

// DayAvailability is the bookable window of a resource on one weekday.
// Start and End are only meaningful when Available is set.
type DayAvailability struct {
	Day       Weekday `json:"day" bson:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Available bool    `json:"available" bson:"available"`
	Start     string  `json:"start,omitempty" bson:"start,omitempty" validate:"omitempty,clock_time"`
	End       string  `json:"end,omitempty" bson:"end,omitempty" validate:"omitempty,clock_time"`
}

type Resource struct {
	ID           string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string            `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Type         ResourceType      `json:"type" bson:"type" validate:"required,oneof=field indoor_facility gym room equipment_set vehicle"`
	Capacity     int               `json:"capacity" bson:"capacity" validate:"min=0,max=10000"`
	Availability []DayAvailability `json:"availability" bson:"availability" validate:"max=7,unique=Day,dive"`
	Status       ResourceStatus    `json:"status" bson:"status" validate:"required,oneof=active inactive"`
	Location     string            `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty,max=200"`
	Description  string            `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	CreatedAt    time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" bson:"updated_at"`
}

type ResourceUpdate struct {
	Name         string             `json:"name,omitempty"`
	Type         ResourceType       `json:"type,omitempty"`
	Capacity     *int               `json:"capacity,omitempty"`
	Availability *[]DayAvailability `json:"availability,omitempty"`
	Status       ResourceStatus     `json:"status,omitempty"`
	Location     *string            `json:"location,omitempty"`
	Description  *string            `json:"description,omitempty"`
}

type ResourceFilter struct {
	Type   ResourceType
	Status ResourceStatus
	Search string
	Limit  int
	Offset int64
}

// WindowFor returns the availability window configured for the given weekday.
func (r *Resource) WindowFor(day Weekday) (DayAvailability, bool) {
	for _, a := range r.Availability {
		if a.Day == day {
			return a, true
		}
	}
	return DayAvailability{}, false
}
