package models

import "time"

// Observation represents a single appearance record of a (possibly
// unidentified) person captured by a campus camera. Records are produced by
// the upstream detection pipeline and are immutable once stored, except for
// the student_id backfill after identification.
type Observation struct {
	ID            int64     `json:"id" db:"id"`
	StudentID     *string   `json:"studentId,omitempty" db:"student_id"`
	CameraID      int64     `json:"cameraId" db:"camera_id"`
	Timestamp     time.Time `json:"timestamp" db:"timestamp"`
	LocationX     float64   `json:"locationX" db:"location_x"`
	LocationY     float64   `json:"locationY" db:"location_y"`
	HasBackpack   *bool     `json:"hasBackpack,omitempty" db:"has_backpack"`
	HasUmbrella   *bool     `json:"hasUmbrella,omitempty" db:"has_umbrella"`
	HasBicycle    *bool     `json:"hasBicycle,omitempty" db:"has_bicycle"`
	ClothingColor *string   `json:"clothingColor,omitempty" db:"clothing_color"`

	// Attributes holds optional appearance attributes beyond the fixed
	// columns. Values are validated at the query/filter boundary: only
	// booleans and single discrete strings participate in predicates.
	Attributes map[string]any `json:"attributes,omitempty" db:"-"`

	// FeatureVector is the appearance embedding produced by the external
	// extractor, if one has been stored for this record.
	FeatureVector []float64 `json:"featureVector,omitempty" db:"feature_vector"`

	// Camera enrichment, populated by the left join against the cameras
	// table. Nil when the camera_id has no matching camera row.
	CameraName *string  `json:"cameraName,omitempty" db:"-"`
	CameraX    *float64 `json:"cameraLocationX,omitempty" db:"-"`
	CameraY    *float64 `json:"cameraLocationY,omitempty" db:"-"`
}

// AttributeValue looks up an appearance attribute by name, checking the
// fixed columns before the open extension map. The second return reports
// whether the attribute is present on this record.
func (o *Observation) AttributeValue(name string) (any, bool) {
	switch name {
	case "has_backpack":
		if o.HasBackpack != nil {
			return *o.HasBackpack, true
		}
	case "has_umbrella":
		if o.HasUmbrella != nil {
			return *o.HasUmbrella, true
		}
	case "has_bicycle":
		if o.HasBicycle != nil {
			return *o.HasBicycle, true
		}
	case "clothing_color":
		if o.ClothingColor != nil {
			return *o.ClothingColor, true
		}
	default:
		if o.Attributes != nil {
			if v, ok := o.Attributes[name]; ok {
				return v, true
			}
		}
	}
	return nil, false
}

// Location returns the observation's own detection coordinates.
func (o *Observation) Location() (float64, float64) {
	return o.LocationX, o.LocationY
}
