package model

import "time"

// Entity is an organization or person whose attributes are filled into forms.
type Entity struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	StreetAddress string    `gorm:"size:255" json:"street_address"`
	City          string    `gorm:"size:100" json:"city"`
	State         string    `gorm:"size:100" json:"state"`
	ZipCode       string    `gorm:"size:20" json:"zip_code"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Entity) TableName() string {
	return "entities"
}

// Attribute returns the value of the given entity attribute. ok is false
// when field is not a recognized attribute.
func (e *Entity) Attribute(field EntityField) (value string, ok bool) {
	switch field {
	case FieldName:
		return e.Name, true
	case FieldStreetAddress:
		return e.StreetAddress, true
	case FieldCity:
		return e.City, true
	case FieldState:
		return e.State, true
	case FieldZipCode:
		return e.ZipCode, true
	default:
		return "", false
	}
}
