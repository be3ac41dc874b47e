package models

import "strings"

// Contact is a personal contact owned by exactly one UserRecord.
//
// Name, CPF and Phone are required. The address fields and the coordinates
// are optional; Latitude/Longitude are nil until the contact is geocoded.
type Contact struct {
	ID         string   `json:"id"`
	Name       string   `json:"name" validate:"required"`
	CPF        string   `json:"cpf" validate:"required,cpf"`
	Phone      string   `json:"phone" validate:"required,min=10"`
	CEP        string   `json:"cep,omitempty" validate:"omitempty,cep"`
	State      string   `json:"state,omitempty" validate:"omitempty,len=2,alpha"`
	City       string   `json:"city,omitempty"`
	Address    string   `json:"address,omitempty"`
	Number     string   `json:"number,omitempty"`
	Complement string   `json:"complement,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// Clone returns a deep copy of c.
func (c Contact) Clone() Contact {
	if c.Latitude != nil {
		lat := *c.Latitude
		c.Latitude = &lat
	}
	if c.Longitude != nil {
		lng := *c.Longitude
		c.Longitude = &lng
	}
	return c
}

// HasAddress reports whether enough address data is present to geocode.
func (c Contact) HasAddress() bool {
	return strings.TrimSpace(c.Address) != "" && strings.TrimSpace(c.City) != ""
}

// HasCoordinates reports whether the contact was geocoded.
func (c Contact) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// SetCoordinates stores a geocoding result.
func (c *Contact) SetCoordinates(lat, lng float64) {
	c.Latitude = &lat
	c.Longitude = &lng
}
