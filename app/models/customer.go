package models

import (
	"time"

	"github.com/shashiranjanraj/storefront/pkg/record"
)

const DefaultCountry = "United States"

// Customer is a registered shopper. PasswordHash is persisted but never
// rendered; handlers return Profile() instead.
type Customer struct {
	record.Meta
	ID           string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Address      string    `json:"address"`
	PhoneNumber  string    `json:"phoneNumber"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postalCode"`
	Country      string    `json:"country"`
	RegisteredAt time.Time `json:"registrationDate"`
	IsActive     bool      `json:"isActive"`
}

// CustomerProfile is the public view of a Customer.
type CustomerProfile struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	PhoneNumber  string    `json:"phoneNumber"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postalCode"`
	Country      string    `json:"country"`
	RegisteredAt time.Time `json:"registrationDate"`
	IsActive     bool      `json:"isActive"`
}

func (c Customer) FullName() string { return c.FirstName + " " + c.LastName }

func (c Customer) Profile() CustomerProfile {
	return CustomerProfile{
		ID:           c.ID,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Email:        c.Email,
		Address:      c.Address,
		PhoneNumber:  c.PhoneNumber,
		City:         c.City,
		State:        c.State,
		PostalCode:   c.PostalCode,
		Country:      c.Country,
		RegisteredAt: c.RegisteredAt,
		IsActive:     c.IsActive,
	}
}

func (c Customer) ToEntity() (record.Entity, error) {
	e, err := record.Encode(PartitionCustomers, c.ID, c)
	e.ETag = c.ETag
	return e, err
}

func CustomerFromEntity(e record.Entity) (Customer, error) {
	var c Customer
	if err := record.Decode(e, &c); err != nil {
		return Customer{}, err
	}
	c.ID = e.Row
	c.Stamp(e)
	return c, nil
}
