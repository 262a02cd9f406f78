package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auditlog"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

const minPasswordLen = 6

// RegisterInput is a self-registration request.
type RegisterInput struct {
	FirstName   string `json:"firstName" validate:"required,max=50"`
	LastName    string `json:"lastName" validate:"required,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
}

// ProfileInput is the editable part of a customer.
type ProfileInput struct {
	FirstName   string `json:"firstName" validate:"required,max=50"`
	LastName    string `json:"lastName" validate:"required,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// CustomerFilter narrows the admin customer listing.
type CustomerFilter struct {
	// Search matches first name, last name or email, case-insensitively.
	Search   string
	Country  string
	City     string
	Page     int
	PageSize int
}

func (f CustomerFilter) match(c models.Customer) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !lo.SomeBy([]string{c.FirstName, c.LastName, c.Email}, func(s string) bool {
			return strings.Contains(strings.ToLower(s), q)
		}) {
			return false
		}
	}
	if f.Country != "" && !strings.EqualFold(c.Country, f.Country) {
		return false
	}
	return f.City == "" || strings.EqualFold(c.City, f.City)
}

// AdminCredentials is the single configured administrator login.
type AdminCredentials struct {
	Email    string
	Password string
}

// Principal is who a successful login identifies.
type Principal struct {
	Role     string                  `json:"role"`
	Customer *models.CustomerProfile `json:"customer,omitempty"`
}

// Customers handles registration, login and customer administration.
// Email uniqueness is checked by a scan before insert, so two concurrent
// registrations with one email can both succeed.
type Customers struct {
	customers *repositories.CustomerRepository
	audit     auditlog.Appender
	policy    WritePolicy
	admin     AdminCredentials
	now       func() time.Time
}

func NewCustomers(customers *repositories.CustomerRepository, audit auditlog.Appender, policy WritePolicy, admin AdminCredentials) *Customers {
	return &Customers{customers: customers, audit: audit, policy: policy, admin: admin, now: time.Now}
}

func (s *Customers) Register(ctx context.Context, in RegisterInput) (models.Customer, error) {
	email := strings.TrimSpace(in.Email)
	switch {
	case strings.TrimSpace(in.FirstName) == "":
		return models.Customer{}, invalid("firstName", "is required")
	case strings.TrimSpace(in.LastName) == "":
		return models.Customer{}, invalid("lastName", "is required")
	case !strings.Contains(email, "@"):
		return models.Customer{}, invalid("email", "must be a valid email address")
	case len(in.Password) < minPasswordLen:
		return models.Customer{}, invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}

	if _, taken, err := s.customers.FindByEmail(ctx, email); err != nil {
		return models.Customer{}, err
	} else if taken {
		return models.Customer{}, ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.Customer{}, fmt.Errorf("hash password: %w", err)
	}

	c, err := s.customers.Create(ctx, models.Customer{
		ID:           models.NewID(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		Address:      in.Address,
		PhoneNumber:  in.PhoneNumber,
		City:         in.City,
		State:        in.State,
		PostalCode:   in.PostalCode,
		Country:      lo.CoalesceOrEmpty(strings.TrimSpace(in.Country), models.DefaultCountry),
		RegisteredAt: s.now().UTC(),
		IsActive:     true,
	})
	if err != nil {
		return models.Customer{}, fmt.Errorf("register customer: %w", err)
	}

	s.audit.Append(ctx, fmt.Sprintf("New customer registered: %s", c.Email))
	return c, nil
}

// Login checks the configured admin first, then active customers.
func (s *Customers) Login(ctx context.Context, email, password string) (Principal, error) {
	if s.admin.Email != "" && strings.EqualFold(email, s.admin.Email) &&
		subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password)) == 1 {
		return Principal{Role: auth.RoleAdmin}, nil
	}

	c, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return Principal{}, err
	}
	p := c.Profile()
	return Principal{Role: auth.RoleCustomer, Customer: &p}, nil
}

// Authenticate returns the active customer owning email and password.
func (s *Customers) Authenticate(ctx context.Context, email, password string) (models.Customer, error) {
	c, ok, err := s.customers.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return models.Customer{}, err
	}
	if !ok || !c.IsActive || !auth.CheckPassword(c.PasswordHash, password) {
		logger.Component(ctx, "customers").Info("login rejected", "email", email)
		return models.Customer{}, ErrInvalidCredentials
	}
	return c, nil
}

func (s *Customers) Get(ctx context.Context, id string) (models.Customer, error) {
	c, err := s.customers.Find(ctx, id)
	if err != nil {
		return models.Customer{}, notFound(err, ErrCustomerNotFound)
	}
	return c, nil
}

// All returns every customer.
func (s *Customers) All(ctx context.Context) ([]models.Customer, error) {
	return s.customers.All(ctx, nil)
}

// List pages customers, newest registrations first.
func (s *Customers) List(ctx context.Context, f CustomerFilter) (Page[models.CustomerProfile], error) {
	all, err := s.customers.All(ctx, f.match)
	if err != nil {
		return Page[models.CustomerProfile]{}, err
	}
	slices.SortStableFunc(all, func(a, b models.Customer) int {
		return b.RegisteredAt.Compare(a.RegisteredAt)
	})
	page := Paginate(all, f.Page, f.PageSize)
	return Page[models.CustomerProfile]{
		Items:      lo.Map(page.Items, func(c models.Customer, _ int) models.CustomerProfile { return c.Profile() }),
		Pagination: page.Pagination,
	}, nil
}

// UpdateProfile replaces the editable fields. Changing the email re-runs the
// advisory uniqueness check.
func (s *Customers) UpdateProfile(ctx context.Context, id string, in ProfileInput) (models.Customer, error) {
	email := strings.TrimSpace(in.Email)
	switch {
	case strings.TrimSpace(in.FirstName) == "":
		return models.Customer{}, invalid("firstName", "is required")
	case strings.TrimSpace(in.LastName) == "":
		return models.Customer{}, invalid("lastName", "is required")
	case !strings.Contains(email, "@"):
		return models.Customer{}, invalid("email", "must be a valid email address")
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return models.Customer{}, err
	}
	if !strings.EqualFold(c.Email, email) {
		other, taken, err := s.customers.FindByEmail(ctx, email)
		if err != nil {
			return models.Customer{}, err
		}
		if taken && other.ID != id {
			return models.Customer{}, ErrDuplicateEmail
		}
	}

	c.FirstName = strings.TrimSpace(in.FirstName)
	c.LastName = strings.TrimSpace(in.LastName)
	c.Email = email
	c.Address = in.Address
	c.PhoneNumber = in.PhoneNumber
	c.City = in.City
	c.State = in.State
	c.PostalCode = in.PostalCode
	c.Country = lo.CoalesceOrEmpty(strings.TrimSpace(in.Country), models.DefaultCountry)
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}

	updated, err := s.customers.Update(ctx, c, s.policy.Mode(c.ETag))
	if err != nil {
		return models.Customer{}, notFound(err, ErrCustomerNotFound)
	}
	s.audit.Append(ctx, fmt.Sprintf("Customer updated: %s %s (ID: %s)", c.FirstName, c.LastName, id))
	return updated, nil
}

// ChangePassword requires the current secret.
func (s *Customers) ChangePassword(ctx context.Context, id, current, next string) error {
	if len(next) < minPasswordLen {
		return invalid("newPassword", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(c.PasswordHash, current) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	c.PasswordHash = hash
	if _, err := s.customers.Update(ctx, c, s.policy.Mode(c.ETag)); err != nil {
		return notFound(err, ErrCustomerNotFound)
	}
	return nil
}

func (s *Customers) Delete(ctx context.Context, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.customers.Delete(ctx, id); err != nil {
		return notFound(err, ErrCustomerNotFound)
	}
	s.audit.Append(ctx, fmt.Sprintf("Customer deleted: %s %s (ID: %s)", c.FirstName, c.LastName, id))
	return nil
}
