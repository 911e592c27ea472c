package organization

import (
	"regexp"
	"strings"
	"time"

	"github.com/webix/udirdlaga/modules/user"
	"github.com/webix/udirdlaga/pkg/rbac"
	"github.com/webix/udirdlaga/pkg/sanitizer"
	"github.com/webix/udirdlaga/pkg/tenantdb"
	"github.com/webix/udirdlaga/pkg/validator"
)

var domainPattern = regexp.MustCompile(
	`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// OwnerInput describes the first user of a new tenant. It becomes the
// owner of the organization.
type OwnerInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

func (in *OwnerInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = sanitizer.NormalizeEmail(in.Email)
	in.FirstName = sanitizer.NormalizeWhitespace(in.FirstName)
	in.LastName = sanitizer.NormalizeWhitespace(in.LastName)
	in.Phone = sanitizer.NormalizePhone(in.Phone)
}

func (in *OwnerInput) rules() []validator.Rule {
	return validator.Join(
		[]validator.Rule{
			validator.ValidUsername("adminUser.username", in.Username, 3, 30),
			validator.Required("adminUser.email", in.Email),
			validator.ValidEmail("adminUser.email", in.Email),
			validator.LenBetween("adminUser.firstName", in.FirstName, 2, 50),
			validator.LenBetween("adminUser.lastName", in.LastName, 2, 50),
			validator.StrongPassword("adminUser.password", in.Password, validator.DefaultPasswordStrength()),
		},
		validator.When(in.Phone != "", validator.ValidPhone("adminUser.phone", in.Phone)),
	)
}

// User builds the tenant user for the owner. The password is set by the
// caller after hashing.
func (in *OwnerInput) User() *user.User {
	return &user.User{
		Username:    in.Username,
		Email:       in.Email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Phone:       in.Phone,
		Role:        rbac.RoleOwner,
		Permissions: append([]string(nil), user.Permissions...),
		Status:      user.StatusActive,
	}
}

// RegisterInput is the payload of a new organization.
type RegisterInput struct {
	Name               string      `json:"name"`
	DisplayName        string      `json:"displayName"`
	Description        string      `json:"description"`
	Email              []string    `json:"email"`
	Phone              []string    `json:"phone"`
	Website            string      `json:"website"`
	RegistrationNumber string      `json:"registrationNumber"`
	TaxID              string      `json:"taxId"`
	Subdomain          string      `json:"subdomain"`
	CustomDomain       string      `json:"customDomain"`
	BusinessType       string      `json:"businessType"`
	Industry           string      `json:"industry"`
	Address            Address     `json:"address"`
	Owner              *OwnerInput `json:"adminUser"`
}

// Normalize trims every field, lowercases the subdomain and emails and
// fills in the defaults for optional enums.
func (in *RegisterInput) Normalize() {
	in.Name = sanitizer.NormalizeWhitespace(in.Name)
	in.DisplayName = sanitizer.NormalizeWhitespace(in.DisplayName)
	in.Description = strings.TrimSpace(in.Description)
	in.Email = sanitizer.CleanStrings(in.Email, sanitizer.NormalizeEmail)
	in.Phone = sanitizer.CleanStrings(in.Phone, sanitizer.NormalizePhone)
	in.Website = strings.TrimSpace(in.Website)
	in.RegistrationNumber = strings.TrimSpace(in.RegistrationNumber)
	in.TaxID = strings.TrimSpace(in.TaxID)
	in.Subdomain = sanitizer.TrimToLower(in.Subdomain)
	in.CustomDomain = sanitizer.TrimToLower(in.CustomDomain)
	in.BusinessType = sanitizer.TrimToLower(in.BusinessType)
	in.Industry = sanitizer.TrimToLower(in.Industry)
	if in.BusinessType == "" {
		in.BusinessType = DefaultBusinessType
	}
	if in.Industry == "" {
		in.Industry = DefaultIndustry
	}
	normalizeAddress(&in.Address)
	if in.Owner != nil {
		in.Owner.normalize()
	}
}

// Validate reports every invalid field. Call Normalize first.
func (in *RegisterInput) Validate() error {
	rules := validator.Join(
		[]validator.Rule{
			validator.LenBetween("name", in.Name, 2, 100),
			validator.LenBetween("displayName", in.DisplayName, 2, 100),
			validator.MaxLen("description", in.Description, 500),
			validator.NotEmpty("email", in.Email),
			validator.Each("email", in.Email, "must contain valid email addresses", validator.IsEmail),
			validator.Each("phone", in.Phone, "must contain valid phone numbers", validator.IsPhone),
			validator.LenBetween("registrationNumber", in.RegistrationNumber, 3, 50),
			validSubdomain("subdomain", in.Subdomain),
			validator.OneOf("businessType", in.BusinessType, BusinessTypes),
			validator.OneOf("industry", in.Industry, Industries),
		},
		validator.When(in.Website != "", validator.ValidURL("website", in.Website)),
		validator.When(in.CustomDomain != "", validator.Matches("customDomain", in.CustomDomain, domainPattern, "a valid domain name")),
		addressRules(in.Address),
	)
	if in.Owner != nil {
		rules = append(rules, in.Owner.rules()...)
	}
	return validator.Apply(rules...)
}

// Organization builds the pending organization record.
func (in *RegisterInput) Organization(now time.Time) *Organization {
	addr := in.Address
	if addr.Country == "" {
		addr.Country = DefaultCountry
	}
	return &Organization{
		Name:               in.Name,
		DisplayName:        in.DisplayName,
		Description:        in.Description,
		Email:              in.Email,
		Phone:              in.Phone,
		Website:            in.Website,
		RegistrationNumber: in.RegistrationNumber,
		TaxID:              in.TaxID,
		Address:            addr,
		Subdomain:          in.Subdomain,
		CustomDomain:       in.CustomDomain,
		BusinessType:       in.BusinessType,
		Industry:           in.Industry,
		Subscription: Subscription{
			Plan:      DefaultPlan,
			Status:    "active",
			StartDate: now,
			AutoRenew: true,
		},
		Settings:   DefaultSettings(),
		Status:     StatusPending,
		AdminUsers: []AdminUser{},
	}
}

// UpdateInput carries the mutable fields of an organization. Nil fields
// are left unchanged. The subdomain cannot be changed since it names the
// tenant database.
type UpdateInput struct {
	Name         *string   `json:"name"`
	DisplayName  *string   `json:"displayName"`
	Description  *string   `json:"description"`
	Email        []string  `json:"email"`
	Phone        []string  `json:"phone"`
	Website      *string   `json:"website"`
	TaxID        *string   `json:"taxId"`
	CustomDomain *string   `json:"customDomain"`
	BusinessType *string   `json:"businessType"`
	Industry     *string   `json:"industry"`
	Address      *Address  `json:"address"`
	Settings     *Settings `json:"settings"`
	Status       *Status   `json:"status"`
}

func (in *UpdateInput) Normalize() {
	trim := func(p *string, fn func(string) string) {
		if p != nil {
			*p = fn(*p)
		}
	}
	trim(in.Name, sanitizer.NormalizeWhitespace)
	trim(in.DisplayName, sanitizer.NormalizeWhitespace)
	trim(in.Description, strings.TrimSpace)
	trim(in.Website, strings.TrimSpace)
	trim(in.TaxID, strings.TrimSpace)
	trim(in.CustomDomain, sanitizer.TrimToLower)
	trim(in.BusinessType, sanitizer.TrimToLower)
	trim(in.Industry, sanitizer.TrimToLower)
	if in.Email != nil {
		in.Email = sanitizer.CleanStrings(in.Email, sanitizer.NormalizeEmail)
	}
	if in.Phone != nil {
		in.Phone = sanitizer.CleanStrings(in.Phone, sanitizer.NormalizePhone)
	}
	if in.Address != nil {
		normalizeAddress(in.Address)
	}
}

func (in *UpdateInput) Validate() error {
	var rules []validator.Rule
	if in.Name != nil {
		rules = append(rules, validator.LenBetween("name", *in.Name, 2, 100))
	}
	if in.DisplayName != nil {
		rules = append(rules, validator.LenBetween("displayName", *in.DisplayName, 2, 100))
	}
	if in.Description != nil {
		rules = append(rules, validator.MaxLen("description", *in.Description, 500))
	}
	if in.Email != nil {
		rules = append(rules,
			validator.NotEmpty("email", in.Email),
			validator.Each("email", in.Email, "must contain valid email addresses", validator.IsEmail))
	}
	rules = append(rules, validator.Each("phone", in.Phone, "must contain valid phone numbers", validator.IsPhone))
	if in.Website != nil && *in.Website != "" {
		rules = append(rules, validator.ValidURL("website", *in.Website))
	}
	if in.CustomDomain != nil && *in.CustomDomain != "" {
		rules = append(rules, validator.Matches("customDomain", *in.CustomDomain, domainPattern, "a valid domain name"))
	}
	if in.BusinessType != nil {
		rules = append(rules, validator.OneOf("businessType", *in.BusinessType, BusinessTypes))
	}
	if in.Industry != nil {
		rules = append(rules, validator.OneOf("industry", *in.Industry, Industries))
	}
	if in.Address != nil {
		rules = append(rules, addressRules(*in.Address)...)
	}
	if in.Settings != nil {
		rules = append(rules,
			validator.Between("settings.rentalSettings.maxRentalDays", in.Settings.Rentals.MaxRentalDays, 1, 365),
			validator.Min("settings.rentalSettings.lateFeePerDay", in.Settings.Rentals.LateFeePerDay, 0),
			validator.Min("settings.rentalSettings.gracePeriodDays", in.Settings.Rentals.GracePeriodDays, 0),
			validator.Min("settings.userSettings.maxUsers", in.Settings.Users.MaxUsers, 1),
		)
	}
	if in.Status != nil {
		rules = append(rules, validator.OneOf("status", *in.Status,
			[]Status{StatusPending, StatusActive, StatusInactive, StatusSuspended}))
	}
	return validator.Apply(rules...)
}

// Apply copies the set fields onto o.
func (in *UpdateInput) Apply(o *Organization) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&o.Name, in.Name)
	set(&o.DisplayName, in.DisplayName)
	set(&o.Description, in.Description)
	set(&o.Website, in.Website)
	set(&o.TaxID, in.TaxID)
	set(&o.CustomDomain, in.CustomDomain)
	set(&o.BusinessType, in.BusinessType)
	set(&o.Industry, in.Industry)
	if in.Email != nil {
		o.Email = in.Email
	}
	if in.Phone != nil {
		o.Phone = in.Phone
	}
	if in.Address != nil {
		o.Address = *in.Address
		if o.Address.Country == "" {
			o.Address.Country = DefaultCountry
		}
	}
	if in.Settings != nil {
		o.Settings = *in.Settings
	}
	if in.Status != nil {
		o.Status = *in.Status
	}
}

// ListQuery filters and pages organization listings.
type ListQuery struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
	Sort   string `query:"sort"`
	Order  string `query:"order"`
	Status string `query:"status"`
	Search string `query:"search"`
}

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

var SortFields = []string{"name", "createdAt", "updatedAt", "status"}

// Normalize applies paging defaults.
func (q *ListQuery) Normalize() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Sort == "" {
		q.Sort = "createdAt"
	}
	q.Order = sanitizer.TrimToLower(q.Order)
	if q.Order == "" {
		q.Order = "desc"
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Status = sanitizer.TrimToLower(q.Status)
}

func (q *ListQuery) Validate() error {
	return validator.Apply(validator.Join(
		[]validator.Rule{
			validator.Min("page", q.Page, 1),
			validator.Between("limit", q.Limit, 1, MaxLimit),
			validator.OneOf("sort", q.Sort, SortFields),
			validator.OneOf("order", q.Order, []string{"asc", "desc"}),
		},
		validator.When(q.Status != "", validator.OneOf("status", Status(q.Status), Statuses)),
	)...)
}

// Skip is the number of records before the requested page.
func (q *ListQuery) Skip() int64 {
	return int64((q.Page - 1) * q.Limit)
}

// Pagination describes a page of results.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

func NewPagination(q ListQuery, total int64) Pagination {
	pages := 0
	if q.Limit > 0 {
		pages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}
	return Pagination{CurrentPage: q.Page, TotalPages: pages, TotalItems: total, ItemsPerPage: q.Limit}
}

func normalizeAddress(a *Address) {
	a.Street = sanitizer.NormalizeWhitespace(a.Street)
	a.City = sanitizer.NormalizeWhitespace(a.City)
	a.State = sanitizer.NormalizeWhitespace(a.State)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = sanitizer.NormalizeWhitespace(a.Country)
	if a.Coordinates != nil && a.Coordinates.Type == "" {
		a.Coordinates.Type = "Point"
	}
}

func addressRules(a Address) []validator.Rule {
	rules := []validator.Rule{
		validator.MaxLen("address.street", a.Street, 200),
		validator.MaxLen("address.city", a.City, 100),
		validator.MaxLen("address.state", a.State, 100),
		validator.MaxLen("address.postalCode", a.PostalCode, 20),
	}
	if a.Coordinates != nil {
		rules = append(rules,
			validator.Between("address.coordinates.longitude", a.Coordinates.Coordinates[0], -180, 180),
			validator.Between("address.coordinates.latitude", a.Coordinates.Coordinates[1], -90, 90),
		)
	}
	return rules
}

func validSubdomain(field, value string) validator.Rule {
	return validator.Rule{
		Check: func() bool {
			_, err := tenantdb.ParseKey(value)
			return err == nil
		},
		Error: validator.ValidationError{
			Field:   field,
			Message: "must be 3-30 lowercase letters, numbers or inner hyphens",
		},
	}
}
