package organization

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/webix/udirdlaga/pkg/tenant"
)

// Status is the lifecycle state of an organization. Deleted organizations
// are kept in the control plane.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusDeleted   Status = "deleted"
)

// Statuses lists every organization status.
var Statuses = []Status{StatusPending, StatusActive, StatusInactive, StatusSuspended, StatusDeleted}

var (
	BusinessTypes = []string{"publisher", "distributor", "retailer", "library", "other"}
	Industries    = []string{"webtoon", "manga", "comics", "books", "media", "education", "other"}
	Plans         = []string{"free", "basic", "premium", "enterprise"}
	AdminRoles    = []string{"owner", "admin", "moderator"}
)

const (
	DefaultCountry      = "Mongolia"
	DefaultBusinessType = "publisher"
	DefaultIndustry     = "webtoon"
	DefaultPlan         = "free"

	// BaseDomain hosts the subdomain of organizations without a custom
	// domain.
	BaseDomain = "webix.com"

	// VerificationTTL is how long a verification token stays valid.
	VerificationTTL = 24 * time.Hour
)

// GeoPoint is a GeoJSON point, longitude first.
type GeoPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

type Address struct {
	Street      string    `bson:"street,omitempty" json:"street,omitempty"`
	City        string    `bson:"city,omitempty" json:"city,omitempty"`
	State       string    `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode  string    `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
	Country     string    `bson:"country" json:"country"`
	Coordinates *GeoPoint `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

type Subscription struct {
	Plan      string     `bson:"plan" json:"plan"`
	Status    string     `bson:"status" json:"status"`
	StartDate time.Time  `bson:"startDate" json:"startDate"`
	EndDate   *time.Time `bson:"endDate,omitempty" json:"endDate,omitempty"`
	AutoRenew bool       `bson:"autoRenew" json:"autoRenew"`
}

type RentalSettings struct {
	MaxRentalDays   int     `bson:"maxRentalDays" json:"maxRentalDays"`
	LateFeePerDay   float64 `bson:"lateFeePerDay" json:"lateFeePerDay"`
	GracePeriodDays int     `bson:"gracePeriodDays" json:"gracePeriodDays"`
	AutoReturn      bool    `bson:"autoReturn" json:"autoReturn"`
}

type UserSettings struct {
	AllowSelfRegistration    bool `bson:"allowSelfRegistration" json:"allowSelfRegistration"`
	RequireEmailVerification bool `bson:"requireEmailVerification" json:"requireEmailVerification"`
	MaxUsers                 int  `bson:"maxUsers" json:"maxUsers"`
}

type NotificationSettings struct {
	Email bool `bson:"emailNotifications" json:"emailNotifications"`
	SMS   bool `bson:"smsNotifications" json:"smsNotifications"`
	Push  bool `bson:"pushNotifications" json:"pushNotifications"`
}

type Settings struct {
	Timezone      string               `bson:"timezone" json:"timezone"`
	Language      string               `bson:"language" json:"language"`
	Currency      string               `bson:"currency" json:"currency"`
	MaxStorageMB  int                  `bson:"maxStorage" json:"maxStorage"`
	Rentals       RentalSettings       `bson:"rentalSettings" json:"rentalSettings"`
	Users         UserSettings         `bson:"userSettings" json:"userSettings"`
	Notifications NotificationSettings `bson:"notifications" json:"notifications"`
}

// DefaultSettings returns the settings of a newly registered organization.
func DefaultSettings() Settings {
	return Settings{
		Timezone:     "Asia/Ulaanbaatar",
		Language:     "mn",
		Currency:     "MNT",
		MaxStorageMB: 1024,
		Rentals:      RentalSettings{MaxRentalDays: 30, GracePeriodDays: 3},
		Users:        UserSettings{AllowSelfRegistration: true, RequireEmailVerification: true, MaxUsers: 50},
		Notifications: NotificationSettings{
			Email: true,
			Push:  true,
		},
	}
}

// AdminUser links a tenant user holding an administrative role.
type AdminUser struct {
	UserID      bson.ObjectID `bson:"userId" json:"userId"`
	Role        string        `bson:"role" json:"role"`
	Permissions []string      `bson:"permissions" json:"permissions"`
	AddedAt     time.Time     `bson:"addedAt" json:"addedAt"`
}

type Stats struct {
	TotalUsers   int        `bson:"totalUsers" json:"totalUsers"`
	TotalRentals int        `bson:"totalRentals" json:"totalRentals"`
	LastActivity *time.Time `bson:"lastActivity,omitempty" json:"lastActivity,omitempty"`
}

// Organization is a tenant as recorded in the control-plane database. Its
// subdomain is the tenant key.
type Organization struct {
	ID                 bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string        `bson:"name" json:"name"`
	DisplayName        string        `bson:"displayName" json:"displayName"`
	Description        string        `bson:"description,omitempty" json:"description,omitempty"`
	Email              []string      `bson:"email" json:"email"`
	Phone              []string      `bson:"phone,omitempty" json:"phone,omitempty"`
	Website            string        `bson:"website,omitempty" json:"website,omitempty"`
	RegistrationNumber string        `bson:"registrationNumber" json:"registrationNumber"`
	TaxID              string        `bson:"taxId,omitempty" json:"taxId,omitempty"`
	Address            Address       `bson:"address" json:"address"`
	Subdomain          string        `bson:"subdomain" json:"subdomain"`
	CustomDomain       string        `bson:"customDomain,omitempty" json:"customDomain,omitempty"`
	BusinessType       string        `bson:"businessType" json:"businessType"`
	Industry           string        `bson:"industry" json:"industry"`
	Subscription       Subscription  `bson:"subscription" json:"subscription"`
	Settings           Settings      `bson:"settings" json:"settings"`
	Status             Status        `bson:"status" json:"status"`

	IsVerified          bool       `bson:"isVerified" json:"isVerified"`
	VerificationToken   string     `bson:"verificationToken,omitempty" json:"-"`
	VerificationExpires *time.Time `bson:"verificationExpires,omitempty" json:"-"`
	VerifiedAt          *time.Time `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`

	AdminUsers []AdminUser `bson:"adminUsers" json:"adminUsers"`
	Stats      Stats       `bson:"stats" json:"stats"`
	CreatedBy  string      `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt  time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// DomainURL is the public address of the organization.
func (o *Organization) DomainURL() string {
	if o.CustomDomain != "" {
		return "https://" + o.CustomDomain
	}
	return "https://" + o.Subdomain + "." + BaseDomain
}

// Serving reports whether the tenant accepts requests. Pending
// organizations are served so their owner can finish setup.
func (o *Organization) Serving() bool {
	return o.Status == StatusActive || o.Status == StatusPending
}

// Info returns the view used by the tenant middleware.
func (o *Organization) Info() *tenant.Info {
	name := o.DisplayName
	if name == "" {
		name = o.Name
	}
	return &tenant.Info{
		ID:     o.ID.Hex(),
		Key:    o.Subdomain,
		Name:   name,
		Status: string(o.Status),
		Active: o.Serving(),
	}
}

// AddAdmin appends an admin entry for userID.
func (o *Organization) AddAdmin(userID bson.ObjectID, role string, permissions []string, at time.Time) {
	o.AdminUsers = append(o.AdminUsers, AdminUser{
		UserID:      userID,
		Role:        role,
		Permissions: permissions,
		AddedAt:     at,
	})
}

// Verify marks the organization verified and active and clears the
// pending token.
func (o *Organization) Verify(at time.Time) {
	o.IsVerified = true
	o.Status = StatusActive
	o.VerifiedAt = &at
	o.VerificationToken = ""
	o.VerificationExpires = nil
}

// Summary is the short form returned after registration.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Subdomain   string `json:"subdomain"`
	DomainURL   string `json:"domainUrl"`
	Status      Status `json:"status"`
	IsVerified  bool   `json:"isVerified"`
}

func (o *Organization) Summary() Summary {
	return Summary{
		ID:          o.ID.Hex(),
		Name:        o.Name,
		DisplayName: o.DisplayName,
		Subdomain:   o.Subdomain,
		DomainURL:   o.DomainURL(),
		Status:      o.Status,
		IsVerified:  o.IsVerified,
	}
}
