package rental

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/webix/udirdlaga/pkg/validator"
)

// DefaultPeriodDays is the rental period used when none is given.
const DefaultPeriodDays = 7

const day = 24 * time.Hour

type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusReturned  Status = "returned"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	MethodCreditCard PaymentMethod = "credit_card"
	MethodPaypal     PaymentMethod = "paypal"
	MethodWallet     PaymentMethod = "wallet"
	MethodFree       PaymentMethod = "free"
)

// Chapter is one rented chapter of a webtoon.
type Chapter struct {
	Number   int       `bson:"chapterNumber" json:"chapterNumber"`
	RentedAt time.Time `bson:"rentedAt" json:"rentedAt"`
}

// Rental is a time-boxed loan of a catalog item to a tenant user.
type Rental struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	User          bson.ObjectID `bson:"user" json:"user"`
	Webtoon       bson.ObjectID `bson:"webtoon" json:"webtoon"`
	Chapters      []Chapter     `bson:"chapters,omitempty" json:"chapters,omitempty"`
	Status        Status        `bson:"status" json:"status"`
	PeriodDays    int           `bson:"rentalPeriod" json:"rentalPeriod"`
	StartDate     time.Time     `bson:"startDate" json:"startDate"`
	EndDate       time.Time     `bson:"endDate" json:"endDate"`
	ReturnedAt    *time.Time    `bson:"actualReturnDate,omitempty" json:"actualReturnDate,omitempty"`
	TotalCost     float64       `bson:"totalCost" json:"totalCost"`
	PaymentStatus PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	PaymentMethod PaymentMethod `bson:"paymentMethod" json:"paymentMethod"`
	PaymentID     string        `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	LateFee       float64       `bson:"lateFee" json:"lateFee"`
	IsLate        bool          `bson:"isLate" json:"isLate"`
	Notes         string        `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// New starts an active, unpaid rental. A non-positive period falls back
// to DefaultPeriodDays.
func New(userID, webtoonID bson.ObjectID, start time.Time, periodDays int, cost float64) *Rental {
	if periodDays <= 0 {
		periodDays = DefaultPeriodDays
	}
	r := &Rental{
		User:          userID,
		Webtoon:       webtoonID,
		Status:        StatusActive,
		PeriodDays:    periodDays,
		StartDate:     start.UTC(),
		TotalCost:     cost,
		PaymentStatus: PaymentPending,
		PaymentMethod: MethodFree,
	}
	r.EndDate = EndDate(r.StartDate, periodDays)
	return r
}

// EndDate is start plus periodDays whole days.
func EndDate(start time.Time, periodDays int) time.Time {
	return start.Add(time.Duration(periodDays) * day)
}

// Validate checks r against the given maximum period.
func (r *Rental) Validate(maxPeriodDays int) error {
	return validator.Apply(
		validator.Between("rentalPeriod", r.PeriodDays, 1, maxPeriodDays),
		validator.Min("totalCost", r.TotalCost, 0),
		validator.Min("lateFee", r.LateFee, 0),
		validator.MaxLen("notes", r.Notes, 500),
		validator.OneOf("status", r.Status, []Status{StatusActive, StatusExpired, StatusReturned, StatusCancelled}),
		validator.OneOf("paymentStatus", r.PaymentStatus, []PaymentStatus{PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded}),
		validator.OneOf("paymentMethod", r.PaymentMethod, []PaymentMethod{MethodCreditCard, MethodPaypal, MethodWallet, MethodFree}),
	)
}

// DaysRemaining rounds the time left up to whole days. It is zero for
// rentals that are not active and negative once overdue.
func (r *Rental) DaysRemaining(now time.Time) int {
	if r.Status != StatusActive {
		return 0
	}
	return int(math.Ceil(float64(r.EndDate.Sub(now)) / float64(day)))
}

// IsOverdue reports whether an active rental is past its end date.
func (r *Rental) IsOverdue(now time.Time) bool {
	return r.Status == StatusActive && now.After(r.EndDate)
}

// ApplyLateFee charges perDay for every started day past the end date
// beyond graceDays, marks the rental late once it is overdue and returns
// the fee.
func (r *Rental) ApplyLateFee(now time.Time, perDay float64, graceDays int) float64 {
	if !r.IsOverdue(now) {
		return r.LateFee
	}
	r.IsLate = true
	late := int(math.Ceil(float64(now.Sub(r.EndDate))/float64(day))) - graceDays
	if late > 0 && perDay > 0 {
		r.LateFee = float64(late) * perDay
	}
	return r.LateFee
}

// MarkReturned closes an active rental at the given time.
func (r *Rental) MarkReturned(at time.Time) error {
	if r.Status != StatusActive {
		return ErrNotActive
	}
	at = at.UTC()
	r.Status = StatusReturned
	r.ReturnedAt = &at
	return nil
}
