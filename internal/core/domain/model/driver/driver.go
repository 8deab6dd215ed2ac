package driver

import (
	"errors"
	"strings"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var (
	ErrFullNameIsRequired      = errs.NewValueIsRequiredError("fullName")
	ErrLicenseIsRequired       = errs.NewValueIsRequiredError("licenseNumber")
	ErrLicenseExpiryIsRequired = errs.NewValueIsRequiredError("licenseExpiry")
	ErrDriverIsNotConstructed  = errors.New("Driver must be created via NewDriver constructor")
)

// Driver is the aggregate root of a person allowed to drive fleet vehicles.
type Driver struct {
	id            kernel.UUID
	fullName      string
	licenseNumber string

	// licenseExpiry is a calendar date at UTC midnight; the licence is valid on that day
	licenseExpiry time.Time

	active bool
	guard  guard.ConstructorGuard
}

// NewDriver creates an active driver.
//
// Example:
//
//	expiry := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
//	d, err := driver.NewDriver(kernel.NewUUID(), "Ana Ruiz", "B-778812", expiry)
func NewDriver(id kernel.UUID, fullName, licenseNumber string, licenseExpiry time.Time) (*Driver, error) {
	return RestoreDriver(id, fullName, licenseNumber, licenseExpiry, true)
}

// RestoreDriver rebuilds a driver loaded from storage.
func RestoreDriver(id kernel.UUID, fullName, licenseNumber string, licenseExpiry time.Time, active bool) (*Driver, error) {
	d := &Driver{
		active: active,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setFullName(fullName),
		d.setLicense(licenseNumber, licenseExpiry),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// Validate ensures the driver was built by a constructor.
func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

func (d *Driver) ID() kernel.UUID {
	return d.id
}

func (d *Driver) FullName() string {
	return d.fullName
}

func (d *Driver) LicenseNumber() string {
	return d.licenseNumber
}

// LicenseExpiry returns the last calendar day the licence is valid, at UTC midnight.
func (d *Driver) LicenseExpiry() time.Time {
	return d.licenseExpiry
}

func (d *Driver) IsActive() bool {
	return d.active
}

// DaysExpired returns how many whole days before referenceDate the licence
// expired, or 0 when it is still valid on that date.
func (d *Driver) DaysExpired(referenceDate time.Time) int {
	ref := dateOf(referenceDate)
	if !d.licenseExpiry.Before(ref) {
		return 0
	}
	return int(ref.Sub(d.licenseExpiry).Hours() / 24)
}

// ValidateAssignable checks the driver can take a route on referenceDate.
//
// Returns:
//   - nil for an active driver with a licence valid on referenceDate
//   - *errs.NotEligibleError for inactive drivers
//   - *errs.NotEligibleError with DaysExpired set for expired licences
func (d *Driver) ValidateAssignable(referenceDate time.Time) error {
	if !d.active {
		return errs.NewNotEligibleError("driver", d.id, "driver is not active")
	}
	if days := d.DaysExpired(referenceDate); days > 0 {
		return errs.NewLicenseExpiredError("driver", d.id, days)
	}
	return nil
}

func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Driver) setFullName(fullName string) error {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return ErrFullNameIsRequired
	}
	d.fullName = fullName
	return nil
}

func (d *Driver) setLicense(number string, expiry time.Time) error {
	number = strings.TrimSpace(number)

	var err error
	if number == "" {
		err = errors.Join(err, ErrLicenseIsRequired)
	}
	if expiry.IsZero() {
		err = errors.Join(err, ErrLicenseExpiryIsRequired)
	}
	if err != nil {
		return err
	}

	d.licenseNumber = number
	d.licenseExpiry = dateOf(expiry)
	return nil
}

func dateOf(t time.Time) time.Time {
	y, m, day := t.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
