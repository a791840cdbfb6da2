// Package services implements the booking core: the session store, the
// authorization gate, the availability ledger and the appointment lifecycle
// engine, plus the account, doctor and package services around them.
//
// Every mutation of appointment status or slot consumption goes through this
// package.
package services

import (
	"time"

	"go.uber.org/zap"

	"clinic-booking-server/internal/apperrors"
)

// DefaultSessionTTL is the lifetime of a newly created session.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Options configures the services. Zero values fall back to defaults.
type Options struct {
	SessionTTL          time.Duration
	ReleaseSlotOnCancel bool
	Now                 func() time.Time
	Logger              *zap.Logger
}

// Services bundles every service built over one repository.
type Services struct {
	Sessions     *SessionStore
	Gate         *Gate
	Ledger       *Ledger
	Appointments *Engine
	Accounts     *AccountService
	Doctors      *DoctorService
	Packages     *PackageService
}

// New wires all services over repo.
func New(repo Repository, opts Options) *Services {
	b := newBase(opts)

	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	sessions := &SessionStore{base: b, repo: repo, ttl: ttl}
	ledger := &Ledger{base: b, repo: repo}

	return &Services{
		Sessions:     sessions,
		Gate:         &Gate{sessions: sessions},
		Ledger:       ledger,
		Appointments: &Engine{base: b, repo: repo, releaseSlot: opts.ReleaseSlotOnCancel},
		Accounts:     &AccountService{base: b, repo: repo, sessions: sessions},
		Doctors:      &DoctorService{base: b, repo: repo, ledger: ledger},
		Packages:     &PackageService{base: b, repo: repo},
	}
}

// base carries the clock and logger shared by every service.
type base struct {
	now func() time.Time
	log *zap.Logger
}

func newBase(opts Options) base {
	b := base{now: opts.Now, log: opts.Logger}
	if b.now == nil {
		b.now = func() time.Time { return time.Now().UTC() }
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	return b
}

// today is the current calendar date at midnight UTC.
func (b base) today() time.Time {
	y, m, d := b.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fail logs internal errors with their cause and passes err through.
func (b base) fail(op string, err error) error {
	if apperrors.KindOf(err) == apperrors.Internal {
		b.log.Error("operation failed", zap.String("op", op), zap.Error(err))
	}
	return err
}
