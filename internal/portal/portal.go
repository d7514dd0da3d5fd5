// Package portal implements the domain operations of the academic-records
// service: account and course management, enrollment, and authentication.
//
// Every lookup is a full sequential scan of the relevant record store; that
// O(n) cost model is the baseline contract, not an accident. Cross-store
// operations are not atomic — each store commits independently and multi-step
// operations compensate explicitly on partial failure (see saga.go).
package portal

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/ashokCh-dev/Academia-Portal/pkg/records"
	"github.com/ashokCh-dev/Academia-Portal/pkg/store"
)

// DefaultPassword is the verifier source for accounts created by an admin;
// the user is expected to change it on first login.
const DefaultPassword = "default"

// Listings are truncated once the rendered text reaches this size; a
// truncated listing still succeeds with partial data.
const listingLimit = 2048

// Stores bundles the five record stores the portal operates on.
type Stores struct {
	Students    store.Store[records.Student]
	Faculty     store.Store[records.Faculty]
	Courses     store.Store[records.Course]
	Enrollments store.Store[records.Enrollment]
	Credentials store.Store[records.Credential]
}

// Portal executes role-scoped domain operations against the record stores.
// Safe for concurrent use; all cross-worker coordination happens through the
// stores' advisory locks.
type Portal struct {
	stores          Stores
	bcryptCost      int
	defaultPassword string
}

// Option tweaks portal construction.
type Option func(*Portal)

// WithBcryptCost overrides the bcrypt cost, mainly so tests can use MinCost.
func WithBcryptCost(cost int) Option {
	return func(p *Portal) { p.bcryptCost = cost }
}

// WithDefaultPassword overrides the password assigned to admin-created
// accounts.
func WithDefaultPassword(pw string) Option {
	return func(p *Portal) { p.defaultPassword = pw }
}

func New(stores Stores, opts ...Option) *Portal {
	p := &Portal{
		stores:          stores,
		bcryptCost:      bcrypt.DefaultCost,
		defaultPassword: DefaultPassword,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stores exposes the underlying record stores for seeding and tests.
func (p *Portal) Stores() Stores { return p.stores }

// Result is a successful operation outcome. Info marks outcomes the protocol
// reports with the INFO prefix (e.g. empty listings) rather than SUCCESS;
// Degraded marks outcomes where the primary mutation committed but a
// secondary update failed, rendered with the WARNING prefix.
type Result struct {
	Info     bool
	Degraded bool
	Message  string
}

func success(msg string) Result { return Result{Message: msg} }
func info(msg string) Result    { return Result{Info: true, Message: msg} }
func warning(msg string) Result { return Result{Degraded: true, Message: msg} }
