// ABOUTME: CRM service wiring the repository to every business operation
// ABOUTME: Handles options, actor authorization and the shared unit-of-work helpers
package crm

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/harperreed/medcrm/db"
	"github.com/harperreed/medcrm/models"
)

// DefaultAdminPassword is the canonical administrator password restored on
// every bootstrap unless configured otherwise.
const DefaultAdminPassword = "18087350"

// MinPasswordLength applies to every password a user chooses.
const MinPasswordLength = 6

// Service runs CRM operations against a Repository. It is safe for
// concurrent use.
type Service struct {
	repo          *db.Repository
	logger        *zap.Logger
	now           func() time.Time
	ids           *IDGenerator
	views         *ViewCache
	hashCost      int
	adminPassword string
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for IDs and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithHashCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.hashCost = cost
	}
}

func WithAdminPassword(password string) Option {
	return func(s *Service) {
		if password != "" {
			s.adminPassword = password
		}
	}
}

// WithViewCacheSize sets how many derived views are memoized.
func WithViewCacheSize(size int) Option {
	return func(s *Service) {
		s.views = NewViewCache(size)
	}
}

func NewService(repo *db.Repository, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		logger:        zap.NewNop(),
		now:           time.Now,
		hashCost:      bcrypt.DefaultCost,
		adminPassword: DefaultAdminPassword,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.views == nil {
		s.views = NewViewCache(DefaultViewCacheSize)
	}
	s.ids = NewIDGenerator(s.now)
	return s
}

func (s *Service) today() string {
	return s.now().UTC().Format(models.DateLayout)
}

func (s *Service) timestamp() *time.Time {
	t := s.now().UTC()
	return &t
}

// authorize resolves actor against the stored users. The stored record wins
// over whatever the caller holds, so deleted users and pending password
// changes are caught.
func authorize(ds *models.Dataset, actor *models.User) (*models.User, error) {
	if actor == nil || actor.ID == "" {
		return nil, ErrUnauthenticated
	}
	u, _ := ds.FindUser(actor.ID)
	if u == nil {
		return nil, ErrUnauthenticated
	}
	if u.MustChangePassword {
		return nil, ErrPasswordChangeRequired
	}
	me := *u
	return &me, nil
}

func requireAdmin(me *models.User) error {
	if !me.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func requireSalesperson(me *models.User) error {
	if me.Role != models.RoleSalesperson {
		return ErrForbidden
	}
	return nil
}

// canManage reports whether me may change a record owned by ownerID.
func canManage(me *models.User, ownerID string) bool {
	return me.IsAdmin() || ownerID == me.ID
}

// assignOwner fills in a missing owner and refuses to let salespeople hand
// records to somebody else.
func assignOwner(ds *models.Dataset, me *models.User, ownerID string) (string, error) {
	if ownerID == "" {
		return me.ID, nil
	}
	if !me.IsAdmin() && ownerID != me.ID {
		return "", ErrForbidden
	}
	if u, _ := ds.FindUser(ownerID); u == nil {
		return "", invalid("salespersonId", "unknown salesperson %q", ownerID)
	}
	return ownerID, nil
}

// mutate runs fn as one unit of work on behalf of actor.
func (s *Service) mutate(ctx context.Context, actor *models.User, fn func(ds *models.Dataset, me *models.User) error) error {
	return s.repo.Update(ctx, func(ds *models.Dataset) error {
		me, err := authorize(ds, actor)
		if err != nil {
			return err
		}
		return fn(ds, me)
	})
}

// read loads the dataset on behalf of actor without writing.
func (s *Service) read(ctx context.Context, actor *models.User) (*models.Dataset, *models.User, uint64, error) {
	ds, fingerprint, err := s.repo.Load(ctx)
	if err != nil {
		return nil, nil, 0, err
	}
	me, err := authorize(ds, actor)
	if err != nil {
		return nil, nil, 0, err
	}
	return ds, me, fingerprint, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(u *models.User, password string) bool {
	if u.PasswordHash == "" {
		return u.LegacyPassword != "" && u.LegacyPassword == password
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return invalid("password", "must be at least %d characters", MinPasswordLength)
	}
	return nil
}

func prepend[T any](items []T, item T) []T {
	return append([]T{item}, items...)
}
