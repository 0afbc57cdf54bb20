// ABOUTME: Authentication, password management and canonical admin bootstrap
// ABOUTME: Passwords are stored as bcrypt hashes; legacy plaintext fields are migrated
package crm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harperreed/medcrm/models"
)

// CanonicalAdmin returns the built-in administrator account without
// credentials.
func CanonicalAdmin() models.User {
	return models.User{
		ID:    models.AdminID,
		Name:  "Admin Manager",
		Email: "admin@blackmedical.com",
		Title: "System Administrator",
		Role:  models.RoleAdmin,
	}
}

// Bootstrap makes sure the canonical admin exists and still opens with the
// configured password, and hashes any plaintext passwords left by older
// data.
func (s *Service) Bootstrap(ctx context.Context) error {
	return s.repo.Update(ctx, s.syncAccounts)
}

func (s *Service) syncAccounts(ds *models.Dataset) error {
	for i := range ds.Users {
		u := &ds.Users[i]
		if u.LegacyPassword == "" {
			continue
		}
		if u.PasswordHash == "" {
			hash, err := s.hashPassword(u.LegacyPassword)
			if err != nil {
				return fmt.Errorf("failed to hash password for %s: %w", u.ID, err)
			}
			u.PasswordHash = hash
		}
		u.LegacyPassword = ""
		s.logger.Info("migrated plaintext password", zap.String("user_id", u.ID))
	}

	admin, _ := ds.FindUser(models.AdminID)
	if admin == nil {
		hash, err := s.hashPassword(s.adminPassword)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		canonical := CanonicalAdmin()
		canonical.PasswordHash = hash
		ds.Users = prepend(ds.Users, canonical)
		s.logger.Info("created canonical admin account")
		return nil
	}

	if !checkPassword(admin, s.adminPassword) {
		hash, err := s.hashPassword(s.adminPassword)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		admin.PasswordHash = hash
		s.logger.Info("reset canonical admin password")
	}
	return nil
}

// Login checks the credentials and returns the account without its hash.
func (s *Service) Login(ctx context.Context, userID, password string) (*models.User, error) {
	ds, _, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	u, _ := ds.FindUser(userID)
	if u == nil || !checkPassword(u, password) {
		s.logger.Info("failed login", zap.String("user_id", userID))
		return nil, ErrInvalidCredentials
	}
	pub := u.Public()
	return &pub, nil
}

// ChangePassword sets a new password for actor and clears any pending
// forced change. It is the one operation open to users who must change
// their password.
func (s *Service) ChangePassword(ctx context.Context, actor *models.User, newPassword string) (*models.User, error) {
	if actor == nil || actor.ID == "" {
		return nil, ErrUnauthenticated
	}
	if err := validatePassword(newPassword); err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	var updated models.User
	err = s.repo.Update(ctx, func(ds *models.Dataset) error {
		u, _ := ds.FindUser(actor.ID)
		if u == nil {
			return ErrUnauthenticated
		}
		u.PasswordHash = hash
		u.LegacyPassword = ""
		u.MustChangePassword = false
		updated = u.Public()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ChangeOwnPassword changes actor's password after checking the current one.
func (s *Service) ChangeOwnPassword(ctx context.Context, actor *models.User, oldPassword, newPassword string) (*models.User, error) {
	if actor == nil || actor.ID == "" {
		return nil, ErrUnauthenticated
	}
	if err := validatePassword(newPassword); err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	var updated models.User
	err = s.repo.Update(ctx, func(ds *models.Dataset) error {
		u, _ := ds.FindUser(actor.ID)
		if u == nil {
			return ErrUnauthenticated
		}
		if !checkPassword(u, oldPassword) {
			return ErrInvalidCredentials
		}
		u.PasswordHash = hash
		u.LegacyPassword = ""
		updated = u.Public()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ResolveSession refreshes a stored session user from the store. It
// returns nil when the account no longer exists.
func (s *Service) ResolveSession(ctx context.Context, session *models.User) (*models.User, error) {
	if session == nil {
		return nil, nil
	}
	ds, _, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	u, _ := ds.FindUser(session.ID)
	if u == nil {
		s.logger.Warn("stale session, logging out", zap.String("user_id", session.ID))
		return nil, nil
	}
	pub := u.Public()
	return &pub, nil
}

// ResetData wipes every collection and re-creates the canonical admin.
func (s *Service) ResetData(ctx context.Context, actor *models.User) error {
	return s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		if err := requireAdmin(me); err != nil {
			return err
		}
		*ds = models.Dataset{}
		s.logger.Warn("all CRM data reset", zap.String("user_id", me.ID))
		return s.syncAccounts(ds)
	})
}
