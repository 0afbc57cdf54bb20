// ABOUTME: Salesperson management for administrators
// ABOUTME: Keeps each salesperson profile and its login account in sync
package crm

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/harperreed/medcrm/models"
)

// AddSalesperson creates the profile and a login account that must change
// its password on first use.
func (s *Service) AddSalesperson(ctx context.Context, actor *models.User, profile models.Salesperson, password string) (models.Salesperson, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		if err := requireAdmin(me); err != nil {
			return err
		}
		profile.Name = strings.TrimSpace(profile.Name)
		if profile.Name == "" {
			return invalid("name", "salesperson name is required")
		}
		if err := validatePassword(password); err != nil {
			return err
		}
		hash, err := s.hashPassword(password)
		if err != nil {
			return err
		}

		profile.ID = s.ids.New(PrefixSalesperson)
		ds.Salespeople = prepend(ds.Salespeople, profile)

		user := models.User{
			ID:                 profile.ID,
			Role:               models.RoleSalesperson,
			PasswordHash:       hash,
			MustChangePassword: true,
		}
		user.ApplyProfile(profile)
		ds.Users = append(ds.Users, user)
		return nil
	})
	return profile, err
}

// UpdateSalesperson rewrites the profile and copies it onto the login
// account. A non-empty password resets it and forces a change.
func (s *Service) UpdateSalesperson(ctx context.Context, actor *models.User, profile models.Salesperson, password string) (models.Salesperson, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		if err := requireAdmin(me); err != nil {
			return err
		}
		existing, _ := ds.FindSalesperson(profile.ID)
		if existing == nil {
			return notFound("salesperson", profile.ID)
		}
		profile.Name = strings.TrimSpace(profile.Name)
		if profile.Name == "" {
			return invalid("name", "salesperson name is required")
		}
		*existing = profile

		user, _ := ds.FindUser(profile.ID)
		if user == nil {
			if password == "" {
				return invalid("password", "salesperson %s has no login account; a password is required to recreate it", profile.ID)
			}
			s.logger.Warn("salesperson had no login account, recreating", zap.String("salesperson_id", profile.ID))
			ds.Users = append(ds.Users, models.User{ID: profile.ID, Role: models.RoleSalesperson, MustChangePassword: true})
			user, _ = ds.FindUser(profile.ID)
		}
		user.ApplyProfile(profile)

		if password != "" {
			if err := validatePassword(password); err != nil {
				return err
			}
			hash, err := s.hashPassword(password)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
			user.LegacyPassword = ""
			user.MustChangePassword = true
		}
		return nil
	})
	return profile, err
}

// DeleteSalesperson removes the profile and account and hands every lead,
// task, opportunity and interaction they owned to the administrator.
func (s *Service) DeleteSalesperson(ctx context.Context, actor *models.User, salespersonID string) error {
	return s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		if err := requireAdmin(me); err != nil {
			return err
		}
		if sp, _ := ds.FindSalesperson(salespersonID); sp == nil {
			return notFound("salesperson", salespersonID)
		}
		deleteSalesperson(ds, salespersonID)
		return nil
	})
}

func deleteSalesperson(ds *models.Dataset, salespersonID string) {
	ds.Salespeople = filter(ds.Salespeople, func(sp models.Salesperson) bool { return sp.ID != salespersonID })
	ds.Users = filter(ds.Users, func(u models.User) bool { return u.ID != salespersonID })

	for i := range ds.Leads {
		if ds.Leads[i].SalespersonID == salespersonID {
			ds.Leads[i].SalespersonID = models.AdminID
		}
	}
	for i := range ds.Tasks {
		if ds.Tasks[i].SalespersonID == salespersonID {
			ds.Tasks[i].SalespersonID = models.AdminID
		}
	}
	for i := range ds.Opportunities {
		if ds.Opportunities[i].SalespersonID == salespersonID {
			ds.Opportunities[i].SalespersonID = models.AdminID
		}
	}
	for i := range ds.Interactions {
		if ds.Interactions[i].SalespersonID == salespersonID {
			ds.Interactions[i].SalespersonID = models.AdminID
		}
	}
}
