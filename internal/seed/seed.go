// Package seed bootstraps the record stores on first start.
package seed

import (
	"context"
	"errors"

	"github.com/ashokCh-dev/Academia-Portal/internal/logger"
	"github.com/ashokCh-dev/Academia-Portal/internal/portal"
	"github.com/ashokCh-dev/Academia-Portal/pkg/records"
	"github.com/ashokCh-dev/Academia-Portal/pkg/store"
)

// DefaultAdminPassword is the bootstrap admin password. Operators are
// expected to change it with CHANGE_PASSWORD after first login.
const DefaultAdminPassword = "admin123"

// EnsureAdmin creates the initial admin credential if no admin exists yet.
// Idempotent: restarts against a populated store are no-ops.
func EnsureAdmin(ctx context.Context, p *portal.Portal, password string) error {
	if password == "" {
		password = DefaultAdminPassword
	}

	_, err := p.Stores().Credentials.FindFirst(ctx, func(c *records.Credential) bool {
		return c.GetRole() == records.RoleAdmin
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := p.HashPassword(password)
	if err != nil {
		return err
	}
	if err := p.Stores().Credentials.Append(ctx,
		records.NewCredential("admin", hash, records.RoleAdmin)); err != nil {
		return err
	}
	logger.Info("created initial admin account")
	return nil
}
