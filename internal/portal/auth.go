package portal

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/ashokCh-dev/Academia-Portal/pkg/records"
	"github.com/ashokCh-dev/Academia-Portal/pkg/store"
)

// Authenticate verifies username/password against the credential store and
// returns the stored role. Students must additionally have a student record
// and be active; the three failure modes get distinct messages so the client
// can tell a typo from a disabled account.
func (p *Portal) Authenticate(ctx context.Context, username, password string) (string, error) {
	cred, err := p.stores.Credentials.FindFirst(ctx, func(c *records.Credential) bool {
		return c.GetUsername() == username
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", authzf("Invalid username or password")
		}
		return "", storagef(err, "Cannot read credentials")
	}

	if bcrypt.CompareHashAndPassword(cred.GetVerifier(), []byte(password)) != nil {
		return "", authzf("Invalid username or password")
	}

	role := cred.GetRole()
	if role == records.RoleStudent {
		student, err := p.stores.Students.FindFirst(ctx, func(s *records.Student) bool {
			return s.GetUsername() == username
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Credential without a student record; an anomaly left by a
				// partially failed ADD_STUDENT.
				return "", authzf("Student record not found. Please contact administrator.")
			}
			return "", storagef(err, "Cannot read student data")
		}
		if !student.IsActive() {
			return "", authzf("Account is inactive. Please contact administrator.")
		}
	}

	return role, nil
}

// ChangePassword overwrites the caller's verifier in place.
func (p *Portal) ChangePassword(ctx context.Context, username, newPassword string) (Result, error) {
	verifier, err := p.hashPassword(newPassword)
	if err != nil {
		return Result{}, err
	}

	err = p.stores.Credentials.UpdateFirst(ctx,
		func(c *records.Credential) bool { return c.GetUsername() == username },
		func(c *records.Credential) { records.SetStr(c.Verifier[:], string(verifier)) })
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, notFoundf("Failed to update password")
		}
		return Result{}, storagef(err, "Failed to update password")
	}
	return success("Password changed successfully"), nil
}

func (p *Portal) hashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return nil, storagef(err, "Failed to hash password")
	}
	return hash, nil
}

// createCredential appends a login record for a newly created account with
// the default password.
func (p *Portal) createCredential(ctx context.Context, username, role string) error {
	verifier, err := p.hashPassword(p.defaultPassword)
	if err != nil {
		return err
	}
	return p.stores.Credentials.Append(ctx, records.NewCredential(username, verifier, role))
}

// HashPassword exposes verifier hashing for the seeding path.
func (p *Portal) HashPassword(password string) ([]byte, error) {
	return p.hashPassword(password)
}
