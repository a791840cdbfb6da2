package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
)

type accountBackend interface {
	UserRepository
	GetDoctorProfileByUser(ctx context.Context, userID string) (*models.DoctorProfile, error)
}

// AccountService handles registration, login and user administration.
type AccountService struct {
	base
	repo     accountBackend
	sessions *SessionStore
}

// RegisterInput is the self-service registration payload. ADMIN accounts
// are created out of band only.
type RegisterInput struct {
	Name     string      `json:"name" validate:"required,min=2,max=100"`
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,min=6,max=72"`
	Role     models.Role `json:"role" validate:"required,oneof=PATIENT DOCTOR"`
}

// LoginInput carries credentials.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput updates the caller's own name and email.
type ProfileInput struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// UserUpdateInput is the admin edit of any user, including the role.
type UserUpdateInput struct {
	Name  string      `json:"name" validate:"required,min=2,max=100"`
	Email string      `json:"email" validate:"required,email,max=255"`
	Role  models.Role `json:"role" validate:"required,oneof=PATIENT DOCTOR ADMIN"`
}

// Register creates the account and signs it in. Doctors get an unapproved
// profile with the default specialty.
func (a *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, *models.Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, nil, err
	}

	user := &models.User{Name: strings.TrimSpace(in.Name), Email: in.Email, Role: in.Role}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, nil, a.fail("account.register", apperrors.Wrap(apperrors.Internal, "failed to hash password", err))
	}

	var profile *models.DoctorProfile
	if in.Role == models.RoleDoctor {
		profile = &models.DoctorProfile{Specialty: models.DefaultSpecialty}
	}

	if err := a.repo.CreateUser(ctx, user, profile); err != nil {
		return nil, nil, a.fail("account.register", err)
	}

	session, err := a.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	a.log.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, session, nil
}

// Login verifies credentials and opens a new session. Unknown email and
// wrong password are indistinguishable to the caller.
func (a *AccountService) Login(ctx context.Context, in LoginInput) (*models.User, *models.Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, nil, err
	}

	user, err := a.repo.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, apperrors.New(apperrors.Unauthenticated, "invalid email or password")
	}
	if err != nil {
		return nil, nil, a.fail("account.login", err)
	}
	if !user.CheckPassword(in.Password) {
		return nil, nil, apperrors.New(apperrors.Unauthenticated, "invalid email or password")
	}

	session, err := a.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Logout destroys the session behind token.
func (a *AccountService) Logout(ctx context.Context, token string) error {
	return a.sessions.Destroy(ctx, token)
}

// UpdateProfile changes the actor's own name and email.
func (a *AccountService) UpdateProfile(ctx context.Context, actor *models.User, in ProfileInput) (*models.User, error) {
	if actor == nil {
		return nil, apperrors.New(apperrors.Unauthenticated, "authentication required")
	}
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := a.repo.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, a.fail("account.profile", err)
	}
	user.Name = strings.TrimSpace(in.Name)
	user.Email = in.Email

	if err := a.repo.UpdateUser(ctx, user); err != nil {
		return nil, a.fail("account.profile", err)
	}
	return user, nil
}

// ListUsers returns every user, newest first. Admin only.
func (a *AccountService) ListUsers(ctx context.Context, actor *models.User) ([]models.User, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, a.fail("account.list", err)
	}
	return users, nil
}

// GetUser returns one user. Admin only.
func (a *AccountService) GetUser(ctx context.Context, actor *models.User, id string) (*models.User, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	user, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return nil, a.fail("account.get", err)
	}
	return user, nil
}

// UpdateUser edits any user. This is the only HTTP path that changes a role.
func (a *AccountService) UpdateUser(ctx context.Context, actor *models.User, id string, in UserUpdateInput) (*models.User, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return nil, a.fail("account.update", err)
	}
	if err := a.checkRoleChange(ctx, user, in.Role); err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(in.Name)
	user.Email = in.Email
	user.Role = in.Role
	if err := a.repo.UpdateUser(ctx, user); err != nil {
		return nil, a.fail("account.update", err)
	}

	a.log.Info("user updated by admin", zap.String("user_id", user.ID), zap.String("admin_id", actor.ID))
	return user, nil
}

// DeleteUser removes a user that is not party to any appointment. Admin only.
func (a *AccountService) DeleteUser(ctx context.Context, actor *models.User, id string) error {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	if actor.ID == id {
		return apperrors.New(apperrors.Conflict, "admins cannot delete their own account")
	}
	if err := a.repo.DeleteUser(ctx, id); err != nil {
		return a.fail("account.delete", err)
	}
	a.log.Info("user deleted", zap.String("user_id", id), zap.String("admin_id", actor.ID))
	return nil
}

// CreateAdmin creates an ADMIN account. It is reachable only from the CLI.
func (a *AccountService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	in := RegisterInput{Name: name, Email: normalizeEmail(email), Password: password, Role: models.RolePatient}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user := &models.User{Name: strings.TrimSpace(name), Email: in.Email, Role: models.RoleAdmin}
	if err := user.SetPassword(password); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to hash password", err)
	}
	if err := a.repo.CreateUser(ctx, user, nil); err != nil {
		return nil, a.fail("account.create_admin", err)
	}
	return user, nil
}

// SetRole changes the role of the user with email. It is reachable only
// from the CLI.
func (a *AccountService) SetRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperrors.New(apperrors.InvalidInput, "unknown role "+string(role))
	}
	user, err := a.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, a.fail("account.set_role", err)
	}
	if err := a.checkRoleChange(ctx, user, role); err != nil {
		return nil, err
	}
	user.Role = role
	if err := a.repo.UpdateUser(ctx, user); err != nil {
		return nil, a.fail("account.set_role", err)
	}
	return user, nil
}

// checkRoleChange keeps doctor profiles owned by DOCTOR users only.
func (a *AccountService) checkRoleChange(ctx context.Context, user *models.User, role models.Role) error {
	if user.Role != models.RoleDoctor || role == models.RoleDoctor {
		return nil
	}
	_, err := a.repo.GetDoctorProfileByUser(ctx, user.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return a.fail("account.role", err)
	}
	return apperrors.New(apperrors.Conflict, "user still owns a doctor profile")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
