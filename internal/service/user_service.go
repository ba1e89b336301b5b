package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-admin/internal/auth"
	"github.com/spec-kit/commerce-admin/internal/config"
	"github.com/spec-kit/commerce-admin/internal/domain"
	"github.com/spec-kit/commerce-admin/internal/events"
	"github.com/spec-kit/commerce-admin/internal/repository"
	"github.com/spec-kit/commerce-admin/pkg/util"
)

// Message codes returned to API callers.
const (
	MsgUserExisted          = "user_is_existed"
	MsgEmailRequesting      = "email_has_been_requesting"
	MsgSuperuserExisted     = "superuser_is_existed"
	MsgRoleInvalid          = "role_is_invalid"
	MsgRequestNotExisted    = "user_request_is_not_existed"
	MsgResendFailed         = "resend_email_failed"
	MsgUserNotExisted       = "user_is_not_existed"
	MsgUserNotExistedPlain  = "user is not existed"
	MsgUserActivated        = "user_is_activated"
	MsgRequestSuccessfully  = "request_successfully"
	MsgUserApproved         = "user_is_approved"
	MsgResendVerification   = "resend_verification_email_success"
	MsgActiveSuccessfully   = "active_successfully"
	MsgDeleteUserSuccessful = "Delete user successfully"
)

const superuserName = "Super User"

// CreateUserInput is the administrative create payload. Role is matched
// case-insensitively against the closed role set.
type CreateUserInput struct {
	Name     string
	Email    string
	Role     string
	Password *string
}

// UpdateUserInput carries the optional profile changes.
type UpdateUserInput struct {
	Name *string
	Role *string
}

// UserCreated is returned by CreateUser. The caller delivers the code.
type UserCreated struct {
	User             domain.DirectoryUser
	VerificationCode string
}

// UserService owns the account lifecycle and the user directory.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	hasher     *auth.Hasher
	newCode    auth.CodeGenerator
	superuser  config.SuperuserConfig
	logger     *zap.Logger
}

// UserDependencies collects the collaborators of UserService.
type UserDependencies struct {
	UserRepo      repository.UserRepository
	Dispatcher    events.Dispatcher
	Hasher        *auth.Hasher
	CodeGenerator auth.CodeGenerator
	Superuser     config.SuperuserConfig
	Logger        *zap.Logger
}

// NewUserService builds the service.
func NewUserService(deps UserDependencies) *UserService {
	svc := &UserService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		hasher:     deps.Hasher,
		newCode:    deps.CodeGenerator,
		superuser:  deps.Superuser,
		logger:     deps.Logger,
	}
	if svc.hasher == nil {
		svc.hasher = auth.NewHasher(0)
	}
	if svc.newCode == nil {
		svc.newCode = auth.NewVerificationCode
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// CreateUser creates an account directly. Superusers start ACTIVE, everyone
// else IN_ACTIVE; a verification code is issued either way.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*UserCreated, error) {
	role, ok := domain.ParseUserRole(input.Role)
	if !ok {
		return nil, util.NewBadRequest(MsgRoleInvalid)
	}
	email := domain.NormalizeEmail(input.Email)

	if _, err := s.users.FindOne(ctx, repository.UserLookup{Email: email}); err == nil {
		return nil, util.NewConflict(MsgUserExisted, nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, util.NewInternalError(err)
	}

	code := s.newCode()
	user := &domain.User{
		Name:             strings.TrimSpace(input.Name),
		Email:            email,
		Role:             role,
		Status:           domain.InitialStatusFor(role),
		VerificationCode: &code,
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, passwordError(err)
		}
		user.PasswordHash = &hash
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, util.NewConflict(MsgUserExisted, nil)
		case errors.Is(err, repository.ErrSuperuserExists):
			return nil, util.NewConflict(MsgSuperuserExisted, nil)
		}
		return nil, util.NewInternalError(err)
	}

	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	s.publish(ctx, events.NewEvent(events.EventUserCreated, user.ID, verificationPayload(user, code)))

	return &UserCreated{User: domain.Decorate(*user), VerificationCode: code}, nil
}

// RequestAccount records a self-service signup in REQUEST status.
func (s *UserService) RequestAccount(ctx context.Context, name, email string) error {
	email = domain.NormalizeEmail(email)

	existing, err := s.users.FindOne(ctx, repository.UserLookup{Email: email})
	if err == nil {
		return emailConflict(existing)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return util.NewInternalError(err)
	}

	user := &domain.User{
		Name:   strings.TrimSpace(name),
		Email:  email,
		Role:   domain.UserRoleUser,
		Status: domain.UserStatusRequest,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			// lost an insert race; report what the winner created
			winner, lookupErr := s.users.FindOne(ctx, repository.UserLookup{Email: email})
			if lookupErr != nil {
				return util.NewConflict(MsgUserExisted, nil)
			}
			return emailConflict(winner)
		}
		return util.NewInternalError(err)
	}

	s.logger.Info("account requested", zap.String("user_id", user.ID))
	s.publish(ctx, events.NewEvent(events.EventAccountRequested, user.ID, accountPayload(user)))
	return nil
}

func passwordError(err error) error {
	switch {
	case errors.Is(err, auth.ErrEmptyPassword):
		return util.NewValidationError("password is required", map[string]any{"password": "required"})
	case errors.Is(err, auth.ErrPasswordTooLong):
		return util.NewValidationError("password is too long", map[string]any{"password": "must be at most 72 bytes"})
	}
	return util.NewInternalError(err)
}

func emailConflict(existing *domain.User) error {
	if existing.Status == domain.UserStatusRequest {
		return util.NewConflict(MsgEmailRequesting, nil)
	}
	return util.NewConflict(MsgUserExisted, nil)
}

// Approve moves a REQUEST account to IN_ACTIVE and issues a verification code.
// A missing id and a non-REQUEST account fail the same way.
func (s *UserService) Approve(ctx context.Context, id string) error {
	code := s.newCode()
	user, err := s.users.TransitionStatus(ctx, id, domain.UserStatusRequest, domain.UserStatusInActive, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return util.NewNotFoundMessage(MsgRequestNotExisted)
		}
		return util.NewInternalError(err)
	}

	s.logger.Info("user approved", zap.String("user_id", user.ID))
	s.publish(ctx, events.NewEvent(events.EventUserApproved, user.ID, verificationPayload(user, code)))
	return nil
}

// ResendVerification reissues the code of an IN_ACTIVE account.
func (s *UserService) ResendVerification(ctx context.Context, id string) error {
	code := s.newCode()
	user, err := s.users.TransitionStatus(ctx, id, domain.UserStatusInActive, domain.UserStatusInActive, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return util.NewNotFoundMessage(MsgResendFailed)
		}
		return util.NewInternalError(err)
	}

	s.logger.Info("verification resent", zap.String("user_id", user.ID))
	s.publish(ctx, events.NewEvent(events.EventVerificationResent, user.ID, verificationPayload(user, code)))
	return nil
}

// Activate sets the password of the account holding code and marks it ACTIVE.
// The code stays on the record, so repeated activation reports BadRequest.
func (s *UserService) Activate(ctx context.Context, code, newPassword string) error {
	if strings.TrimSpace(code) == "" {
		return util.NewNotFoundMessage(MsgUserNotExisted)
	}
	user, err := s.users.FindOne(ctx, repository.UserLookup{VerificationCode: code})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return util.NewNotFoundMessage(MsgUserNotExisted)
		}
		return util.NewInternalError(err)
	}
	if user.Status == domain.UserStatusActive {
		return util.NewBadRequest(MsgUserActivated)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return passwordError(err)
	}

	activated, err := s.users.Activate(ctx, user.ID, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// activated concurrently, or deleted in between
			return util.NewBadRequest(MsgUserActivated)
		}
		return util.NewInternalError(err)
	}

	s.logger.Info("user activated", zap.String("user_id", activated.ID))
	s.publish(ctx, events.NewEvent(events.EventUserActivated, activated.ID, accountPayload(activated)))
	return nil
}

// UpdateUser changes name and/or role. Email and status are never touched.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.NewNotFoundMessage(MsgUserNotExistedPlain)
		}
		return nil, util.NewInternalError(err)
	}

	patch := repository.UserPatch{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		patch.Name = &name
	}
	if input.Role != nil {
		role, ok := domain.ParseUserRole(*input.Role)
		if !ok {
			return nil, util.NewBadRequest(MsgRoleInvalid)
		}
		patch.Role = &role
	}

	updated, err := s.users.UpdateProfile(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, util.NewNotFoundMessage(MsgUserNotExistedPlain)
		case errors.Is(err, repository.ErrSuperuserExists):
			return nil, util.NewConflict(MsgSuperuserExisted, nil)
		}
		return nil, util.NewInternalError(err)
	}

	s.logger.Info("user updated", zap.String("user_id", updated.ID))
	return updated, nil
}

// DeleteUser removes the account permanently.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return util.NewNotFoundMessage(MsgUserNotExistedPlain)
		}
		return util.NewInternalError(err)
	}

	s.logger.Info("user deleted", zap.String("user_id", deleted.ID))
	s.publish(ctx, events.NewEvent(events.EventUserDeleted, deleted.ID, accountPayload(deleted)))
	return nil
}

// BootstrapSuperuser creates the configured superuser when none exists. It is
// safe to call on every start, including from several instances at once; the
// returned flag reports whether this call created the account.
func (s *UserService) BootstrapSuperuser(ctx context.Context) (bool, error) {
	if !s.superuser.Enabled() {
		s.logger.Debug("superuser bootstrap skipped: credentials not configured")
		return false, nil
	}

	role := domain.UserRoleSuperuser
	if _, err := s.users.FindOne(ctx, repository.UserLookup{Role: &role}); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, util.NewInternalError(err)
	}

	hash, err := s.hasher.Hash(s.superuser.Password)
	if err != nil {
		return false, util.NewInternalError(err)
	}
	user := &domain.User{
		Name:         superuserName,
		Email:        domain.NormalizeEmail(s.superuser.Email),
		PasswordHash: &hash,
		Role:         domain.UserRoleSuperuser,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrSuperuserExists):
			return false, nil
		case errors.Is(err, repository.ErrEmailTaken):
			// another instance may have bootstrapped the same account first
			owner, lookupErr := s.users.FindOne(ctx, repository.UserLookup{Email: user.Email})
			if lookupErr == nil && owner.Role == domain.UserRoleSuperuser {
				return false, nil
			}
			return false, util.NewConflict(MsgUserExisted, map[string]any{"email": user.Email})
		}
		return false, util.NewInternalError(err)
	}

	s.logger.Info("superuser bootstrapped", zap.String("user_id", user.ID))
	return true, nil
}

// GetUser returns the decorated directory record for id.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.DirectoryUser, error) {
	page, err := s.users.Directory(ctx, repository.DirectoryQuery{Filter: repository.DirectoryFilter{ID: id}})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.NewNotFoundMessage(MsgUserNotExistedPlain)
		}
		return nil, util.NewInternalError(err)
	}
	if len(page.Data) == 0 {
		return nil, util.NewNotFoundMessage(MsgUserNotExistedPlain)
	}
	user := page.Data[0]
	return &user, nil
}

// FindUserBy returns the first account matching lookup.
func (s *UserService) FindUserBy(ctx context.Context, lookup repository.UserLookup) (*domain.User, error) {
	if lookup.Email != "" {
		lookup.Email = domain.NormalizeEmail(lookup.Email)
	}
	user, err := s.users.FindOne(ctx, lookup)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.NewNotFoundMessage(MsgUserNotExisted)
		}
		return nil, util.NewInternalError(err)
	}
	return user, nil
}

// ListUsers returns one page of the directory.
func (s *UserService) ListUsers(ctx context.Context, opts domain.PageOptions) (*domain.DirectoryPage, error) {
	opts = opts.Normalize()
	if !repository.IsSortable(opts.SortBy) {
		return nil, util.NewValidationError("invalid sort field", map[string]any{"sortBy": opts.SortBy})
	}
	page, err := s.users.Directory(ctx, repository.DirectoryQuery{Page: &opts})
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return page, nil
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("user_id", event.UserID),
			zap.Error(err))
	}
}

func accountPayload(user *domain.User) events.AccountPayload {
	return events.AccountPayload{Name: user.Name, Email: user.Email, Role: user.Role, Status: user.Status}
}

func verificationPayload(user *domain.User, code string) events.VerificationPayload {
	return events.VerificationPayload{AccountPayload: accountPayload(user), VerificationCode: code}
}
