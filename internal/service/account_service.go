package service

import (
	"accounts/internal/auth"
	"accounts/internal/config"
	"accounts/internal/entity"
	"accounts/internal/model"
	"accounts/internal/storage"
	"accounts/internal/utils"
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	deletedPasswordSentinel = "deleted"
	deletedAdminEmail       = "Admin@delete.com"
	deletedUserEmail        = "Utilisateur@delete.com"
	deletedSurnomPrefix     = "delete-"
)

var (
	errRegisterMissing = validationError(CodeMissingFields, "Surnom, Email, and Mot de Passe are required")
	errLoginMissing    = validationError(CodeMissingFields, "Surnom and Mot de Passe are required")
	errHandleMissing   = validationError(CodeMissingFields, "Surnom is required")
	errInvalidGrade    = validationError(CodeInvalidParams, "Invalid gradeId")
	errInvalidCriteria = validationError(CodeInvalidParams, "Invalid gradeId or etatId")
	errWeakPassword    = validationError(CodeWeakPassword, auth.PasswordPolicyMessage)
	errInvalidAvatar   = validationError(CodeInvalidField, "Invalid file")
	errWeakNewPassword = validationError(CodeWeakPassword, "Le nouveau mot de passe doit contenir entre 8 et 20 caractères, inclure une majuscule, une minuscule, un chiffre et un caractère spécial.")
)

// AccountService implements registration, login, profile management and the
// administrative account operations.
type AccountService struct {
	repo          model.Repository
	store         storage.Storage
	hasher        *auth.Hasher
	tokens        *auth.Manager
	publicBaseURL string
	now           func() time.Time
}

// NewAccountService wires the account service to its collaborators.
func NewAccountService(cfg config.Config, repo model.Repository, store storage.Storage, hasher *auth.Hasher, tokens *auth.Manager) *AccountService {
	if hasher == nil {
		hasher = auth.NewHasher(cfg.BcryptCost)
	}
	return &AccountService{
		repo:          repo,
		store:         store,
		hasher:        hasher,
		tokens:        tokens,
		publicBaseURL: cfg.StoragePublicBaseURL,
		now:           time.Now,
	}
}

// WithClock overrides the time source used for tombstones and avatar names.
func (s *AccountService) WithClock(now func() time.Time) *AccountService {
	if now != nil {
		s.now = now
	}
	return s
}

// Register creates a new account. caller is nil for anonymous registrations;
// only an authenticated admin-tier caller may assign an elevated grade.
func (s *AccountService) Register(ctx context.Context, caller *auth.Claims, in RegisterInput) (*entity.DbUser, error) {
	in.Surnom = strings.TrimSpace(in.Surnom)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in, errRegisterMissing); err != nil {
		return nil, err
	}
	if !auth.ValidatePassword(in.Password) {
		return nil, errWeakPassword
	}

	role := in.GradeID
	if role == 0 {
		role = entity.RoleStandardUser
	}
	if !role.IsValid() {
		return nil, errInvalidGrade
	}
	if role != entity.RoleStandardUser {
		if caller == nil {
			return nil, errForbidden
		}
		actor, err := s.actorFor(ctx, caller)
		if err != nil {
			return nil, err
		}
		if err := s.authorize(auth.AccessRequest{Action: auth.ActionAssignRole, Claims: caller, Actor: actor, Role: role}); err != nil {
			return nil, err
		}
	}

	if err := s.ensureUnique(ctx, in.Surnom, in.Email, 0); err != nil {
		return nil, err
	}

	digest, salt, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, internalError("Internal Server Error", err)
	}

	var avatarRef *string
	if in.Avatar != nil {
		ref, err := s.saveAvatar(ctx, in.Avatar)
		if err != nil {
			return nil, err
		}
		avatarRef = &ref
	}

	user := &entity.DbUser{
		Surnom:      in.Surnom,
		Email:       in.Email,
		MotDePasse:  digest,
		Salt:        salt,
		CheminImage: avatarRef,
		GradeID:     role,
		EtatID:      entity.StateActive,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if avatarRef != nil {
			s.discardAvatar(ctx, *avatarRef)
		}
		return nil, s.storeError(err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"surnom":  user.Surnom,
		"grade":   user.GradeID.String(),
	}).Info("user registered")
	return user, nil
}

// Login verifies credentials and issues a bearer token. Blocked accounts are
// refused before the password is checked.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*entity.LoginResponse, error) {
	in.Surnom = strings.TrimSpace(in.Surnom)
	if err := validateInput(in, errLoginMissing); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserBySurnom(ctx, in.Surnom)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, internalError("Internal Server Error", err)
	}
	if user.EtatID == entity.StateDeleted {
		return nil, errInvalidCredentials
	}
	if decision := auth.Authorize(auth.AccessRequest{Action: auth.ActionLogin, Actor: user}); !decision.Allowed {
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"reason":  decision.Reason,
		}).Warn("login refused")
		return nil, errBlocked
	}
	if !s.hasher.Verify(in.Password, user.MotDePasse) {
		return nil, errInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, internalError("Internal Server Error", err)
	}
	logrus.WithField("user_id", user.ID).Info("user logged in")
	return &entity.LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// ChangePassword replaces the caller's password after checking the old one.
func (s *AccountService) ChangePassword(ctx context.Context, caller *auth.Claims, change PasswordChange) (*entity.DbUser, error) {
	actor, err := s.selfActor(ctx, caller, auth.ActionUpdateSelf)
	if err != nil {
		return nil, err
	}
	var updates entity.UserUpdates
	if err := s.applyPasswordChange(actor, change, &updates); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateUser(ctx, actor.ID, updates); err != nil {
		return nil, s.storeError(err)
	}
	logrus.WithField("user_id", actor.ID).Info("password changed")
	return s.reload(ctx, actor.ID)
}

// UpdateProfile applies the supplied fields to the caller's own account. A
// replaced or removed avatar is deleted from storage after the update commits.
func (s *AccountService) UpdateProfile(ctx context.Context, caller *auth.Claims, in UpdateProfileInput) (*entity.DbUser, error) {
	if err := validateInput(in, errPasswordFields); err != nil {
		return nil, err
	}
	actor, err := s.selfActor(ctx, caller, auth.ActionUpdateSelf)
	if err != nil {
		return nil, err
	}

	var updates entity.UserUpdates
	var checkSurnom, checkEmail string
	if in.Surnom != nil && *in.Surnom != actor.Surnom {
		updates.Surnom = in.Surnom
		checkSurnom = *in.Surnom
	}
	if in.Email != nil && *in.Email != actor.Email {
		updates.Email = in.Email
		checkEmail = *in.Email
	}
	if checkSurnom != "" || checkEmail != "" {
		if err := s.ensureUnique(ctx, checkSurnom, checkEmail, actor.ID); err != nil {
			return nil, err
		}
	}
	if in.Password != nil {
		if err := s.applyPasswordChange(actor, *in.Password, &updates); err != nil {
			return nil, err
		}
	}

	var newAvatar string
	switch {
	case in.RemoveImage:
		updates.ClearImage = true
	case in.Avatar != nil:
		ref, err := s.saveAvatar(ctx, in.Avatar)
		if err != nil {
			return nil, err
		}
		newAvatar = ref
		updates.CheminImage = &newAvatar
	}

	if updates.IsEmpty() {
		return actor, nil
	}
	if err := s.repo.UpdateUser(ctx, actor.ID, updates); err != nil {
		if newAvatar != "" {
			s.discardAvatar(ctx, newAvatar)
		}
		return nil, s.storeError(err)
	}

	if old := actor.AvatarPath(); old != "" && (in.RemoveImage || newAvatar != "") {
		s.discardAvatar(ctx, old)
	}
	logrus.WithField("user_id", actor.ID).Info("profile updated")
	return s.reload(ctx, actor.ID)
}

// RemoveAvatar clears the caller's avatar and deletes the stored file.
func (s *AccountService) RemoveAvatar(ctx context.Context, caller *auth.Claims) error {
	actor, err := s.selfActor(ctx, caller, auth.ActionUpdateSelf)
	if err != nil {
		return err
	}
	old := actor.AvatarPath()
	if old == "" {
		return nil
	}
	if err := s.repo.UpdateUser(ctx, actor.ID, entity.UserUpdates{ClearImage: true}); err != nil {
		return s.storeError(err)
	}
	s.discardAvatar(ctx, old)
	return nil
}

// DeleteOwnAccount soft-deletes the caller: the handle becomes a timestamped
// tombstone, the email a sentinel address and the password a known hash.
func (s *AccountService) DeleteOwnAccount(ctx context.Context, caller *auth.Claims) error {
	actor, err := s.selfActor(ctx, caller, auth.ActionDeleteSelf)
	if err != nil {
		return err
	}

	digest, salt, err := s.hasher.Hash(deletedPasswordSentinel)
	if err != nil {
		return internalError("Erreur interne du serveur.", err)
	}
	surnom := tombstoneSurnom(s.now(), actor.ID)
	email := deletedUserEmail
	if actor.GradeID.IsAdminTier() {
		email = deletedAdminEmail
	}
	state := entity.StateDeleted

	updates := entity.UserUpdates{
		Surnom:     &surnom,
		Email:      &email,
		MotDePasse: &digest,
		Salt:       &salt,
		ClearImage: true,
		EtatID:     &state,
	}
	if err := s.repo.UpdateUser(ctx, actor.ID, updates); err != nil {
		return s.storeError(err)
	}

	if old := actor.AvatarPath(); old != "" {
		s.discardAvatar(ctx, old)
	}
	logrus.WithField("user_id", actor.ID).Info("account soft-deleted")
	return nil
}

// DeleteAccountByHandle permanently removes the account whose handle matches
// both the request and the caller's token.
func (s *AccountService) DeleteAccountByHandle(ctx context.Context, caller *auth.Claims, handle string) error {
	if strings.TrimSpace(handle) == "" {
		return errHandleMissing
	}
	actor, err := s.actorFor(ctx, caller)
	if err != nil {
		return err
	}
	if err := s.authorize(auth.AccessRequest{Action: auth.ActionDeleteByHandle, Claims: caller, Actor: actor, Handle: handle}); err != nil {
		return err
	}
	if err := s.repo.DeleteUserBySurnom(ctx, handle); err != nil {
		return s.storeError(err)
	}
	if old := actor.AvatarPath(); old != "" {
		s.discardAvatar(ctx, old)
	}
	logrus.WithField("surnom", handle).Info("account removed")
	return nil
}

// ListAdmins returns every SuperAdmin and Admin with the grade name joined.
func (s *AccountService) ListAdmins(ctx context.Context, caller *auth.Claims) ([]entity.DbUser, error) {
	actor, err := s.actorFor(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(auth.AccessRequest{Action: auth.ActionListAdmins, Claims: caller, Actor: actor}); err != nil {
		return nil, err
	}
	users, err := s.repo.ListAdmins(ctx)
	if err != nil {
		return nil, internalError("Internal Server Error", err)
	}
	return users, nil
}

// ListByCriteria returns users matching grade and state. Zero values default
// to standard users in the active state.
func (s *AccountService) ListByCriteria(ctx context.Context, caller *auth.Claims, criteria entity.UserCriteria) ([]entity.DbUser, error) {
	actor, err := s.actorFor(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(auth.AccessRequest{Action: auth.ActionListUsers, Claims: caller, Actor: actor}); err != nil {
		return nil, err
	}

	if criteria.GradeID == 0 {
		criteria.GradeID = entity.RoleStandardUser
	}
	if criteria.EtatID == 0 {
		criteria.EtatID = entity.StateActive
	}
	if !criteria.GradeID.IsValid() || !criteria.EtatID.IsValid() {
		return nil, errInvalidCriteria
	}

	users, err := s.repo.ListUsersByCriteria(ctx, criteria)
	if err != nil {
		return nil, internalError("Internal Server Error", err)
	}
	return users, nil
}

// ChangeState toggles a user between active and blocked. Admin targets need a
// SuperAdmin caller and SuperAdmin targets are never modified.
func (s *AccountService) ChangeState(ctx context.Context, caller *auth.Claims, in ChangeStateInput) (*entity.DbUser, error) {
	actor, err := s.actorFor(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(auth.AccessRequest{Action: auth.ActionChangeState, Claims: caller, Actor: actor}); err != nil {
		return nil, err
	}
	if err := validateInput(in, errInvalidParams); err != nil {
		return nil, err
	}
	if in.NewEtat != entity.StateActive && in.NewEtat != entity.StateBlocked {
		return nil, errInvalidParams
	}

	target, err := s.target(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(auth.AccessRequest{Action: auth.ActionChangeState, Claims: caller, Actor: actor, Target: target}); err != nil {
		return nil, err
	}
	return s.setState(ctx, actor, target, in.NewEtat)
}

// ChangeStateAsSuperAdmin sets any valid state on a non-SuperAdmin target.
// Only a SuperAdmin may call it.
func (s *AccountService) ChangeStateAsSuperAdmin(ctx context.Context, caller *auth.Claims, in ChangeStateInput) (*entity.DbUser, error) {
	actor, err := s.actorFor(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(auth.AccessRequest{Action: auth.ActionChangeStateSuperAdmin, Claims: caller, Actor: actor}); err != nil {
		return nil, err
	}
	if err := validateInput(in, errInvalidParams); err != nil {
		return nil, err
	}
	if !in.NewEtat.IsValid() {
		return nil, errInvalidParams
	}

	target, err := s.target(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(auth.AccessRequest{Action: auth.ActionChangeStateSuperAdmin, Claims: caller, Actor: actor, Target: target}); err != nil {
		return nil, err
	}
	return s.setState(ctx, actor, target, in.NewEtat)
}

// Me returns the account identified by the token.
func (s *AccountService) Me(ctx context.Context, caller *auth.Claims) (*entity.DbUser, error) {
	if caller == nil {
		return nil, errUnauthorized
	}
	user, err := s.repo.GetUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, s.storeError(err)
	}
	return user, nil
}

func (s *AccountService) setState(ctx context.Context, actor, target *entity.DbUser, state entity.State) (*entity.DbUser, error) {
	if err := s.repo.UpdateUser(ctx, target.ID, entity.UserUpdates{EtatID: &state}); err != nil {
		return nil, s.storeError(err)
	}
	logrus.WithFields(logrus.Fields{
		"actor_id":  actor.ID,
		"target_id": target.ID,
		"etat":      state.String(),
	}).Info("user state changed")
	return s.reload(ctx, target.ID)
}

// applyPasswordChange validates a password bundle against the stored digest
// and records the new digest and salt in updates.
func (s *AccountService) applyPasswordChange(user *entity.DbUser, change PasswordChange, updates *entity.UserUpdates) error {
	if err := validateInput(change, errPasswordFields); err != nil {
		return err
	}
	if !s.hasher.Verify(change.OldPassword, user.MotDePasse) {
		return errOldPassword
	}
	if change.NewPassword != change.ConfirmPassword {
		return errConfirmMismatch
	}
	if !auth.ValidatePassword(change.NewPassword) {
		return errWeakNewPassword
	}
	digest, salt, err := s.hasher.Hash(change.NewPassword)
	if err != nil {
		return internalError("Internal Server Error", err)
	}
	updates.MotDePasse = &digest
	updates.Salt = &salt
	return nil
}

// ensureUnique fails when a non-deleted account other than excludeID already
// holds surnom or email.
func (s *AccountService) ensureUnique(ctx context.Context, surnom, email string, excludeID uint) error {
	existing, err := s.repo.FindLiveUserBySurnomOrEmail(ctx, surnom, email, excludeID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return internalError("Internal Server Error", err)
	case surnom != "" && existing.Surnom == surnom:
		return errDuplicateSurnom
	default:
		return errDuplicateEmail
	}
}

func (s *AccountService) selfActor(ctx context.Context, caller *auth.Claims, action auth.Action) (*entity.DbUser, error) {
	actor, err := s.actorFor(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(auth.AccessRequest{Action: action, Claims: caller, Actor: actor}); err != nil {
		return nil, err
	}
	return actor, nil
}

func (s *AccountService) actorFor(ctx context.Context, caller *auth.Claims) (*entity.DbUser, error) {
	if caller == nil {
		return nil, errUnauthorized
	}
	actor, err := s.repo.GetUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, s.storeError(err)
	}
	return actor, nil
}

func (s *AccountService) target(ctx context.Context, id uint) (*entity.DbUser, error) {
	target, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, s.storeError(err)
	}
	return target, nil
}

func (s *AccountService) reload(ctx context.Context, id uint) (*entity.DbUser, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, s.storeError(err)
	}
	return user, nil
}

func (s *AccountService) authorize(req auth.AccessRequest) error {
	decision := auth.Authorize(req)
	if decision.Allowed {
		return nil
	}
	fields := logrus.Fields{"action": req.Action.String(), "reason": decision.Reason}
	if req.Actor != nil {
		fields["actor_id"] = req.Actor.ID
	}
	logrus.WithFields(fields).Debug("access denied")

	switch decision.Reason {
	case auth.ReasonNoIdentity:
		return errUnauthorized
	case auth.ReasonBlocked:
		return errBlocked
	case auth.ReasonTargetSuperAdmin:
		return errSuperAdminTarget
	default:
		return errForbidden
	}
}

// storeError maps repository failures onto the service taxonomy.
func (s *AccountService) storeError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errUserNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errDuplicateSurnom
	default:
		return internalError("Internal Server Error", err)
	}
}

func (s *AccountService) saveAvatar(ctx context.Context, upload *AvatarUpload) (string, error) {
	if s.store == nil {
		return "", internalError("Internal Server Error", errors.New("avatar storage not configured"))
	}
	ext, ok := utils.ImageExtension(upload.Data)
	if !ok {
		return "", errInvalidAvatar
	}
	key, err := s.store.Save(ctx, upload.Data, storage.SaveOptions{
		BaseName:  storage.AvatarBaseName(upload.Filename, s.now()),
		Extension: "." + ext,
		Flat:      true,
	})
	if err != nil {
		return "", internalError("Internal Server Error", err)
	}
	return storage.PublicURL(s.publicBaseURL, key), nil
}

// discardAvatar deletes a stored avatar. Failures are logged only.
func (s *AccountService) discardAvatar(ctx context.Context, ref string) {
	if s.store == nil || ref == "" {
		return
	}
	key := storage.KeyFromPublicURL(s.publicBaseURL, ref)
	if err := s.store.Delete(ctx, key); err != nil {
		logrus.WithError(err).WithField("avatar", ref).Warn("failed to delete avatar")
		return
	}
	logrus.WithField("avatar", ref).Debug("avatar deleted")
}

// tombstoneSurnom renders "delete-" plus an ISO-8601 UTC timestamp with ':'
// and '.' replaced by '-'. The user id suffix keeps two deletions within the
// same millisecond apart under the unique Surnom index.
func tombstoneSurnom(at time.Time, id uint) string {
	stamp := at.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return deletedSurnomPrefix + stamp + "-" + strconv.FormatUint(uint64(id), 10)
}
