package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/model"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/notifier"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/repository"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/storage"
	"github.com/vasapolrittideah/property-listing-api/shared/events"
)

// UserUsecase defines the account operations.
type UserUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*model.UserSummary, error)
	Verify(ctx context.Context, params VerifyParams) (*VerifyResult, error)
	UpdateProfile(ctx context.Context, phone string, params UpdateProfileParams) (*model.User, error)
	Patch(ctx context.Context, phone string, params PatchUserParams) (*model.User, error)
	GetAll(ctx context.Context) ([]*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	DeleteByPhone(ctx context.Context, phone string) (*model.User, error)
}

// RegisterParams defines the parameters for account registration. Logo is the stored
// path of the uploaded logo, or empty when none was uploaded.
type RegisterParams struct {
	FullName    string `json:"fullName"    form:"fullName"`
	CompanyName string `json:"companyName" form:"companyName"`
	LogoColor   string `json:"logoColor"   form:"logoColor"`
	Phone       string `json:"phone"       form:"phone"`
	Logo        string `json:"-"           form:"-"`
}

// VerifyParams defines the parameters for phone verification.
type VerifyParams struct {
	Phone            string `json:"phone"            form:"phone"`
	VerificationCode string `json:"verificationCode" form:"verificationCode"`
}

// VerifyResult is the verified account and, when tokens are enabled, an access token.
type VerifyResult struct {
	User        *model.User
	AccessToken string
}

// UpdateProfileParams defines the profile fields a client may overwrite.
type UpdateProfileParams struct {
	FirstName *string `json:"firstName" form:"firstName"`
	LastName  *string `json:"lastName"  form:"lastName"`
}

// PatchUserParams defines a partial account update. Logo is the stored path of a newly
// uploaded logo, or empty.
type PatchUserParams struct {
	FullName    *string `json:"fullName"    form:"fullName"    validate:"omitempty,min=2,max=100"`
	CompanyName *string `json:"companyName" form:"companyName" validate:"omitempty,min=2,max=100"`
	LogoColor   *string `json:"logoColor"   form:"logoColor"   validate:"omitempty,max=32"`
	Phone       *string `json:"phone"       form:"phone"       validate:"omitempty,phone"`
	FirstName   *string `json:"firstName"   form:"firstName"`
	LastName    *string `json:"lastName"    form:"lastName"`
	Logo        string  `json:"-"           form:"-"`
}

// TokenIssuer issues access tokens for verified accounts.
type TokenIssuer interface {
	IssueAccessToken(userID, phone string) (string, error)
}

var (
	ErrMissingFields            = errors.New("all fields are required")
	ErrMissingVerificationInput = errors.New("phone and verification code are required")
	ErrInvalidUser              = errors.New("invalid user")
	ErrPhoneAlreadyRegistered   = errors.New("phone number already registered")
	ErrUserNotFound             = errors.New("user not found")
	ErrInvalidVerificationCode  = errors.New("invalid verification code")
)

// UserDeps bundles the optional collaborators of the user use case.
// Nil fields fall back to no-op implementations.
type UserDeps struct {
	CodeSender notifier.CodeSender
	Tokens     TokenIssuer
	Publisher  events.Publisher
}

type userUsecase struct {
	userRepo   repository.UserRepository
	assets     storage.AssetStore
	validator  StructValidator
	codeSender notifier.CodeSender
	tokens     TokenIssuer
	publisher  events.Publisher
	logger     *zerolog.Logger
	newCode    func() (string, error)
}

func NewUserUsecase(
	userRepo repository.UserRepository,
	assets storage.AssetStore,
	validator StructValidator,
	deps UserDeps,
	logger *zerolog.Logger,
) UserUsecase {
	u := &userUsecase{
		userRepo:   userRepo,
		assets:     assets,
		validator:  validator,
		codeSender: deps.CodeSender,
		tokens:     deps.Tokens,
		publisher:  deps.Publisher,
		logger:     logger,
		newCode:    generateVerificationCode,
	}

	if u.codeSender == nil {
		u.codeSender = notifier.NewLogCodeSender(logger, false)
	}
	if u.publisher == nil {
		u.publisher = events.Nop{}
	}

	return u
}

func (u *userUsecase) Register(ctx context.Context, params RegisterParams) (*model.UserSummary, error) {
	user := &model.User{
		FullName:    strings.TrimSpace(params.FullName),
		CompanyName: strings.TrimSpace(params.CompanyName),
		Logo:        params.Logo,
		LogoColor:   strings.TrimSpace(params.LogoColor),
		Phone:       strings.TrimSpace(params.Phone),
	}

	if user.FullName == "" || user.CompanyName == "" || user.Phone == "" || user.Logo == "" {
		u.deleteAsset(params.Logo)
		return nil, ErrMissingFields
	}

	if user.LogoColor == "" {
		user.LogoColor = model.DefaultLogoColor
	}

	if err := u.validator.Struct(user); err != nil {
		u.deleteAsset(params.Logo)
		return nil, fmt.Errorf("%w: %w", ErrInvalidUser, err)
	}

	if _, err := u.userRepo.GetUserByPhone(ctx, user.Phone); err == nil {
		u.deleteAsset(params.Logo)
		return nil, ErrPhoneAlreadyRegistered
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		u.deleteAsset(params.Logo)
		return nil, fmt.Errorf("failed to look up phone: %w", err)
	}

	code, err := u.newCode()
	if err != nil {
		u.deleteAsset(params.Logo)
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}
	user.VerificationCode = code
	user.Verified = false

	created, err := u.userRepo.CreateUser(ctx, user)
	if err != nil {
		u.deleteAsset(params.Logo)
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrPhoneAlreadyRegistered
		}

		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := u.codeSender.SendVerificationCode(ctx, created.Phone, code); err != nil {
		u.logger.Error().Err(err).Str("phone", created.Phone).Msg("failed to send verification code")
	}

	u.publish(ctx, events.UserRegistered, created)

	return &model.UserSummary{
		Phone:       created.Phone,
		FullName:    created.FullName,
		CompanyName: created.CompanyName,
	}, nil
}

func (u *userUsecase) Verify(ctx context.Context, params VerifyParams) (*VerifyResult, error) {
	phone := strings.TrimSpace(params.Phone)
	code := strings.TrimSpace(params.VerificationCode)
	if phone == "" || code == "" {
		return nil, ErrMissingVerificationInput
	}

	user, err := u.userRepo.GetUserByPhone(ctx, phone)
	if err != nil {
		return nil, u.translateError(err, "get user")
	}

	// A cleared code never matches, so a second verification fails.
	if user.VerificationCode == "" || user.VerificationCode != code {
		return nil, ErrInvalidVerificationCode
	}

	verified := true
	updated, err := u.userRepo.UpdateUserByPhone(ctx, phone, repository.UpdateUserParams{
		Verified:              &verified,
		ClearVerificationCode: true,
	})
	if err != nil {
		return nil, u.translateError(err, "verify user")
	}

	result := &VerifyResult{User: updated}
	if u.tokens != nil {
		token, err := u.tokens.IssueAccessToken(updated.ID.Hex(), updated.Phone)
		if err != nil {
			return nil, fmt.Errorf("failed to issue access token: %w", err)
		}
		result.AccessToken = token
	}

	u.publish(ctx, events.UserVerified, updated)

	return result, nil
}

func (u *userUsecase) UpdateProfile(
	ctx context.Context,
	phone string,
	params UpdateProfileParams,
) (*model.User, error) {
	if params.FirstName == nil && params.LastName == nil {
		return u.GetByPhone(ctx, phone)
	}

	updated, err := u.userRepo.UpdateUserByPhone(ctx, phone, repository.UpdateUserParams{
		FirstName: params.FirstName,
		LastName:  params.LastName,
	})
	if err != nil {
		return nil, u.translateError(err, "update profile")
	}

	u.publish(ctx, events.UserUpdated, updated)

	return updated, nil
}

func (u *userUsecase) Patch(ctx context.Context, phone string, params PatchUserParams) (*model.User, error) {
	params.FullName = trimmed(params.FullName)
	params.CompanyName = trimmed(params.CompanyName)

	if err := u.validator.Struct(params); err != nil {
		u.deleteAsset(params.Logo)
		return nil, fmt.Errorf("%w: %w", ErrInvalidUser, err)
	}

	update := repository.UpdateUserParams{
		FullName:    params.FullName,
		CompanyName: params.CompanyName,
		LogoColor:   params.LogoColor,
		Phone:       params.Phone,
		FirstName:   params.FirstName,
		LastName:    params.LastName,
	}

	var oldLogo string
	if params.Logo != "" {
		existing, err := u.userRepo.GetUserByPhone(ctx, phone)
		if err != nil {
			u.deleteAsset(params.Logo)
			return nil, u.translateError(err, "get user")
		}
		oldLogo = existing.Logo
		update.Logo = &params.Logo
	}

	updated, err := u.userRepo.UpdateUserByPhone(ctx, phone, update)
	if err != nil {
		u.deleteAsset(params.Logo)
		if errors.Is(err, repository.ErrNoUserFields) {
			return u.GetByPhone(ctx, phone)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrPhoneAlreadyRegistered
		}

		return nil, u.translateError(err, "patch user")
	}

	if oldLogo != "" && oldLogo != params.Logo {
		u.deleteAssetIfExists(oldLogo)
	}

	u.publish(ctx, events.UserUpdated, updated)

	return updated, nil
}

func (u *userUsecase) GetAll(ctx context.Context) ([]*model.User, error) {
	users, err := u.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

func (u *userUsecase) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, id)
	if err != nil {
		return nil, u.translateError(err, "get user")
	}

	return user, nil
}

func (u *userUsecase) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	user, err := u.userRepo.GetUserByPhone(ctx, phone)
	if err != nil {
		return nil, u.translateError(err, "get user")
	}

	return user, nil
}

func (u *userUsecase) DeleteByPhone(ctx context.Context, phone string) (*model.User, error) {
	deleted, err := u.userRepo.DeleteUserByPhone(ctx, phone)
	if err != nil {
		return nil, u.translateError(err, "delete user")
	}

	u.deleteAssetIfExists(deleted.Logo)
	u.publish(ctx, events.UserDeleted, deleted)

	return deleted, nil
}

func (u *userUsecase) translateError(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, repository.ErrInvalidID) {
		return ErrUserNotFound
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}

// deleteAsset removes an uploaded file. Failures are logged and otherwise ignored.
func (u *userUsecase) deleteAsset(path string) {
	if path == "" {
		return
	}

	if err := u.assets.Delete(path); err != nil {
		u.logger.Warn().Err(err).Str("path", path).Msg("failed to delete asset")
	}
}

func (u *userUsecase) deleteAssetIfExists(path string) {
	if path == "" {
		return
	}

	ok, err := u.assets.Exists(path)
	if err != nil {
		u.logger.Warn().Err(err).Str("path", path).Msg("failed to stat asset")
		return
	}
	if ok {
		u.deleteAsset(path)
	}
}

func (u *userUsecase) publish(ctx context.Context, eventType string, user *model.User) {
	data := map[string]any{
		"id":       user.ID.Hex(),
		"phone":    user.Phone,
		"verified": user.Verified,
	}

	if err := u.publisher.Publish(ctx, events.UserStream, eventType, data); err != nil {
		u.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish user event")
	}
}

// generateVerificationCode returns a random six digit code in 100000..999999.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
