package identity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	activityapp "github.com/ledgerly/backend/internal/application/activity"
	"github.com/ledgerly/backend/internal/domain/activity"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/domain/shared/valueobject"
	"github.com/ledgerly/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// logoTypes maps accepted logo content types to file extensions
var logoTypes = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// AccountServiceConfig contains configuration for the account service
type AccountServiceConfig struct {
	DefaultCurrency string
	MaxLogoSize     int64
	LogoURLExpiry   time.Duration
}

// DefaultAccountServiceConfig returns USD, 2 MiB logos and 15 minute links
func DefaultAccountServiceConfig() AccountServiceConfig {
	return AccountServiceConfig{
		DefaultCurrency: string(valueobject.DefaultCurrency),
		MaxLogoSize:     2 << 20,
		LogoURLExpiry:   15 * time.Minute,
	}
}

// AccountService manages accounts and their branding
type AccountService struct {
	accountRepo identity.AccountRepository
	roleRepo    identity.RoleRepository
	userRepo    identity.UserRepository
	tx          shared.Transactor
	storage     ObjectStorage
	events      shared.EventPublisher
	recorder    *activityapp.Recorder
	config      AccountServiceConfig
	logger      *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	accountRepo identity.AccountRepository,
	roleRepo identity.RoleRepository,
	userRepo identity.UserRepository,
	tx shared.Transactor,
	storage ObjectStorage,
	events shared.EventPublisher,
	recorder *activityapp.Recorder,
	config AccountServiceConfig,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		roleRepo:    roleRepo,
		userRepo:    userRepo,
		tx:          tx,
		storage:     storage,
		events:      events,
		recorder:    recorder,
		config:      config,
		logger:      logger,
	}
}

// Register creates an account, its system roles and its super-admin owner in
// one transaction
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	code := strings.ToLower(strings.TrimSpace(req.AccountCode))
	exists, err := s.accountRepo.ExistsByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Account with this code already exists")
	}
	taken, err := s.userRepo.ExistsByEmail(ctx, identity.NormalizeEmail(req.AdminEmail))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "User with this email already exists")
	}

	currencyCode := req.Currency
	if currencyCode == "" {
		currencyCode = s.config.DefaultCurrency
	}
	currency, err := valueobject.ParseCurrency(strings.ToUpper(currencyCode))
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}

	account, err := identity.NewAccount(code, req.AccountName, req.Email, currency)
	if err != nil {
		return nil, err
	}
	admin, err := identity.NewSuperAdmin(account.ID, req.AdminEmail, req.AdminName, req.AdminPassword)
	if err != nil {
		return nil, err
	}

	templates := identity.DefaultRoleTemplates()
	roles := make([]*identity.Role, 0, len(templates))
	for _, tpl := range templates {
		role, err := identity.NewSystemRole(account.ID, tpl.Code, tpl.Name, tpl.Permissions)
		if err != nil {
			return nil, err
		}
		if tpl.Code == identity.RoleCodeAdmin {
			if err := admin.SetRoles([]uuid.UUID{role.ID}); err != nil {
				return nil, err
			}
		}
		roles = append(roles, role)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.accountRepo.Create(ctx, account); err != nil {
			return err
		}
		for _, role := range roles {
			if err := s.roleRepo.Create(ctx, role); err != nil {
				return err
			}
		}
		return s.userRepo.Create(ctx, admin)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, account)
	for _, role := range roles {
		s.publish(ctx, role)
	}
	s.publish(ctx, admin)

	s.logger.Info("Account registered",
		zap.String("account_id", account.ID.String()),
		zap.String("code", account.Code),
		zap.String("admin_id", admin.ID.String()))

	resp := &RegisterResponse{
		Account: ToAccountResponse(account),
		Admin:   ToUserResponse(admin),
	}

	actor := shared.ActorFromContext(ctx)
	actor.UserID = admin.ID
	actor.Name = admin.Name()
	s.recorder.Record(shared.WithActor(ctx, actor), account.ID, activity.Entry{
		Action:      activity.ActionCreate,
		EntityType:  activity.EntityAccount,
		EntityID:    account.ID,
		EntityLabel: account.Name,
		After:       resp.Account,
	})
	return resp, nil
}

// Get returns the account
func (s *AccountService) Get(ctx context.Context, tenantID uuid.UUID) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// Update changes the profile, currency and numbering prefixes
func (s *AccountService) Update(ctx context.Context, tenantID uuid.UUID, req UpdateAccountRequest) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	before := ToAccountResponse(account)

	profile := identity.AccountProfile{
		Name:      pick(req.Name, account.Name),
		Email:     pick(req.Email, account.Email),
		Phone:     pick(req.Phone, account.Phone),
		Address:   pick(req.Address, account.Address),
		TaxNumber: pick(req.TaxNumber, account.TaxNumber),
	}
	if err := account.UpdateProfile(profile); err != nil {
		return nil, err
	}
	if req.Currency != nil {
		if err := account.SetCurrency(strings.ToUpper(*req.Currency)); err != nil {
			return nil, err
		}
	}
	if req.InvoicePrefix != nil || req.ExpensePrefix != nil || req.RevenuePrefix != nil {
		numbering := identity.NumberingSettings{
			InvoicePrefix: strings.ToUpper(pick(req.InvoicePrefix, account.Numbering.InvoicePrefix)),
			ExpensePrefix: strings.ToUpper(pick(req.ExpensePrefix, account.Numbering.ExpensePrefix)),
			RevenuePrefix: strings.ToUpper(pick(req.RevenuePrefix, account.Numbering.RevenuePrefix)),
		}
		if err := account.SetNumbering(numbering); err != nil {
			return nil, err
		}
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	s.publish(ctx, account)

	resp := ToAccountResponse(account)
	s.record(ctx, account, activity.ActionUpdate, before, resp)
	return &resp, nil
}

// Suspend blocks every login of the account
func (s *AccountService) Suspend(ctx context.Context, tenantID uuid.UUID) (*AccountResponse, error) {
	return s.changeStatus(ctx, tenantID, activity.ActionDisable, (*identity.Account).Suspend)
}

// Activate lifts a suspension
func (s *AccountService) Activate(ctx context.Context, tenantID uuid.UUID) (*AccountResponse, error) {
	return s.changeStatus(ctx, tenantID, activity.ActionEnable, (*identity.Account).Activate)
}

// IsActive reports whether the account may be used
func (s *AccountService) IsActive(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	account, err := s.accountRepo.FindByID(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return account.IsActive(), nil
}

func (s *AccountService) changeStatus(ctx context.Context, tenantID uuid.UUID, action activity.Action, apply func(*identity.Account) error) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	before := ToAccountResponse(account)
	if err := apply(account); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	s.publish(ctx, account)

	s.logger.Info("Account status changed",
		zap.String("account_id", account.ID.String()),
		zap.String("status", string(account.Status)))

	resp := ToAccountResponse(account)
	s.record(ctx, account, action, before, resp)
	return &resp, nil
}

// GetBranding returns the branding settings
func (s *AccountService) GetBranding(ctx context.Context, tenantID uuid.UUID) (*BrandingResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	resp := ToBrandingResponse(account)
	return &resp, nil
}

// UpdateBranding changes the primary color and invoice footer
func (s *AccountService) UpdateBranding(ctx context.Context, tenantID uuid.UUID, req UpdateBrandingRequest) (*BrandingResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	before := ToBrandingResponse(account)
	if err := account.UpdateBranding(req.PrimaryColor, req.InvoiceFooter); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	resp := ToBrandingResponse(account)
	s.record(ctx, account, activity.ActionUpdate, before, resp)
	return &resp, nil
}

// UploadLogo stores a new logo and removes the one it replaces
func (s *AccountService) UploadLogo(ctx context.Context, tenantID uuid.UUID, upload LogoUpload) (*BrandingResponse, error) {
	ext, ok := logoTypes[strings.ToLower(strings.TrimSpace(upload.ContentType))]
	if !ok {
		return nil, shared.NewDomainError("INVALID_LOGO_TYPE", "Logo must be a PNG, JPEG, WebP or SVG image")
	}
	if upload.Size <= 0 {
		return nil, shared.NewDomainError("INVALID_LOGO", "Logo file is empty")
	}
	if s.config.MaxLogoSize > 0 && upload.Size > s.config.MaxLogoSize {
		return nil, shared.NewDomainError("LOGO_TOO_LARGE",
			fmt.Sprintf("Logo cannot exceed %d bytes", s.config.MaxLogoSize))
	}

	account, err := s.accountRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("tenants/%s/branding/logo-%s%s", tenantID, uuid.New(), ext)
	if err := s.storage.Upload(ctx, key, upload.Body, upload.Size, upload.ContentType); err != nil {
		return nil, fmt.Errorf("upload logo: %w", err)
	}

	previous := account.SetLogo(key)
	if err := s.accountRepo.Save(ctx, account); err != nil {
		s.deleteObject(ctx, key)
		return nil, err
	}
	if previous != "" {
		s.deleteObject(ctx, previous)
	}

	s.logger.Info("Account logo uploaded",
		zap.String("account_id", account.ID.String()),
		zap.String("key", key),
		zap.Int64("size", upload.Size))

	resp := ToBrandingResponse(account)
	s.record(ctx, account, activity.ActionUpload, nil, map[string]any{
		"logo_key":     key,
		"content_type": upload.ContentType,
		"size":         upload.Size,
	})
	return &resp, nil
}

// DeleteLogo removes the logo
func (s *AccountService) DeleteLogo(ctx context.Context, tenantID uuid.UUID) error {
	account, err := s.accountRepo.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if !account.HasLogo() {
		return shared.NewDomainError("NOT_FOUND", "Account has no logo")
	}
	previous := account.SetLogo("")
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return err
	}
	s.deleteObject(ctx, previous)

	s.record(ctx, account, activity.ActionDelete, map[string]any{"logo_key": previous}, nil)
	return nil
}

// GetLogoURL returns a time-limited download link for the logo
func (s *AccountService) GetLogoURL(ctx context.Context, tenantID uuid.UUID) (*LogoURLResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !account.HasLogo() {
		return nil, shared.NewDomainError("NOT_FOUND", "Account has no logo")
	}
	url, expiresAt, err := s.storage.DownloadURL(ctx, account.Branding.LogoKey, s.config.LogoURLExpiry)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, shared.NewDomainError("NOT_FOUND", "Logo file is missing")
	}
	if err != nil {
		return nil, err
	}
	return &LogoURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

// LoadLogo reads the account logo for embedding in printed documents.
// It returns nil when the account has no logo or the object is gone.
func (s *AccountService) LoadLogo(ctx context.Context, account *identity.Account) (*printing.Logo, error) {
	if !account.HasLogo() {
		return nil, nil
	}
	rc, contentType, err := s.storage.Open(ctx, account.Branding.LogoKey)
	if errors.Is(err, ErrObjectNotFound) {
		s.logger.Warn("Account logo object missing",
			zap.String("account_id", account.ID.String()),
			zap.String("key", account.Branding.LogoKey))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	limit := s.config.MaxLogoSize
	if limit <= 0 {
		limit = DefaultAccountServiceConfig().MaxLogoSize
	}
	if _, err := io.Copy(&buf, io.LimitReader(rc, limit)); err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	return &printing.Logo{Data: buf.Bytes(), ContentType: contentType}, nil
}

func (s *AccountService) deleteObject(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete logo object", zap.String("key", key), zap.Error(err))
	}
}

func (s *AccountService) publish(ctx context.Context, aggregate shared.AggregateRoot) {
	if err := shared.PublishAndClear(ctx, s.events, aggregate); err != nil {
		s.logger.Warn("Failed to publish events", zap.Error(err))
	}
}

func (s *AccountService) record(ctx context.Context, account *identity.Account, action activity.Action, before, after any) {
	s.recorder.Record(ctx, account.ID, activity.Entry{
		Action:      action,
		EntityType:  activity.EntityAccount,
		EntityID:    account.ID,
		EntityLabel: account.Name,
		Before:      before,
		After:       after,
	})
}

// pick returns *v when set, otherwise fallback
func pick(v *string, fallback string) string {
	if v != nil {
		return *v
	}
	return fallback
}
