package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"comanda/internal/domain"
	"comanda/internal/dto"
	"comanda/internal/entitlement"
	apperrors "comanda/internal/errors"
	"comanda/internal/infrastructure/redis"
)

type TenantRepository interface {
	FindAccountByID(ctx context.Context, id string) (*domain.Account, error)
	FindPageBySlug(ctx context.Context, slug string) (*domain.TenantPage, error)
	ReplaceCoupons(ctx context.Context, slug string, coupons []domain.Coupon) error
	CountMenuItems(ctx context.Context, slug string) (int, error)
	InsertMenuItem(ctx context.Context, slug string, item domain.MenuItem) error
	UpdateMenuItem(ctx context.Context, slug, title string, item domain.MenuItem) error
	DeleteMenuItem(ctx context.Context, slug, title string) error
	UpdateMenuPositions(ctx context.Context, slug string, titles []string) error
	UpdateProfile(ctx context.Context, slug string, page domain.TenantPage) error
	UpdatePlan(ctx context.Context, accountID string, plan domain.Plan, trialDeadline *time.Time) error
}

// PageService owns tenant pages: the public read path (cached), the merchant
// dashboard read, and the pro-gated write operations. Entitlement is always
// resolved through the entitlement package at read time, from whichever plan
// snapshot the caller can legitimately see.
type PageService struct {
	repo   TenantRepository
	cache  redis.Cache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewPageService(repo TenantRepository, cache redis.Cache, ttl time.Duration, logger *zap.Logger) *PageService {
	return &PageService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Page returns the tenant's page record, served from the cache when possible.
// The cache holds the raw record, never a resolved entitlement, so expiry is
// still computed at read time on every request.
func (s *PageService) Page(ctx context.Context, slug string) (*domain.TenantPage, error) {
	if s.cache != nil {
		key := s.cache.Key("page", slug)
		raw, hit, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("page cache read failed", zap.String("slug", slug), zap.Error(err))
		} else if hit {
			var page domain.TenantPage
			if err := json.Unmarshal([]byte(raw), &page); err == nil {
				return &page, nil
			}
			s.logger.Warn("page cache entry corrupt, falling through", zap.String("slug", slug))
		}
	}

	page, err := s.repo.FindPageBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(page); err == nil {
			key := s.cache.Key("page", slug)
			if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
				s.logger.Warn("page cache write failed", zap.String("slug", slug), zap.Error(err))
			}
		}
	}

	return page, nil
}

// PublicPage is the anonymous visitor view: entitlement resolved from the
// page's denormalized plan snapshot, pro-only fields hidden when disabled,
// coupon codes never exposed.
func (s *PageService) PublicPage(ctx context.Context, slug string) (*dto.PublicPageDTO, error) {
	page, err := s.Page(ctx, slug)
	if err != nil {
		return nil, err
	}

	ent := entitlement.Resolve(page.Plan, page.TrialDeadline, s.now())

	out := &dto.PublicPageDTO{
		Slug:               page.Slug,
		Title:              page.Title,
		Bio:                page.Bio,
		Theme:              page.Theme,
		IsOpen:             page.IsOpen,
		ProFeaturesEnabled: ent.ProFeaturesEnabled,
		Items:              menuItemDTOs(page.Items),
	}
	if ent.ProFeaturesEnabled {
		out.Address = page.Address
		out.PixKey = page.PixKey
	}

	return out, nil
}

// Dashboard is the merchant view, resolved from the private account record.
func (s *PageService) Dashboard(ctx context.Context, accountID string) (*dto.AccountOverviewDTO, error) {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	page, err := s.repo.FindPageBySlug(ctx, account.PageSlug)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ent := entitlement.Resolve(account.Plan, account.TrialDeadline, now)

	coupons := make([]dto.CouponDTO, 0, len(page.Coupons))
	for _, c := range page.Coupons {
		coupons = append(coupons, dto.CouponDTO{
			Code:   c.Code,
			Kind:   string(c.Kind),
			Value:  c.Value.StringFixed(2),
			Active: c.Active,
		})
	}

	return &dto.AccountOverviewDTO{
		AccountID:          account.ID,
		Email:              account.Email,
		PageSlug:           account.PageSlug,
		Plan:               string(ent.Plan),
		ProFeaturesEnabled: ent.ProFeaturesEnabled,
		TrialDaysLeft:      entitlement.TrialDaysLeft(account.TrialDeadline, now),
		Page: dto.PageDTO{
			Slug:     page.Slug,
			Title:    page.Title,
			Bio:      page.Bio,
			Address:  page.Address,
			WhatsApp: page.WhatsApp,
			PixKey:   page.PixKey,
			Theme:    page.Theme,
			IsOpen:   page.IsOpen,
			Items:    menuItemDTOs(page.Items),
		},
		Coupons: coupons,
	}, nil
}

func (s *PageService) AddCoupon(ctx context.Context, accountID string, req dto.AddCouponRequest) error {
	account, err := s.requirePro(ctx, accountID, "coupons require the pro plan")
	if err != nil {
		return err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return apperrors.NewValidationError("coupon code is required", apperrors.ValidationDetail{
			Field: "code", Message: "code must not be blank",
		})
	}

	kind := domain.CouponKind(req.Kind)
	if kind != domain.CouponPercent && kind != domain.CouponFixed {
		return apperrors.NewValidationError("invalid coupon kind", apperrors.ValidationDetail{
			Field: "kind", Message: "kind must be percent or fixed",
		})
	}

	value, err := decimal.NewFromString(strings.ReplaceAll(req.Value, ",", "."))
	if err != nil || !value.IsPositive() {
		return apperrors.NewValidationError("invalid coupon value", apperrors.ValidationDetail{
			Field: "value", Message: "value must be a positive number",
		})
	}

	page, err := s.repo.FindPageBySlug(ctx, account.PageSlug)
	if err != nil {
		return err
	}

	for _, c := range page.Coupons {
		if strings.EqualFold(c.Code, code) {
			return apperrors.NewConflictError("coupon code already exists")
		}
	}

	coupons := append(page.Coupons, domain.Coupon{Code: code, Kind: kind, Value: value, Active: true})
	if err := s.repo.ReplaceCoupons(ctx, account.PageSlug, coupons); err != nil {
		return err
	}

	s.invalidate(ctx, account.PageSlug)
	return nil
}

func (s *PageService) DeleteCoupon(ctx context.Context, accountID, code string) error {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	page, err := s.repo.FindPageBySlug(ctx, account.PageSlug)
	if err != nil {
		return err
	}

	remaining := page.Coupons[:0:0]
	for _, c := range page.Coupons {
		if !strings.EqualFold(c.Code, code) {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == len(page.Coupons) {
		return apperrors.NewNotFoundError("coupon not found")
	}

	if err := s.repo.ReplaceCoupons(ctx, account.PageSlug, remaining); err != nil {
		return err
	}

	s.invalidate(ctx, account.PageSlug)
	return nil
}

func (s *PageService) AddMenuItem(ctx context.Context, accountID string, req dto.MenuItemRequest) error {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	item, err := menuItemFromRequest(req)
	if err != nil {
		return err
	}

	count, err := s.repo.CountMenuItems(ctx, account.PageSlug)
	if err != nil {
		return err
	}

	ent := entitlement.Resolve(account.Plan, account.TrialDeadline, s.now())
	if !ent.ProFeaturesEnabled && count >= domain.FreeMenuItemLimit {
		return apperrors.NewForbiddenError("free plan menu limit reached")
	}

	item.Position = count + 1
	if err := s.repo.InsertMenuItem(ctx, account.PageSlug, item); err != nil {
		return err
	}

	s.invalidate(ctx, account.PageSlug)
	return nil
}

func (s *PageService) UpdateMenuItem(ctx context.Context, accountID, title string, req dto.MenuItemRequest) error {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	item, err := menuItemFromRequest(req)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateMenuItem(ctx, account.PageSlug, title, item); err != nil {
		return err
	}

	s.invalidate(ctx, account.PageSlug)
	return nil
}

func (s *PageService) DeleteMenuItem(ctx context.Context, accountID, title string) error {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteMenuItem(ctx, account.PageSlug, title); err != nil {
		return err
	}

	s.invalidate(ctx, account.PageSlug)
	return nil
}

func (s *PageService) ReorderMenu(ctx context.Context, accountID string, titles []string) error {
	if len(titles) == 0 {
		return apperrors.NewValidationError("titles are required", apperrors.ValidationDetail{
			Field: "titles", Message: "titles must not be empty",
		})
	}

	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateMenuPositions(ctx, account.PageSlug, titles); err != nil {
		return err
	}

	s.invalidate(ctx, account.PageSlug)
	return nil
}

// UpdateProfile saves the page profile. Address and pix key are pro features:
// for non-entitled tenants they are stored blank regardless of input.
func (s *PageService) UpdateProfile(ctx context.Context, accountID string, req dto.UpdateProfileRequest) error {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	if strings.TrimSpace(req.Title) == "" {
		return apperrors.NewValidationError("page title is required", apperrors.ValidationDetail{
			Field: "title", Message: "title must not be blank",
		})
	}

	page := domain.TenantPage{
		Title:    strings.TrimSpace(req.Title),
		Bio:      req.Bio,
		Address:  req.Address,
		WhatsApp: normalizeWhatsApp(req.WhatsApp),
		PixKey:   req.PixKey,
		Theme:    req.Theme,
		IsOpen:   req.IsOpen,
	}

	ent := entitlement.Resolve(account.Plan, account.TrialDeadline, s.now())
	if !ent.ProFeaturesEnabled {
		page.Address = ""
		page.PixKey = ""
	}

	if err := s.repo.UpdateProfile(ctx, account.PageSlug, page); err != nil {
		return err
	}

	s.invalidate(ctx, account.PageSlug)
	return nil
}

// UpdatePlan changes a tenant's plan, super-role only. The repository writes
// both plan snapshots in one transaction.
func (s *PageService) UpdatePlan(ctx context.Context, callerAccountID string, req dto.UpdatePlanRequest) error {
	caller, err := s.repo.FindAccountByID(ctx, callerAccountID)
	if err != nil {
		return err
	}
	if caller.Role != domain.RoleSuper {
		return apperrors.NewForbiddenError("plan changes require the super role")
	}

	target, err := s.repo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return err
	}

	plan := domain.ParsePlan(req.Plan)
	if err := s.repo.UpdatePlan(ctx, target.ID, plan, req.TrialDeadline); err != nil {
		return err
	}

	s.invalidate(ctx, target.PageSlug)
	return nil
}

func (s *PageService) requirePro(ctx context.Context, accountID, denial string) (*domain.Account, error) {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	ent := entitlement.Resolve(account.Plan, account.TrialDeadline, s.now())
	if !ent.ProFeaturesEnabled {
		return nil, apperrors.NewForbiddenError(denial)
	}
	return account, nil
}

func (s *PageService) invalidate(ctx context.Context, slug string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.Key("page", slug)); err != nil {
		s.logger.Warn("page cache invalidation failed", zap.String("slug", slug), zap.Error(err))
	}
}

func menuItemFromRequest(req dto.MenuItemRequest) (domain.MenuItem, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.MenuItem{}, apperrors.NewValidationError("menu item title is required", apperrors.ValidationDetail{
			Field: "title", Message: "title must not be blank",
		})
	}

	price, err := decimal.NewFromString(strings.ReplaceAll(req.Price, ",", "."))
	if err != nil || price.IsNegative() {
		return domain.MenuItem{}, apperrors.NewValidationError("invalid menu item price", apperrors.ValidationDetail{
			Field: "price", Message: "price must be a non-negative number",
		})
	}

	return domain.MenuItem{
		Title:       title,
		Price:       price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
	}, nil
}

// normalizeWhatsApp strips non-digits and prepends the country code the chat
// deep-link expects.
func normalizeWhatsApp(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	number := digits.String()
	if !strings.HasPrefix(number, "55") {
		number = "55" + number
	}
	return number
}

func menuItemDTOs(items []domain.MenuItem) []dto.MenuItemDTO {
	out := make([]dto.MenuItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, dto.MenuItemDTO{
			Title:       item.Title,
			Price:       item.Price.StringFixed(2),
			Description: item.Description,
			ImageURL:    item.ImageURL,
			Category:    item.Category,
			Position:    item.Position,
		})
	}
	return out
}
