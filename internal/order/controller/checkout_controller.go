package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"comanda/internal/cart"
	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"
	"comanda/internal/order/service"
	"comanda/internal/order/usecase"
)

const sessionHeader = "X-Cart-Session"

type SubmitOrderUseCase interface {
	Submit(ctx context.Context, slug string, c *cart.Cart, sub service.Submission) (*usecase.SubmitResult, error)
}

// CheckoutController owns the shopper-facing surface: the session cart and
// the checkout itself.
type CheckoutController struct {
	useCase SubmitOrderUseCase
	carts   *cart.Store
	logger  *zap.Logger
}

func NewCheckoutController(useCase SubmitOrderUseCase, carts *cart.Store, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{useCase: useCase, carts: carts, logger: logger}
}

func (c *CheckoutController) AddCartItem(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	slug := chi.URLParam(r, "slug")

	var req dto.AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, c.logger, http.StatusBadRequest, errorResponse{
			TraceID: traceID, Code: "VALIDATION_ERROR", Message: "request body must be valid JSON",
		})
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		handleError(w, c.logger, traceID, apperrors.NewValidationError("item title is required", apperrors.ValidationDetail{
			Field: "title", Message: "title must not be blank",
		}))
		return
	}

	unitPrice, err := decimal.NewFromString(strings.ReplaceAll(req.UnitPrice, ",", "."))
	if err != nil || unitPrice.IsNegative() {
		handleError(w, c.logger, traceID, apperrors.NewValidationError("invalid unit price", apperrors.ValidationDetail{
			Field: "unitPrice", Message: "unitPrice must be a non-negative number",
		}))
		return
	}

	token := c.sessionToken(r)
	shoppingCart := c.carts.Get(cartKey(slug, token))
	shoppingCart.Add(title, unitPrice)

	c.writeCart(w, token, shoppingCart)
}

func (c *CheckoutController) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	title, err := url.PathUnescape(chi.URLParam(r, "title"))
	if err != nil {
		title = chi.URLParam(r, "title")
	}

	slug := chi.URLParam(r, "slug")
	token := c.sessionToken(r)
	shoppingCart := c.carts.Get(cartKey(slug, token))
	shoppingCart.Remove(title)

	c.writeCart(w, token, shoppingCart)
}

func (c *CheckoutController) GetCart(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	token := c.sessionToken(r)
	c.writeCart(w, token, c.carts.Get(cartKey(slug, token)))
}

func (c *CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))
	slug := chi.URLParam(r, "slug")

	var req dto.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeJSON(w, c.logger, http.StatusBadRequest, errorResponse{
			TraceID: traceID, Code: "VALIDATION_ERROR", Message: "request body must be valid JSON",
		})
		return
	}

	mode := domain.FulfillmentMode(req.FulfillmentMode)
	if !mode.Valid() {
		handleError(w, c.logger, traceID, apperrors.NewValidationError("invalid fulfillment mode", apperrors.ValidationDetail{
			Field: "fulfillmentMode", Message: "fulfillmentMode must be delivery or pickup",
		}))
		return
	}

	token := c.sessionToken(r)
	key := cartKey(slug, token)
	shoppingCart := c.carts.Get(key)

	result, err := c.useCase.Submit(r.Context(), slug, shoppingCart, service.Submission{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerRef:     req.CustomerRef,
		FulfillmentMode: mode,
		Street:          req.Address.Street,
		Number:          req.Address.Number,
		Neighborhood:    req.Address.Neighborhood,
		Complement:      req.Address.Complement,
		CouponCode:      req.CouponCode,
	})
	if err != nil {
		handleError(w, c.logger, traceID, err)
		return
	}

	// The cart is cleared exactly once, only after a successful submission.
	shoppingCart.Clear()
	c.carts.Delete(key)

	logger.Info("checkout completed",
		zap.String("orderId", result.Order.ID),
		zap.String("tenant", slug),
	)

	writeJSON(w, c.logger, http.StatusCreated, dto.CheckoutResponse{
		TraceID:      traceID,
		Order:        orderDTO(result.Order),
		Message:      result.Message,
		WhatsAppLink: result.WhatsAppLink,
		TrackingURL:  result.TrackingURL,
	})
}

// sessionToken reads the shopper's cart session header, minting a fresh token
// when absent. The token is echoed back in every cart response.
func (c *CheckoutController) sessionToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(sessionHeader)); token != "" {
		return token
	}
	return uuid.New().String()
}

func cartKey(slug, token string) string {
	return slug + ":" + token
}

func (c *CheckoutController) writeCart(w http.ResponseWriter, token string, shoppingCart *cart.Cart) {
	lines := shoppingCart.Items()
	out := dto.CartDTO{
		SessionToken: token,
		Lines:        make([]dto.CartLineDTO, 0, len(lines)),
		Units:        shoppingCart.Units(),
		Subtotal:     shoppingCart.Subtotal().StringFixed(2),
	}
	for _, line := range lines {
		out.Lines = append(out.Lines, dto.CartLineDTO{
			Title:     line.Title,
			UnitPrice: line.UnitPrice.StringFixed(2),
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal().StringFixed(2),
		})
	}

	w.Header().Set(sessionHeader, token)
	writeJSON(w, c.logger, http.StatusOK, out)
}
