package controller

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"
)

type errorResponse struct {
	TraceID string                       `json:"traceId"`
	Code    string                       `json:"code"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func handleError(w http.ResponseWriter, logger *zap.Logger, traceID string, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		writeJSON(w, logger, http.StatusBadRequest, errorResponse{
			TraceID: traceID, Code: "VALIDATION_ERROR", Message: ve.Message, Details: ve.Details,
		})
		return
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		writeJSON(w, logger, http.StatusNotFound, errorResponse{TraceID: traceID, Code: "NOT_FOUND", Message: err.Error()})
		return
	}
	if _, ok := apperrors.IsForbiddenError(err); ok {
		writeJSON(w, logger, http.StatusForbidden, errorResponse{TraceID: traceID, Code: "FORBIDDEN", Message: err.Error()})
		return
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		writeJSON(w, logger, http.StatusConflict, errorResponse{TraceID: traceID, Code: "CONFLICT", Message: err.Error()})
		return
	}
	if _, ok := apperrors.IsDeadlockError(err); ok {
		writeJSON(w, logger, http.StatusConflict, errorResponse{TraceID: traceID, Code: "DEADLOCK", Message: err.Error()})
		return
	}

	logger.Error("unexpected error", zap.String("traceId", traceID), zap.Error(err))
	writeJSON(w, logger, http.StatusInternalServerError, errorResponse{
		TraceID: traceID, Code: "INTERNAL_ERROR", Message: "an unexpected error occurred",
	})
}

func requireAccount(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	accountID := r.Header.Get("X-Account-ID")
	if accountID == "" {
		writeJSON(w, logger, http.StatusUnauthorized, errorResponse{
			Code:    "UNAUTHORIZED",
			Message: "missing account identity",
		})
		return "", false
	}
	return accountID, true
}

func orderItemDTOs(items []domain.OrderItem) []dto.OrderItemDTO {
	out := make([]dto.OrderItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, dto.OrderItemDTO{
			Title:     item.Title,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal().StringFixed(2),
		})
	}
	return out
}

func orderDTO(o *domain.Order) dto.OrderDTO {
	return dto.OrderDTO{
		ID:              o.ID,
		TenantSlug:      o.TenantSlug,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		Items:           orderItemDTOs(o.Items),
		Subtotal:        o.Subtotal.StringFixed(2),
		CouponCode:      o.CouponCode,
		Discount:        o.Discount.StringFixed(2),
		Total:           o.Total.StringFixed(2),
		FulfillmentMode: string(o.FulfillmentMode),
		DeliveryAddress: o.DeliveryAddress,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt,
	}
}

func trackingDTO(o *domain.Order) dto.TrackingDTO {
	return dto.TrackingDTO{
		ID:              o.ID,
		TenantSlug:      o.TenantSlug,
		CustomerName:    o.CustomerName,
		Items:           orderItemDTOs(o.Items),
		Total:           o.Total.StringFixed(2),
		FulfillmentMode: string(o.FulfillmentMode),
		DeliveryAddress: o.DeliveryAddress,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt,
	}
}
