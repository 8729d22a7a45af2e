package models

import (
	"errors"
	"net/http"

	"github.com/PxPatel/pair-matching-engine/internal/matching"
)

// ErrorCode represents standard error codes
type ErrorCode string

const (
	ErrInvalidRequest        ErrorCode = "INVALID_REQUEST"
	ErrInvalidOrderType      ErrorCode = "INVALID_ORDER_TYPE"
	ErrInvalidSide           ErrorCode = "INVALID_SIDE"
	ErrInvalidPrice          ErrorCode = "INVALID_PRICE"
	ErrInvalidQuantity       ErrorCode = "INVALID_QUANTITY"
	ErrMissingPrice          ErrorCode = "MISSING_PRICE"
	ErrInvalidMarket         ErrorCode = "INVALID_MARKET"
	ErrUnknownMarket         ErrorCode = "UNKNOWN_MARKET"
	ErrDuplicateMarket       ErrorCode = "DUPLICATE_MARKET"
	ErrUnknownPriceLevel     ErrorCode = "UNKNOWN_PRICE_LEVEL"
	ErrInsufficientLiquidity ErrorCode = "INSUFFICIENT_LIQUIDITY"
	ErrInternalError         ErrorCode = "INTERNAL_ERROR"
)

// APIError represents a structured error response
type APIError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HTTPError wraps an APIError with an HTTP status code
type HTTPError struct {
	StatusCode int
	Error      APIError
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, code ErrorCode, message string, details map[string]interface{}) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Error: APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// Common error constructors

func ErrBadRequest(message string, details map[string]interface{}) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidRequest, message, details)
}

func ErrInvalidOrderTypeError(providedType string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidOrderType,
		"Invalid order type, must be 'limit', 'market' or 'sweep'",
		map[string]interface{}{"provided_value": providedType})
}

func ErrInvalidSideError(providedSide string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidSide,
		"Invalid side, must be 'bid' or 'ask'",
		map[string]interface{}{"provided_value": providedSide})
}

func ErrInvalidQuantityError(size string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidQuantity,
		"Size must be positive",
		map[string]interface{}{"field": "size", "provided_value": size})
}

func ErrMissingPriceError(orderType string) *HTTPError {
	return NewHTTPError(http.StatusUnprocessableEntity, ErrMissingPrice,
		"Price is required for "+orderType+" orders", nil)
}

func ErrInvalidMarketError(provided string, err error) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidMarket,
		"Invalid market, expected BASE-QUOTE",
		map[string]interface{}{"provided_value": provided, "error": err.Error()})
}

func ErrInternal(message string) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, ErrInternalError, message, nil)
}

// FromEngineError maps matching errors onto HTTP errors
func FromEngineError(err error) *HTTPError {
	var liquidity *matching.InsufficientLiquidityError

	switch {
	case errors.As(err, &liquidity):
		return NewHTTPError(http.StatusConflict, ErrInsufficientLiquidity, err.Error(),
			map[string]interface{}{
				"requested": liquidity.Requested.String(),
				"available": liquidity.Available.String(),
				"filled":    liquidity.Filled.String(),
				"unfilled":  liquidity.Unfilled().String(),
			})
	case errors.Is(err, matching.ErrUnknownMarket):
		return NewHTTPError(http.StatusNotFound, ErrUnknownMarket, err.Error(), nil)
	case errors.Is(err, matching.ErrDuplicateMarket):
		return NewHTTPError(http.StatusConflict, ErrDuplicateMarket, err.Error(), nil)
	case errors.Is(err, matching.ErrUnknownPriceLevel):
		return NewHTTPError(http.StatusNotFound, ErrUnknownPriceLevel, err.Error(), nil)
	case errors.Is(err, matching.ErrInvalidPrice):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidPrice, err.Error(), nil)
	case errors.Is(err, matching.ErrInvalidSize):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidQuantity, err.Error(), nil)
	case errors.Is(err, matching.ErrInvalidSide):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidSide, err.Error(), nil)
	default:
		return ErrInternal(err.Error())
	}
}
