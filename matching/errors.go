package matching

import "errors"

var (
	ErrSymbolNotFound        = errors.New("matching: symbol not found")
	ErrOrderNotFound         = errors.New("matching: order not found")
	ErrInvalidPrice          = errors.New("matching: invalid price")
	ErrInvalidAmount         = errors.New("matching: invalid amount")
	ErrInvalidSide           = errors.New("matching: invalid side")
	ErrInsufficientLiquidity = errors.New("matching: insufficient liquidity")
	ErrDatabase              = errors.New("matching: database error")
	ErrInternal              = errors.New("matching: internal error")
)
