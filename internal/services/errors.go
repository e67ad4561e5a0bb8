package services

import "errors"

var (
	// ErrInvalidCredentials is returned on any login failure. It deliberately
	// does not distinguish an unknown login from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrLoginTaken is returned when registering an already-used login.
	ErrLoginTaken = errors.New("login already taken")

	// ErrEmptyCart is returned when placing an order from an empty cart.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrOrderPlacementFailed wraps any failure inside the order placement
	// transaction. When it is returned, nothing was persisted: the order, its
	// lines and the cart are exactly as they were before the attempt.
	ErrOrderPlacementFailed = errors.New("order placement failed")
)
