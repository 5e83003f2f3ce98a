package domain

import "errors"

// ErrOrderNotFound is returned by repositories for an unknown order id.
var ErrOrderNotFound = errors.New("order not found")
