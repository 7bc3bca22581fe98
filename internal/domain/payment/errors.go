package payment

import "errors"

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrGateway             = errors.New("payment provider unavailable")
)
