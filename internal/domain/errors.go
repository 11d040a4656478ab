package domain

import "errors"

var (
	ErrSnapshotNotFound = errors.New("usage snapshot file not found")
	ErrCustomerNotFound = errors.New("accounting customer not found")
	ErrSecretNotFound   = errors.New("secret not found")
)
