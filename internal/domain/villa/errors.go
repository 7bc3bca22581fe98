package villa

import "errors"

var (
	ErrVillaNotFound = errors.New("villa not found")
	ErrVillaExists   = errors.New("villa with this id already exists")
	ErrInvalidImage  = errors.New("invalid villa image")
)
