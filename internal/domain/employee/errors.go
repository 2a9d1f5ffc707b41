package employee

import "errors"

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrMissingCardNumber = errors.New("card number is required")
	ErrNotAManager       = errors.New("caller has no manager assignments")
)
