package expenses

import "errors"

var (
	ErrExpenseNotFound   = errors.New("expense not found")
	ErrNotExpenseAuthor  = errors.New("only the author can delete an expense")
	ErrFutureExpenseDate = errors.New("expense date cannot be in the future")
)
