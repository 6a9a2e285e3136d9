package quote

import "errors"

var (
	ErrNoQuote          = errors.New("no quote available")
	ErrSameToken        = errors.New("from and to tokens must differ")
	ErrAmbiguousRequest = errors.New("exactly one of input or output amount is required")
	ErrInvalidAmount    = errors.New("invalid amount")
)
