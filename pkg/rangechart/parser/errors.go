package parser

import "errors"

// ErrInvalidReference indicates a malformed A1 range reference.
var ErrInvalidReference = errors.New("invalid range reference")

// ErrEmptySheet indicates a sheet without a table-like block of data.
var ErrEmptySheet = errors.New("no table found on sheet")
