package tinydb

import "github.com/pkg/errors"

var ErrInvalidArgument = errors.New("invalid argument")
var ErrMalformedEncoding = errors.New("store contents could not be decoded")
var ErrCorruptedStore = errors.New("store contents have an invalid shape")
var ErrNotFound = errors.New("record not found")
var ErrIdConflict = errors.New("record id conflict")
var ErrIOFailure = errors.New("store i/o failed")
var ErrDatabaseAlreadyClosed = errors.New("database already closed")
