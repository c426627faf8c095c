package main

import "errors"

// Sentinel errors for command operations
var (
	ErrInputFileNotExist = errors.New("input file does not exist")
	ErrInvalidRowFile    = errors.New("row file must contain a sequence of mappings")
	ErrInvalidFilter     = errors.New("invalid --where expression")
	ErrConfigExists      = errors.New("configuration file already exists")
)
