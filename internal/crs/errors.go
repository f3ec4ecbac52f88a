package crs

import "fmt"

// UnknownCRSError indicates an unrecognized or unsupported CRS identifier.
type UnknownCRSError struct {
	Code string
}

func (e *UnknownCRSError) Error() string {
	return fmt.Sprintf("unknown CRS %q (supported: EPSG:4326, EPSG:3857)", e.Code)
}

// CRSMismatchError indicates an operation between collections in
// different coordinate reference systems.
type CRSMismatchError struct {
	A, B CRS
}

func (e *CRSMismatchError) Error() string {
	return fmt.Sprintf("CRS mismatch: %s vs %s (reproject one side first)", e.A, e.B)
}
