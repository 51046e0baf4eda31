package repository

import "errors"

var (
	ErrUnsupportedMetric = errors.New("metric not supported by this index backend")
	ErrDimensionMismatch = errors.New("vector dimension does not match index")
)
