package models

import (
	"errors"
)

var (
	ErrModelNotFitted     = errors.New("predict called on a model state that was never fitted")
	ErrUnknownModelType   = errors.New("unknown model type")
	ErrInsufficientData   = errors.New("insufficient training data")
	ErrRankDeficient      = errors.New("design matrix is rank deficient")
	ErrInvalidHorizon     = errors.New("forecast horizon must be at least 1")
	ErrNoTrainingMatrix   = errors.New("no training matrix for regressor")
	ErrNoDesignMatrix     = errors.New("no design matrix for inference")
	ErrTargetLenMismatch  = errors.New("target length does not match matrix rows")
	ErrFeatureLenMismatch = errors.New("number of features does not match number of model coefficients")
)
