package demandcast

import (
	"errors"

	"github.com/demandcast/demandcast/feature"
	"github.com/demandcast/demandcast/featureset"
	"github.com/demandcast/demandcast/models"
	"github.com/demandcast/demandcast/split"
	"github.com/demandcast/demandcast/timedataset"
)

// Error codes surfaced to the serving layer alongside the human message.
const (
	CodeConfiguration    = "configuration_error"
	CodeInsufficientData = "insufficient_data"
	CodeModelNotFitted   = "model_not_fitted"
	CodeUnknownModelType = "unknown_model_type"
	CodeLeakageInvariant = "leakage_invariant"
	CodeInvalidSeries    = "invalid_series"
	CodeInternal         = "internal_error"
)

// Code maps an engine error to its stable machine-readable code. Unwrapped
// or unexpected errors map to internal_error.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, split.ErrLeakageInvariant):
		return CodeLeakageInvariant
	case errors.Is(err, models.ErrUnknownModelType):
		return CodeUnknownModelType
	case errors.Is(err, models.ErrModelNotFitted):
		return CodeModelNotFitted
	case errors.Is(err, models.ErrInsufficientData),
		errors.Is(err, models.ErrRankDeficient):
		return CodeInsufficientData
	case errors.Is(err, split.ErrInvalidConfig),
		errors.Is(err, split.ErrSeriesTooShort),
		errors.Is(err, split.ErrUnknownStrategy),
		errors.Is(err, featureset.ErrInvalidLag),
		errors.Is(err, featureset.ErrInvalidWindow),
		errors.Is(err, featureset.ErrUnknownImputePolicy),
		errors.Is(err, feature.ErrUnknownAggType),
		errors.Is(err, models.ErrInvalidHorizon),
		errors.Is(err, ErrUnsafePredictFeatures):
		return CodeConfiguration
	case errors.Is(err, timedataset.ErrNoObservations),
		errors.Is(err, timedataset.ErrNonMonotonic),
		errors.Is(err, timedataset.ErrDatasetLenMismatch),
		errors.Is(err, ErrNoSeries):
		return CodeInvalidSeries
	}
	return CodeInternal
}
