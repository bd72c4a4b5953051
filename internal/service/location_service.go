package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
	"github.com/noah-isme/teacherhub-gateway/pkg/postal"
	"github.com/noah-isme/teacherhub-gateway/pkg/validation"
)

// PostalDirectory resolves pincodes and post office names.
type PostalDirectory interface {
	ByPincode(ctx context.Context, code string) (*postal.Place, error)
	ByPincodeInState(ctx context.Context, state, code string) (*postal.Place, error)
	ByBranchName(ctx context.Context, name string) ([]postal.PostOffice, error)
}

// LocationService wraps the postal directory with validation and error mapping.
type LocationService struct {
	directory PostalDirectory
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewLocationService constructs a LocationService.
func NewLocationService(directory PostalDirectory, metrics *MetricsService, logger *zap.Logger) *LocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationService{directory: directory, metrics: metrics, logger: logger}
}

// Resolve looks up a pincode once. Malformed pincodes are rejected before
// any request. A non-empty state routes the lookup through the state endpoint.
func (s *LocationService) Resolve(ctx context.Context, pincode, state string) (*models.Location, error) {
	pincode = strings.TrimSpace(pincode)
	if !validation.IsPincode(pincode) {
		msg := "pincode must be a 6 digit pincode"
		return nil, appErrors.WithFields(appErrors.ErrValidation, msg, map[string]string{"pincode": msg})
	}

	operation := "pincode"
	start := time.Now()
	var (
		place *postal.Place
		err   error
	)
	if strings.TrimSpace(state) != "" {
		operation = "pincode_state"
		place, err = s.directory.ByPincodeInState(ctx, state, pincode)
	} else {
		place, err = s.directory.ByPincode(ctx, pincode)
	}
	s.metrics.ObserveUpstream("postal", operation, postalStatus(err), time.Since(start))

	if err != nil {
		if errors.Is(err, postal.ErrStateEndpointMissing) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "state-specific lookup is not configured")
		}
		s.logger.Info("pincode lookup failed", zap.String("pincode", pincode), zap.Error(err))
		msg := "Could not find a location for this pincode"
		if !errors.Is(err, postal.ErrNoRecords) {
			msg = "Pincode lookup is unavailable, please try again"
		}
		lookupErr := appErrors.WithFields(appErrors.ErrLookupFailed, msg, map[string]string{"pincode": msg})
		lookupErr.Err = err
		return nil, lookupErr
	}

	return &models.Location{
		Pincode:  pincode,
		State:    place.State,
		City:     place.City,
		Areas:    append([]string(nil), place.Areas...),
		Resolved: true,
	}, nil
}

// PostOffices searches post offices by branch name.
func (s *LocationService) PostOffices(ctx context.Context, name string) ([]postal.PostOffice, error) {
	name = strings.TrimSpace(name)
	if len(name) < 3 {
		msg := "name must be at least 3 characters"
		return nil, appErrors.WithFields(appErrors.ErrValidation, msg, map[string]string{"name": msg})
	}
	start := time.Now()
	offices, err := s.directory.ByBranchName(ctx, name)
	s.metrics.ObserveUpstream("postal", "postoffice", postalStatus(err), time.Since(start))
	if err != nil {
		if errors.Is(err, postal.ErrNoRecords) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no post office matches "+name)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "post office search is unavailable")
	}
	return offices, nil
}

func postalStatus(err error) int {
	var statusErr *postal.StatusError
	switch {
	case err == nil, errors.Is(err, postal.ErrNoRecords):
		return 200
	case errors.As(err, &statusErr):
		return statusErr.StatusCode
	default:
		return 0
	}
}
