package settings

import (
	"context"
	"sort"
	"strings"

	"github.com/felixgeelhaar/huddle/internal/identity/domain"
	sharedDomain "github.com/felixgeelhaar/huddle/internal/shared/domain"
)

// Gateway reads and writes the profile on the server.
type Gateway interface {
	GetProfile(ctx context.Context) (domain.Profile, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.Profile, error)
	ListTimezones(ctx context.Context) ([]string, error)
}

// Identity is told when the signed-in profile changes.
type Identity interface {
	Remember(ctx context.Context, profile domain.Profile) error
}

// Service manages the signed-in user's profile settings.
type Service struct {
	gateway  Gateway
	identity Identity
}

// NewService creates a settings service. identity may be nil.
func NewService(gateway Gateway, identity Identity) *Service {
	return &Service{gateway: gateway, identity: identity}
}

// Profile returns the current profile.
func (s *Service) Profile(ctx context.Context) (domain.Profile, error) {
	return s.gateway.GetProfile(ctx)
}

// Update validates and applies a partial profile change. Only the fields
// set on update are sent.
func (s *Service) Update(ctx context.Context, update domain.ProfileUpdate) (domain.Profile, error) {
	if update.IsEmpty() {
		return domain.Profile{}, &sharedDomain.ValidationError{Message: "nothing to update"}
	}

	current, err := s.gateway.GetProfile(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	if _, err := update.Apply(current); err != nil {
		return domain.Profile{}, err
	}

	updated, err := s.gateway.UpdateProfile(ctx, update)
	if err != nil {
		return domain.Profile{}, err
	}
	if s.identity != nil {
		if err := s.identity.Remember(ctx, updated); err != nil {
			return domain.Profile{}, err
		}
	}
	return updated, nil
}

// Timezones returns the zones the server accepts, sorted.
func (s *Service) Timezones(ctx context.Context) ([]string, error) {
	zones, err := s.gateway.ListTimezones(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(zones))
	copy(out, zones)
	sort.Strings(out)
	return out, nil
}

// SearchTimezones returns the zones containing filter, case-insensitively.
func (s *Service) SearchTimezones(ctx context.Context, filter string) ([]string, error) {
	zones, err := s.Timezones(ctx)
	if err != nil {
		return nil, err
	}
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return zones, nil
	}

	var matched []string
	for _, zone := range zones {
		if strings.Contains(strings.ToLower(zone), filter) {
			matched = append(matched, zone)
		}
	}
	return matched, nil
}
