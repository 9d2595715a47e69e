package otf_api

import (
	"context"
	"encoding/json"
)

// StudioLocation is the address block attached to a studio. The phone number
// arrives as "phone" on some endpoints and "phoneNumber" on others.
type StudioLocation struct {
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
	PhoneNumber  string
	Latitude     float64
	Longitude    float64
}

func (l *StudioLocation) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}

	if _, err := obj.get(&l.AddressLine1, "line1", "address1", "address", "physicalAddress"); err != nil {
		return err
	}
	if _, err := obj.get(&l.AddressLine2, "line2", "address2", "physicalAddress2"); err != nil {
		return err
	}
	if _, err := obj.get(&l.City, "city", "physicalCity", "suburb"); err != nil {
		return err
	}
	if _, err := obj.get(&l.State, "state", "physicalState", "territory"); err != nil {
		return err
	}
	if _, err := obj.get(&l.PostalCode, "postal_code", "postalCode", "physicalPostalCode"); err != nil {
		return err
	}
	// The country key sometimes carries a currency object instead of a name.
	for _, key := range []string{"country", "physicalCountry"} {
		if raw, ok := obj[key]; ok && len(raw) > 0 && raw[0] == '"' {
			if err := json.Unmarshal(raw, &l.Country); err != nil {
				return &ValidationError{Field: key, Cause: err}
			}
			break
		}
	}
	if _, err := obj.get(&l.PhoneNumber, "phone", "phoneNumber"); err != nil {
		return err
	}
	if _, err := obj.get(&l.Latitude, "latitude"); err != nil {
		return err
	}
	if _, err := obj.get(&l.Longitude, "longitude"); err != nil {
		return err
	}
	return nil
}

// StudioDetail is an immutable snapshot of a studio. Lookups are cached for
// ten minutes keyed by UUID.
type StudioDetail struct {
	StudioUUID   string
	Name         string
	ContactEmail string
	TimeZone     string
	Status       StudioStatus
	Location     StudioLocation

	// Legacy numeric id, still used by some older endpoints.
	StudioID int

	// Distance in miles from the search point, set only by geo search.
	Distance float64

	client *Client
}

func (s *StudioDetail) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}

	if err := obj.require(&s.StudioUUID, "studioUUId"); err != nil {
		return err
	}
	if _, err := obj.get(&s.Name, "studioName", "name"); err != nil {
		return err
	}
	if _, err := obj.get(&s.ContactEmail, "contactEmail", "email"); err != nil {
		return err
	}
	if _, err := obj.get(&s.TimeZone, "timeZone", "time_zone"); err != nil {
		return err
	}
	if _, err := obj.get(&s.Status, "studioStatus"); err != nil {
		return err
	}
	if _, err := obj.get(&s.Location, "studioLocation", "location"); err != nil {
		return err
	}
	if _, err := obj.get(&s.StudioID, "studioId"); err != nil {
		return err
	}
	if _, err := obj.get(&s.Distance, "distance"); err != nil {
		return err
	}
	return nil
}

// IsPlaceholder reports whether this studio was synthesized for a 404.
func (s *StudioDetail) IsPlaceholder() bool {
	return s.Name == studioNotFoundName
}

// AddToFavorites adds the studio to the member's favorites.
func (s *StudioDetail) AddToFavorites(ctx context.Context) error {
	if s.client == nil {
		return &ConfigurationError{Message: "studio is not attached to a client"}
	}
	_, err := s.client.Studios.AddFavorite(ctx, s.StudioUUID)
	return err
}

// RemoveFromFavorites removes the studio from the member's favorites.
func (s *StudioDetail) RemoveFromFavorites(ctx context.Context) error {
	if s.client == nil {
		return &ConfigurationError{Message: "studio is not attached to a client"}
	}
	return s.client.Studios.RemoveFavorite(ctx, s.StudioUUID)
}

// StudioService is a purchasable service offered by a studio. Prices arrive
// as preformatted strings.
type StudioService struct {
	ServiceUUID string `json:"serviceUUId"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	QuantityIn  int    `json:"qty"`
	OnlinePrice string `json:"onlinePrice"`
	TaxRate     string `json:"taxRate"`
	Current     bool   `json:"current"`
	IsDeleted   bool   `json:"isDeleted"`

	Studio *StudioDetail `json:"-"`
}

const studioNotFoundName = "Studio Not Found"

// newStudioNotFound builds the placeholder returned when the studio detail
// endpoint 404s, so list-rendering callers do not need a special case.
func newStudioNotFound(c *Client, studioUUID string) *StudioDetail {
	return &StudioDetail{
		StudioUUID: studioUUID,
		Name:       studioNotFoundName,
		Status:     StudioStatusUnknown,
		client:     c,
	}
}

var _ json.Unmarshaler = (*StudioDetail)(nil)
