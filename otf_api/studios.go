package otf_api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

const (
	geoSearchPageSize    = 100
	geoDefaultDistance   = 50
	geoMaxDistanceMiles  = 250
	studioDetailCacheTag = "studio_detail"
)

// StudiosAPI groups the studio lookup and favorites operations.
type StudiosAPI struct {
	client *Client
}

// Detail returns detailed information about a studio. An empty UUID defaults
// to the member's home studio. Results are cached for ten minutes; a studio
// that does not exist yields a placeholder instead of an error, so rendering
// a list of studios needs no special case.
func (s *StudiosAPI) Detail(ctx context.Context, studioUUID string) (*StudioDetail, error) {
	studioUUID, err := s.resolveUUID(ctx, studioUUID)
	if err != nil {
		return nil, err
	}

	raw, err := s.detailRaw(ctx, studioUUID)
	if err != nil {
		var notFound *ResourceNotFoundError
		if errors.As(err, &notFound) {
			return newStudioNotFound(s.client, studioUUID), nil
		}
		return nil, err
	}

	return s.decodeDetail(raw)
}

func (s *StudiosAPI) resolveUUID(ctx context.Context, studioUUID string) (string, error) {
	if studioUUID == "" {
		return s.client.homeStudioUUID(ctx)
	}
	if _, err := uuid.Parse(studioUUID); err != nil {
		return "", &ValidationError{Field: "studioUUID", Cause: err}
	}
	return studioUUID, nil
}

func (s *StudiosAPI) detailRaw(ctx context.Context, studioUUID string) (json.RawMessage, error) {
	return s.client.cache.GetOrCompute("studio_detail:"+studioUUID, detailCacheTTL, studioDetailCacheTag,
		func() (json.RawMessage, error) {
			resp, err := s.client.defaultRequest(ctx, http.MethodGet, "/mobile/v1/studios/"+studioUUID, nil, nil)
			if err != nil {
				return nil, err
			}
			return envelope(resp, "data")
		})
}

func (s *StudiosAPI) decodeDetail(raw json.RawMessage) (*StudioDetail, error) {
	var detail StudioDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, err
	}
	detail.client = s.client
	return &detail, nil
}

// detailMap fetches full details for each distinct studio UUID with the
// bounded worker pool. Unknown studios come back as placeholders, matching
// Detail.
func (s *StudiosAPI) detailMap(ctx context.Context, studioUUIDs []string) (map[string]*StudioDetail, error) {
	return fetchAll(ctx, studioUUIDs, func(ctx context.Context, studioUUID string) (*StudioDetail, error) {
		return s.Detail(ctx, studioUUID)
	})
}

// SearchByGeo searches for studios around a point, paginating until the
// server-reported total is accumulated. Nil latitude/longitude default to
// the member's home studio location. Distance is capped at 250 miles; zero
// means the default 50.
func (s *StudiosAPI) SearchByGeo(ctx context.Context, latitude, longitude *float64, distanceMiles int) ([]*StudioDetail, error) {
	if distanceMiles <= 0 {
		distanceMiles = geoDefaultDistance
	}
	if distanceMiles > geoMaxDistanceMiles {
		distanceMiles = geoMaxDistanceMiles
	}

	if latitude == nil || longitude == nil {
		home, err := s.Detail(ctx, "")
		if err != nil {
			return nil, err
		}
		if latitude == nil {
			latitude = &home.Location.Latitude
		}
		if longitude == nil {
			longitude = &home.Location.Longitude
		}
	}

	seen := make(map[string]bool)
	var results []*StudioDetail

	for pageIndex := 1; ; pageIndex++ {
		resp, err := s.client.defaultRequest(ctx, http.MethodGet, "/mobile/v1/studios", params{
			"latitude":  *latitude,
			"longitude": *longitude,
			"distance":  distanceMiles,
			"pageIndex": pageIndex,
			"pageSize":  geoSearchPageSize,
		}, nil)
		if err != nil {
			return nil, err
		}

		var page struct {
			Data struct {
				Studios    []json.RawMessage `json:"studios"`
				Pagination struct {
					TotalCount int `json:"totalCount"`
				} `json:"pagination"`
			} `json:"data"`
		}
		if err := json.Unmarshal(resp, &page); err != nil {
			return nil, err
		}

		for _, raw := range page.Data.Studios {
			detail, err := s.decodeDetail(raw)
			if err != nil {
				return nil, err
			}
			if !seen[detail.StudioUUID] {
				seen[detail.StudioUUID] = true
				results = append(results, detail)
			}
		}

		if len(results) >= page.Data.Pagination.TotalCount || len(page.Data.Studios) == 0 {
			break
		}
	}

	return results, nil
}

// Favorites lists the member's favorite studios as full detail snapshots.
func (s *StudiosAPI) Favorites(ctx context.Context) ([]*StudioDetail, error) {
	resp, err := s.client.defaultRequest(ctx, http.MethodGet,
		"/member/members/"+s.client.MemberUUID()+"/favorite-studios", nil, nil)
	if err != nil {
		return nil, err
	}

	data, err := envelope(resp, "data")
	if err != nil {
		return nil, err
	}

	var stubs []struct {
		StudioUUID string `json:"studioUUId"`
	}
	if err := json.Unmarshal(data, &stubs); err != nil {
		return nil, err
	}

	studios := make([]*StudioDetail, 0, len(stubs))
	for _, stub := range stubs {
		detail, err := s.Detail(ctx, stub.StudioUUID)
		if err != nil {
			return nil, err
		}
		studios = append(studios, detail)
	}
	return studios, nil
}

// AddFavorite adds one or more studios to the member's favorites and returns
// the new favorites reported by the server.
func (s *StudiosAPI) AddFavorite(ctx context.Context, studioUUIDs ...string) ([]*StudioDetail, error) {
	if len(studioUUIDs) == 0 {
		return nil, &ValidationError{Field: "studioUUIDs"}
	}
	for _, id := range studioUUIDs {
		if _, err := uuid.Parse(id); err != nil {
			return nil, &ValidationError{Field: "studioUUIDs", Cause: err}
		}
	}

	resp, err := s.client.defaultRequest(ctx, http.MethodPost, "/mobile/v1/members/favorite-studios", nil,
		map[string]any{"studioUUIds": studioUUIDs})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}

	data, err := envelope(resp, "data")
	if err != nil {
		return nil, err
	}

	var added struct {
		Studios []json.RawMessage `json:"studios"`
	}
	if err := json.Unmarshal(data, &added); err != nil {
		return nil, err
	}

	studios := make([]*StudioDetail, 0, len(added.Studios))
	for _, raw := range added.Studios {
		detail, err := s.decodeDetail(raw)
		if err != nil {
			return nil, err
		}
		studios = append(studios, detail)
	}
	return studios, nil
}

// RemoveFavorite removes one or more studios from the member's favorites.
func (s *StudiosAPI) RemoveFavorite(ctx context.Context, studioUUIDs ...string) error {
	if len(studioUUIDs) == 0 {
		return &ValidationError{Field: "studioUUIDs"}
	}
	_, err := s.client.defaultRequest(ctx, http.MethodDelete, "/mobile/v1/members/favorite-studios", nil,
		map[string]any{"studioUUIds": studioUUIDs})
	return err
}

// Services lists the services offered by a studio. An empty UUID defaults to
// the member's home studio.
func (s *StudiosAPI) Services(ctx context.Context, studioUUID string) ([]*StudioService, error) {
	studioUUID, err := s.resolveUUID(ctx, studioUUID)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.defaultRequest(ctx, http.MethodGet, "/member/studios/"+studioUUID+"/services", nil, nil)
	if err != nil {
		return nil, err
	}

	data, err := envelope(resp, "data")
	if err != nil {
		return nil, err
	}

	var services []*StudioService
	if err := json.Unmarshal(data, &services); err != nil {
		return nil, err
	}

	detail, err := s.Detail(ctx, studioUUID)
	if err != nil {
		return nil, err
	}
	for _, svc := range services {
		svc.Studio = detail
	}
	return services, nil
}
