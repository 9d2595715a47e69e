package otf_api

import (
	"context"
	"encoding/json"
	"net/http"
)

const memberDetailCacheTag = "member_detail"

// MembersAPI groups the member profile and preferences operations.
type MembersAPI struct {
	client *Client
}

// detailRaw returns the raw member detail payload, cached for ten minutes.
// Mutations evict the cache by tag.
func (a *MembersAPI) detailRaw(ctx context.Context) (json.RawMessage, error) {
	return a.client.cache.GetOrCompute("member_detail:"+a.client.MemberUUID(), detailCacheTTL, memberDetailCacheTag,
		func() (json.RawMessage, error) {
			resp, err := a.client.defaultRequest(ctx, http.MethodGet,
				"/member/members/"+a.client.MemberUUID(),
				params{"include": "memberAddresses,memberClassSummary"}, nil)
			if err != nil {
				return nil, err
			}
			return envelope(resp, "data")
		})
}

// Detail returns the authenticated member's profile, with the full home
// studio snapshot substituted for the endpoint's stub.
func (a *MembersAPI) Detail(ctx context.Context) (*MemberDetail, error) {
	raw, err := a.detailRaw(ctx)
	if err != nil {
		return nil, err
	}

	var detail MemberDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, err
	}

	if detail.HomeStudio != nil {
		home, err := a.client.Studios.Detail(ctx, detail.HomeStudio.StudioUUID)
		if err != nil {
			return nil, err
		}
		detail.HomeStudio = home
	}

	detail.client = a.client
	return &detail, nil
}

// UpdateName changes the member's name. Empty arguments keep the current
// value; when nothing would change, the current detail is returned without a
// request. A successful update evicts the cached member detail.
func (a *MembersAPI) UpdateName(ctx context.Context, firstName, lastName string) (*MemberDetail, error) {
	current, err := a.Detail(ctx)
	if err != nil {
		return nil, err
	}

	if firstName == "" && lastName == "" {
		a.client.logger.Warn("no names provided, nothing to update")
		return current, nil
	}
	if firstName == "" {
		firstName = current.FirstName
	}
	if lastName == "" {
		lastName = current.LastName
	}
	if firstName == current.FirstName && lastName == current.LastName {
		a.client.logger.Warn("no changes to names, nothing to update")
		return current, nil
	}

	a.client.cache.InvalidateTag(memberDetailCacheTag)

	resp, err := a.client.defaultRequest(ctx, http.MethodPut,
		"/member/members/"+a.client.MemberUUID(), nil,
		map[string]any{"firstName": firstName, "lastName": lastName})
	if err != nil {
		return nil, err
	}

	data, err := envelope(resp, "data")
	if err != nil {
		return nil, err
	}

	var detail MemberDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, err
	}
	detail.client = a.client
	return &detail, nil
}

// Membership returns the member's membership record.
func (a *MembersAPI) Membership(ctx context.Context) (*MemberMembership, error) {
	resp, err := a.client.defaultRequest(ctx, http.MethodGet,
		"/member/members/"+a.client.MemberUUID()+"/memberships", nil, nil)
	if err != nil {
		return nil, err
	}

	data, err := envelope(resp, "data")
	if err != nil {
		return nil, err
	}

	var membership MemberMembership
	if err := json.Unmarshal(data, &membership); err != nil {
		return nil, err
	}
	return &membership, nil
}

// Purchases returns the member's purchases, monthly subscriptions and class
// packs included, with full studio snapshots substituted for the stubs.
func (a *MembersAPI) Purchases(ctx context.Context) ([]*MemberPurchase, error) {
	resp, err := a.client.defaultRequest(ctx, http.MethodGet,
		"/member/members/"+a.client.MemberUUID()+"/purchases", nil, nil)
	if err != nil {
		return nil, err
	}

	data, err := envelope(resp, "data")
	if err != nil {
		return nil, err
	}

	var purchases []*MemberPurchase
	if err := json.Unmarshal(data, &purchases); err != nil {
		return nil, err
	}

	for _, p := range purchases {
		if p.Studio == nil {
			continue
		}
		detail, err := a.client.Studios.Detail(ctx, p.Studio.StudioUUID)
		if err != nil {
			return nil, err
		}
		p.Studio = detail
	}

	return purchases, nil
}

// SMSNotificationSettings returns the member's SMS preferences, looked up by
// the phone number on the member's profile.
func (a *MembersAPI) SMSNotificationSettings(ctx context.Context) (*SMSNotificationSettings, error) {
	detail, err := a.Detail(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.defaultRequest(ctx, http.MethodGet, "/sms/v1/preferences",
		params{"phoneNumber": detail.PhoneNumber}, nil)
	if err != nil {
		return nil, err
	}

	data, err := envelope(resp, "data")
	if err != nil {
		return nil, err
	}

	var settings SMSNotificationSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSMSNotificationSettings updates the member's SMS preferences. Nil
// arguments keep the current value. The update response carries nothing
// useful, so the settings are fetched again and returned.
func (a *MembersAPI) UpdateSMSNotificationSettings(ctx context.Context, promotional, transactional *bool) (*SMSNotificationSettings, error) {
	current, err := a.SMSNotificationSettings(ctx)
	if err != nil {
		return nil, err
	}

	detail, err := a.Detail(ctx)
	if err != nil {
		return nil, err
	}

	_, err = a.client.defaultRequest(ctx, http.MethodPost, "/sms/v1/preferences", nil, map[string]any{
		"promosms":         boolOr(promotional, current.PromotionalOptIn),
		"transactionalsms": boolOr(transactional, current.TransactionalOptIn),
		"source":           "OTF",
		"phoneNumber":      detail.PhoneNumber,
	})
	if err != nil {
		return nil, err
	}

	return a.SMSNotificationSettings(ctx)
}

// EmailNotificationSettings returns the member's email preferences, looked
// up by the email on the member's profile.
func (a *MembersAPI) EmailNotificationSettings(ctx context.Context) (*EmailNotificationSettings, error) {
	detail, err := a.Detail(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.defaultRequest(ctx, http.MethodGet, "/otfmailing/v2/preferences",
		params{"email": detail.Email}, nil)
	if err != nil {
		return nil, err
	}

	data, err := envelope(resp, "data")
	if err != nil {
		return nil, err
	}

	var settings EmailNotificationSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateEmailNotificationSettings updates the member's email preferences.
// Nil arguments keep the current value; the authoritative settings are
// fetched again after the update.
func (a *MembersAPI) UpdateEmailNotificationSettings(ctx context.Context, promotional, transactional *bool) (*EmailNotificationSettings, error) {
	current, err := a.EmailNotificationSettings(ctx)
	if err != nil {
		return nil, err
	}

	detail, err := a.Detail(ctx)
	if err != nil {
		return nil, err
	}

	_, err = a.client.defaultRequest(ctx, http.MethodPost, "/otfmailing/v2/preferences", nil, map[string]any{
		"promotionalEmail":   boolOr(promotional, current.PromotionalOptIn),
		"transactionalEmail": boolOr(transactional, current.TransactionalOptIn),
		"source":             "OTF",
		"email":              detail.Email,
	})
	if err != nil {
		return nil, err
	}

	return a.EmailNotificationSettings(ctx)
}
