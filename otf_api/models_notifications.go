package otf_api

// SMSNotificationSettings mirrors the SMS preferences endpoint. Pointers keep
// "not reported" distinct from an explicit false.
type SMSNotificationSettings struct {
	PromotionalOptIn   *bool `json:"isPromotionalSmsOptIn"`
	TransactionalOptIn *bool `json:"isTransactionalSmsOptIn"`
}

// EmailNotificationSettings mirrors the email preferences endpoint.
type EmailNotificationSettings struct {
	Email              string `json:"email"`
	SystemOptIn        *bool  `json:"isSystemEmailOptIn"`
	PromotionalOptIn   *bool  `json:"isPromotionalEmailOptIn"`
	TransactionalOptIn *bool  `json:"isTransactionalEmailOptIn"`
}

func boolOr(override *bool, current *bool) bool {
	if override != nil {
		return *override
	}
	if current != nil {
		return *current
	}
	return false
}
