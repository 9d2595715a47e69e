package otf_api

import (
	"context"
)

// MemberProfile holds the heart-rate configuration shown in the app.
type MemberProfile struct {
	UnitOfMeasure string `json:"unitOfMeasure"`
	MaxHRType     string `json:"maxHrType"`
	ManualMaxHR   int    `json:"manualMaxHr"`
	FormulaMaxHR  int    `json:"formulaMaxHr"`
	AutomatedHR   int    `json:"automatedHr"`
}

// MemberClassSummary is the attendance summary attached to member detail.
type MemberClassSummary struct {
	TotalClassesBooked   int        `json:"totalClassesBooked"`
	TotalClassesAttended int        `json:"totalClassesAttended"`
	TotalIntroClasses    int        `json:"totalIntro"`
	TotalClassesUsedHRM  int        `json:"totalClassesUsedHRM"`
	TotalStudiosVisited  int        `json:"totalStudiosVisited"`
	FirstVisitDate       *LocalTime `json:"firstVisitDate"`
	LastClassVisitedDate *LocalTime `json:"lastClassVisitedDate"`
	LastClassBookedDate  *LocalTime `json:"lastClassBookedDate"`
}

// MemberDetail is the authenticated member's profile. The thin home-studio
// stub the endpoint returns is replaced with a full StudioDetail snapshot
// before the value is handed to the caller.
type MemberDetail struct {
	MemberUUID        string
	FirstName         string
	LastName          string
	Email             string
	PhoneNumber       string
	StudioDisplayName string
	BirthDay          string
	Gender            string
	Locale            string

	// Legacy numeric id, kept for the older endpoints that still want it.
	MemberID int

	HomeStudio   *StudioDetail
	Profile      MemberProfile
	ClassSummary *MemberClassSummary

	client *Client
}

func (m *MemberDetail) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}

	if err := obj.require(&m.MemberUUID, "memberUUId"); err != nil {
		return err
	}
	if _, err := obj.get(&m.FirstName, "firstName"); err != nil {
		return err
	}
	if _, err := obj.get(&m.LastName, "lastName"); err != nil {
		return err
	}
	if _, err := obj.get(&m.Email, "email"); err != nil {
		return err
	}
	if _, err := obj.get(&m.PhoneNumber, "phoneNumber", "phone"); err != nil {
		return err
	}
	if _, err := obj.get(&m.StudioDisplayName, "userName"); err != nil {
		return err
	}
	if _, err := obj.get(&m.BirthDay, "birthDay"); err != nil {
		return err
	}
	if _, err := obj.get(&m.Gender, "gender"); err != nil {
		return err
	}
	if _, err := obj.get(&m.Locale, "locale"); err != nil {
		return err
	}
	if _, err := obj.get(&m.MemberID, "memberId"); err != nil {
		return err
	}
	if _, err := obj.get(&m.HomeStudio, "homeStudio"); err != nil {
		return err
	}
	if _, err := obj.get(&m.Profile, "memberProfile"); err != nil {
		return err
	}
	if _, err := obj.get(&m.ClassSummary, "memberClassSummary"); err != nil {
		return err
	}
	return nil
}

// UpdateName changes the member's name through the client that produced this
// detail and refreshes the local copy from the response.
func (m *MemberDetail) UpdateName(ctx context.Context, firstName, lastName string) error {
	if m.client == nil {
		return &ConfigurationError{Message: "member detail is not attached to a client"}
	}
	updated, err := m.client.Members.UpdateName(ctx, firstName, lastName)
	if err != nil {
		return err
	}
	m.FirstName = updated.FirstName
	m.LastName = updated.LastName
	return nil
}

// MemberMembership is the member's membership record.
type MemberMembership struct {
	MemberMembershipUUID string     `json:"memberMembershipUUId"`
	MembershipName       string     `json:"name"`
	Status               string     `json:"status"`
	StartDate            *LocalTime `json:"startDate"`
	EndDate              *LocalTime `json:"endDate"`
	ClassCount           int        `json:"count"`
	ClassesRemaining     int        `json:"remaining"`
}

// MemberPurchase is a single purchase (subscription or class pack). The thin
// studio stub is replaced with a full StudioDetail before return.
type MemberPurchase struct {
	MemberPurchaseUUID string
	Name               string
	Price              string
	Status             string
	PurchaseDate       *LocalTime
	Studio             *StudioDetail
}

func (p *MemberPurchase) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}

	if err := obj.require(&p.MemberPurchaseUUID, "memberPurchaseUUId"); err != nil {
		return err
	}
	if _, err := obj.get(&p.Name, "name"); err != nil {
		return err
	}
	if _, err := obj.get(&p.Price, "price"); err != nil {
		return err
	}
	if _, err := obj.get(&p.Status, "status"); err != nil {
		return err
	}
	if _, err := obj.get(&p.PurchaseDate, "purchaseDate", "createdDate"); err != nil {
		return err
	}
	if _, err := obj.get(&p.Studio, "studio"); err != nil {
		return err
	}
	return nil
}
