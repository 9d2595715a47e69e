package otf_api

import "time"

// BookingStatus is the legacy API's explicit status vocabulary. The v2 API
// does not have one; BookingV2 derives the closest match from its flags.
type BookingStatus string

const (
	BookingStatusPending                BookingStatus = "Pending"
	BookingStatusRequested              BookingStatus = "Requested"
	BookingStatusBooked                 BookingStatus = "Booked"
	BookingStatusCancelled              BookingStatus = "Cancelled"
	BookingStatusLateCancelled          BookingStatus = "Late Cancelled"
	BookingStatusWaitlisted             BookingStatus = "Waitlisted"
	BookingStatusCheckedIn              BookingStatus = "Checked In"
	BookingStatusCheckinPending         BookingStatus = "Checkin Pending"
	BookingStatusCheckinRequested       BookingStatus = "Checkin Requested"
	BookingStatusConfirmed              BookingStatus = "Confirmed"
	BookingStatusCheckinCancelled       BookingStatus = "Checkin Cancelled"
	BookingStatusCancelCheckinPending   BookingStatus = "Cancel Checkin Pending"
	BookingStatusCancelCheckinRequested BookingStatus = "Cancel Checkin Requested"
)

// HistoricalBookingStatuses are the statuses the historical-bookings lookup
// asks for, one request per status because of the legacy endpoint quirk where
// only the last status in a comma-joined list takes effect.
var HistoricalBookingStatuses = []BookingStatus{
	BookingStatusCheckedIn,
	BookingStatusCancelCheckinPending,
	BookingStatusCancelCheckinRequested,
	BookingStatusLateCancelled,
	BookingStatusCheckinPending,
	BookingStatusCheckinRequested,
	BookingStatusCheckinCancelled,
}

// ClassType is the v2 classes endpoint's class-type code.
type ClassType string

const (
	ClassTypeOrange60   ClassType = "ORANGE_60"
	ClassTypeOrange90   ClassType = "ORANGE_90"
	ClassTypeStrength50 ClassType = "STRENGTH_50"
	ClassTypeTread50    ClassType = "TREAD_50"
	ClassTypeOther      ClassType = "OTHER"
)

// Duration returns the typical class length for the type, used to derive an
// end time when the server omits one. Unknown types fall back to an hour.
func (t ClassType) Duration() time.Duration {
	switch t {
	case ClassTypeOrange60:
		return 60 * time.Minute
	case ClassTypeOrange90:
		return 90 * time.Minute
	case ClassTypeStrength50, ClassTypeTread50:
		return 50 * time.Minute
	default:
		return 60 * time.Minute
	}
}

// StudioStatus as reported by the studio detail endpoint.
type StudioStatus string

const (
	StudioStatusActive     StudioStatus = "Active"
	StudioStatusInactive   StudioStatus = "Inactive"
	StudioStatusComingSoon StudioStatus = "Coming Soon"
	StudioStatusTempClosed StudioStatus = "Temporarily Closed"
	StudioStatusPermClosed StudioStatus = "Permanently Closed"
	StudioStatusUnknown    StudioStatus = "Unknown"
)

// EquipmentType codes used by the benchmarks endpoint.
type EquipmentType int

const (
	EquipmentTreadmill   EquipmentType = 2
	EquipmentStrider     EquipmentType = 3
	EquipmentRower       EquipmentType = 4
	EquipmentBike        EquipmentType = 5
	EquipmentWeightFloor EquipmentType = 6
	EquipmentPowerWalker EquipmentType = 7
)

// ChallengeCategory codes used by the challenge tracker endpoints.
type ChallengeCategory int

const (
	ChallengeOther                 ChallengeCategory = 0
	ChallengeDriTri                ChallengeCategory = 2
	ChallengeInfinity              ChallengeCategory = 3
	ChallengeMarathonMonth         ChallengeCategory = 5
	ChallengeOrangeEverest         ChallengeCategory = 9
	ChallengeCatchMeIfYouCan       ChallengeCategory = 10
	ChallengeTwoHundredMeterRow    ChallengeCategory = 15
	ChallengeFiveHundredMeterRow   ChallengeCategory = 16
	ChallengeTwoThousandMeterRow   ChallengeCategory = 17
	ChallengeTwelveMinuteTreadmill ChallengeCategory = 18
	ChallengeOneMileTreadmill      ChallengeCategory = 19
	ChallengeTenMinuteRow          ChallengeCategory = 20
	ChallengeHellWeek              ChallengeCategory = 52
	ChallengeTransformation        ChallengeCategory = 64
)

// StatsTime selects the window for the lifetime stats endpoint.
type StatsTime string

const (
	StatsLastYear  StatsTime = "lastYear"
	StatsThisYear  StatsTime = "thisYear"
	StatsLastMonth StatsTime = "lastMonth"
	StatsThisMonth StatsTime = "thisMonth"
	StatsLastWeek  StatsTime = "lastWeek"
	StatsThisWeek  StatsTime = "thisWeek"
	StatsAllTime   StatsTime = "allTime"
)

// The ratings endpoint expects the mobile app's internal rating codes, not
// the plain 0-3 scale this library exposes.
var (
	coachRatingValues = map[int]int{0: 0, 1: 16, 2: 17, 3: 18}
	classRatingValues = map[int]int{0: 0, 1: 19, 2: 20, 3: 21}
)

func classRatingValue(rating int) (int, bool) {
	v, ok := classRatingValues[rating]
	return v, ok
}

func coachRatingValue(rating int) (int, bool) {
	v, ok := coachRatingValues[rating]
	return v, ok
}
