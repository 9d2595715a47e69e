package otf_api

import (
	"context"
	"fmt"
)

// Workout joins a v2 booking, its performance summary detail and telemetry
// into the view the mobile app shows after a class. It is produced only by
// the workouts API, never fetched from a single endpoint.
type Workout struct {
	PerformanceSummaryID string
	BookingID            string
	ClassUUID            string
	Coach                string
	Ratable              bool

	CaloriesBurned    int
	SplatPoints       int
	StepCount         int
	ActiveTimeSeconds int
	ZoneTimeMinutes   *ZoneTimeMinutes
	HeartRate         *HeartRate
	RowerData         *Rower
	TreadmillData     *Treadmill

	ClassRating *Rating
	CoachRating *Rating

	Class     BookingV2Class
	Studio    *BookingV2Studio
	Telemetry *Telemetry

	client *Client
}

// newWorkout assembles a Workout, failing fast when a required sub-object is
// absent. Telemetry is optional; when present its max heart rate wins over
// the summary's, which is observed to disagree.
func newWorkout(c *Client, booking *BookingV2, summary *PerformanceSummary, telemetry *Telemetry, classUUID string) (*Workout, error) {
	if booking == nil {
		return nil, &ValidationError{Field: "booking"}
	}
	if booking.Workout == nil {
		return nil, &ValidationError{Field: "booking.workout"}
	}
	if summary == nil {
		return nil, &ValidationError{Field: "performance summary"}
	}

	w := &Workout{
		PerformanceSummaryID: summary.ID,
		BookingID:            booking.ID,
		ClassUUID:            classUUID,
		Coach:                booking.Class.Coach,
		Ratable:              booking.Ratable,
		CaloriesBurned:       summary.CaloriesBurned,
		SplatPoints:          summary.SplatPoints,
		StepCount:            summary.StepCount,
		ActiveTimeSeconds:    booking.Workout.ActiveTimeSeconds,
		ZoneTimeMinutes:      summary.ZoneTimeMinutes,
		HeartRate:            summary.HeartRate,
		RowerData:            summary.RowerData,
		TreadmillData:        summary.TreadmillData,
		ClassRating:          booking.ClassRating,
		CoachRating:          booking.CoachRating,
		Class:                booking.Class,
		Studio:               booking.Class.Studio,
		Telemetry:            telemetry,
		client:               c,
	}

	if telemetry != nil && telemetry.MaxHR > 0 && w.HeartRate != nil {
		hr := *w.HeartRate
		hr.MaxHR = telemetry.MaxHR
		w.HeartRate = &hr
	}

	return w, nil
}

// Rate rates the class and coach for this workout. Ratings are on the 0 to 3
// scale; 0 is the same as dismissing the rating prompt in the app.
func (w *Workout) Rate(ctx context.Context, classRating, coachRating int) (*Workout, error) {
	if w.client == nil {
		return nil, &ConfigurationError{Message: "workout is not attached to a client"}
	}
	return w.client.Workouts.RateWorkout(ctx, w, classRating, coachRating)
}

func (w *Workout) String() string {
	return fmt.Sprintf("Workout: %s %s - %s",
		w.Class.Starts.Format("Mon Jan 02, 3:04 PM"), w.Class.Name, w.Coach)
}

// StatsData is one window of the lifetime stats response. The in-studio and
// out-of-studio fields are populated depending on which view was requested.
type StatsData struct {
	Calories        float64 `json:"calories"`
	SplatPoint      float64 `json:"splatPoint"`
	TotalBlackZone  float64 `json:"totalBlackZone"`
	TotalBlueZone   float64 `json:"totalBlueZone"`
	TotalGreenZone  float64 `json:"totalGreenZone"`
	TotalOrangeZone float64 `json:"totalOrangeZone"`
	TotalRedZone    float64 `json:"totalRedZone"`
	WorkoutDuration float64 `json:"workoutDuration"`
	StepCount       float64 `json:"stepCount"`

	// in studio
	TreadmillDistance        float64 `json:"treadmillDistance"`
	TreadmillElevationGained float64 `json:"treadmillElevationGained"`
	RowerDistance            float64 `json:"rowerDistance"`
	RowerWatt                float64 `json:"rowerWatt"`

	// out of studio
	WalkingDistance float64 `json:"walkingDistance"`
	RunningDistance float64 `json:"runningDistance"`
	CyclingDistance float64 `json:"cyclingDistance"`
}

// TimeStats holds one stats series per reporting window.
type TimeStats struct {
	LastYear  StatsData `json:"lastYear"`
	ThisYear  StatsData `json:"thisYear"`
	LastMonth StatsData `json:"lastMonth"`
	ThisMonth StatsData `json:"thisMonth"`
	LastWeek  StatsData `json:"lastWeek"`
	ThisWeek  StatsData `json:"thisWeek"`
	AllTime   StatsData `json:"allTime"`
}

// ByTime selects the window matching the given stats time.
func (t TimeStats) ByTime(selectTime StatsTime) StatsData {
	switch selectTime {
	case StatsLastYear:
		return t.LastYear
	case StatsThisYear:
		return t.ThisYear
	case StatsLastMonth:
		return t.LastMonth
	case StatsThisMonth:
		return t.ThisMonth
	case StatsLastWeek:
		return t.LastWeek
	case StatsThisWeek:
		return t.ThisWeek
	default:
		return t.AllTime
	}
}

// LifetimeStats is the full response of the over-time stats endpoint.
type LifetimeStats struct {
	AllStats  TimeStats `json:"allStats"`
	InStudio  TimeStats `json:"inStudio"`
	OutStudio TimeStats `json:"outStudio"`
}

// ChallengeYear is one year of participation status for a challenge.
type ChallengeYear struct {
	Year           int  `json:"Year"`
	IsParticipated bool `json:"IsParticipated"`
	InProgress     bool `json:"InProgress"`
}

// ChallengeProgram is a multi-week program a member can join.
type ChallengeProgram struct {
	ChallengeCategoryID    int             `json:"ChallengeCategoryId"`
	ChallengeSubCategoryID int             `json:"ChallengeSubCategoryId"`
	ChallengeName          string          `json:"ChallengeName"`
	Years                  []ChallengeYear `json:"Years"`
}

// ChallengeBenchmark is a benchmark workout tracked per equipment type.
type ChallengeBenchmark struct {
	EquipmentID   EquipmentType   `json:"EquipmentId"`
	EquipmentName string          `json:"EquipmentName"`
	Years         []ChallengeYear `json:"Years"`
}

// ChallengeTracker lists the programs, challenges and benchmarks available
// to the member. Participation results come from the benchmarks endpoint.
type ChallengeTracker struct {
	Programs   []ChallengeProgram   `json:"Programs"`
	Challenges []ChallengeProgram   `json:"Challenges"`
	Benchmarks []ChallengeBenchmark `json:"Benchmarks"`
}

// BenchmarkHistory is a single recorded result for a benchmark.
type BenchmarkHistory struct {
	StudioName             string        `json:"StudioName"`
	EquipmentID            EquipmentType `json:"EquipmentId"`
	ClassTime              *LocalTime    `json:"ClassTime"`
	ClassName              string        `json:"ClassName"`
	CoachName              string        `json:"CoachName"`
	ChallengeSubCategoryID int           `json:"ChallengeSubCategoryId"`
	WeightLbs              int           `json:"WeightLBS"`
	Result                 ResultValue   `json:"Result"`
}

// ChallengeHistory groups benchmark results recorded during one challenge.
type ChallengeHistory struct {
	StudioName         string             `json:"StudioName"`
	StartDate          *LocalTime         `json:"StartDate"`
	EndDate            *LocalTime         `json:"EndDate"`
	TotalResult        ResultValue        `json:"TotalResult"`
	IsFinished         bool               `json:"IsFinished"`
	BenchmarkHistories []BenchmarkHistory `json:"BenchmarkHistories"`
}

// FitnessBenchmark is the member's record for one benchmark or challenge.
type FitnessBenchmark struct {
	ChallengeCategoryID    int                `json:"ChallengeCategoryId"`
	ChallengeSubCategoryID int                `json:"ChallengeSubCategoryId"`
	EquipmentID            EquipmentType      `json:"EquipmentId"`
	EquipmentName          string             `json:"EquipmentName"`
	ChallengeName          string             `json:"ChallengeName"`
	BestRecord             ResultValue        `json:"BestRecord"`
	LastRecord             ResultValue        `json:"LastRecord"`
	PreviousRecord         ResultValue        `json:"PreviousRecord"`
	Unit                   string             `json:"Unit"`
	ChallengeHistories     []ChallengeHistory `json:"ChallengeHistories"`
}

// OutOfStudioWorkout is one entry of the out-of-studio workout history.
type OutOfStudioWorkout struct {
	MemberUUID      string     `json:"memberUUId"`
	WorkoutUUID     string     `json:"workoutUUId"`
	WorkoutDate     *LocalTime `json:"workoutDate"`
	StartTime       *LocalTime `json:"startTime"`
	EndTime         *LocalTime `json:"endTime"`
	Duration        float64    `json:"duration"`
	DurationUnit    string     `json:"durationUnit"`
	TotalCalories   int        `json:"totalCalories"`
	TotalDistance   float64    `json:"totalDistance"`
	DistanceUnit    string     `json:"distanceUnit"`
	SplatPoints     int        `json:"splatPoints"`
	TotalSteps      int        `json:"totalSteps"`
	AvgHeartRate    int        `json:"avgHeartrate"`
	MaxHeartRate    int        `json:"maxHeartrate"`
	HRPercentMax    int        `json:"hrPercentMax"`
	TargetHeartRate int        `json:"targetHeartRate"`
	HasDetailedData bool       `json:"hasDetailedData"`
}
