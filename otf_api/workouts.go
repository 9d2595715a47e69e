package otf_api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"
)

const (
	// Same sampling as the mobile app.
	defaultTelemetryPoints = 150

	// Default lookback for workout listings.
	workoutLookbackDays = 30

	perfSummaryCacheTag = "performance_summary"
	telemetryCacheTag   = "telemetry"
)

// WorkoutsAPI groups the performance, telemetry and challenge operations,
// and assembles the per-class Workout view from them.
type WorkoutsAPI struct {
	client *Client
}

func (a *WorkoutsAPI) perfSummaryRaw(ctx context.Context, performanceSummaryID string) (json.RawMessage, error) {
	return a.client.cache.GetOrCompute("performance_summary:"+performanceSummaryID, detailCacheTTL, perfSummaryCacheTag,
		func() (json.RawMessage, error) {
			return a.client.perfSummaryRequest(ctx, http.MethodGet, "/v1/performance-summaries/"+performanceSummaryID, nil)
		})
}

// PerformanceSummary fetches one performance summary by id. Most callers
// want the assembled Workout from ListWorkouts instead; this endpoint alone
// does not carry the booking or telemetry data.
func (a *WorkoutsAPI) PerformanceSummary(ctx context.Context, performanceSummaryID string) (*PerformanceSummary, error) {
	if performanceSummaryID == "" {
		return nil, &ValidationError{Field: "performanceSummaryID"}
	}

	raw, err := a.perfSummaryRaw(ctx, performanceSummaryID)
	if err != nil {
		return nil, err
	}

	var summary PerformanceSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// perfSummaryClassUUIDs maps performance summary ids to class UUIDs using
// the list endpoint, which is the only place the two appear together. The
// class UUID is needed to rate a class.
func (a *WorkoutsAPI) perfSummaryClassUUIDs(ctx context.Context) (map[string]string, error) {
	resp, err := a.client.perfSummaryRequest(ctx, http.MethodGet, "/v1/performance-summaries", nil)
	if err != nil {
		return nil, err
	}

	items, err := envelope(resp, "items")
	if err != nil {
		return nil, err
	}

	var summaries []struct {
		ID    string `json:"id"`
		Class struct {
			ClassUUID string `json:"ot_base_class_uuid"`
		} `json:"class"`
	}
	if err := json.Unmarshal(items, &summaries); err != nil {
		return nil, err
	}

	mapping := make(map[string]string, len(summaries))
	for _, s := range summaries {
		mapping[s.ID] = s.Class.ClassUUID
	}
	return mapping, nil
}

// Telemetry fetches the heart rate and equipment time series for one
// workout. maxDataPoints zero means the app's default of 150 samples.
func (a *WorkoutsAPI) Telemetry(ctx context.Context, performanceSummaryID string, maxDataPoints int) (*Telemetry, error) {
	if performanceSummaryID == "" {
		return nil, &ValidationError{Field: "performanceSummaryID"}
	}
	if maxDataPoints <= 0 {
		maxDataPoints = defaultTelemetryPoints
	}

	key := "telemetry:" + performanceSummaryID + ":" + strconv.Itoa(maxDataPoints)
	raw, err := a.client.cache.GetOrCompute(key, detailCacheTTL, telemetryCacheTag,
		func() (json.RawMessage, error) {
			return a.client.telemetryRequest(ctx, http.MethodGet, "/v1/performance/summary", params{
				"classHistoryUuid": performanceSummaryID,
				"maxDataPoints":    maxDataPoints,
			})
		})
	if err != nil {
		return nil, err
	}

	var telemetry Telemetry
	if err := json.Unmarshal(raw, &telemetry); err != nil {
		return nil, err
	}
	return &telemetry, nil
}

// ListWorkouts assembles the member's workouts for a date range from the v2
// bookings, performance summaries and telemetry. Zero dates default to the
// last 30 days. Results are sorted by class start time.
func (a *WorkoutsAPI) ListWorkouts(ctx context.Context, startDate, endDate time.Time) ([]*Workout, error) {
	if startDate.IsZero() {
		startDate = a.client.now().AddDate(0, 0, -workoutLookbackDays)
	}
	if endDate.IsZero() {
		endDate = a.client.now()
	}

	bookings, err := a.client.Bookings.ListBookingsV2(ctx, ListBookingsV2Options{
		StartsAfter: dateOf(startDate),
		EndsBefore:  dateOf(endDate).Add(24*time.Hour - time.Second),
	})
	if err != nil {
		return nil, err
	}

	bookingsByWorkout := make(map[string]*BookingV2)
	var summaryIDs []string
	for _, b := range bookings {
		if b.Workout != nil && b.Workout.ID != "" {
			bookingsByWorkout[b.Workout.ID] = b
			summaryIDs = append(summaryIDs, b.Workout.ID)
		}
	}

	summaries, err := fetchAll(ctx, summaryIDs, func(ctx context.Context, id string) (*PerformanceSummary, error) {
		return a.PerformanceSummary(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	telemetry, err := fetchAll(ctx, summaryIDs, func(ctx context.Context, id string) (*Telemetry, error) {
		return a.Telemetry(ctx, id, 0)
	})
	if err != nil {
		return nil, err
	}
	classUUIDs, err := a.perfSummaryClassUUIDs(ctx)
	if err != nil {
		return nil, err
	}

	workouts := make([]*Workout, 0, len(summaryIDs))
	for _, id := range summaryIDs {
		w, err := newWorkout(a.client, bookingsByWorkout[id], summaries[id], telemetry[id], classUUIDs[id])
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}

	sort.SliceStable(workouts, func(i, j int) bool {
		return workouts[i].Class.Starts.Before(workouts[j].Class.Starts.Time)
	})

	return workouts, nil
}

// WorkoutFromBooking assembles the workout for one booking. Legacy bookings
// do not carry the workout linkage and are rejected.
func (a *WorkoutsAPI) WorkoutFromBooking(ctx context.Context, booking BookingRef) (*Workout, error) {
	v2, ok := booking.(*BookingV2)
	if !ok {
		return nil, &ConfigurationError{Message: "workouts can only be looked up from v2 bookings"}
	}
	return a.WorkoutForBookingID(ctx, v2.ID)
}

// WorkoutForBookingID assembles the workout for a v2 booking id.
func (a *WorkoutsAPI) WorkoutForBookingID(ctx context.Context, bookingID string) (*Workout, error) {
	booking, err := a.client.Bookings.GetBookingV2(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Workout == nil || booking.Workout.ID == "" {
		return nil, &ResourceNotFoundError{Resource: "workout for booking " + bookingID}
	}

	summary, err := a.PerformanceSummary(ctx, booking.Workout.ID)
	if err != nil {
		return nil, err
	}
	telemetry, err := a.Telemetry(ctx, booking.Workout.ID, 0)
	if err != nil {
		return nil, err
	}

	return newWorkout(a.client, booking, summary, telemetry, summary.ClassUUID)
}

// RateWorkout rates the class and coach for a workout and returns the
// re-fetched workout carrying the new ratings. A workout that the server has
// not flagged as ratable, or that has no class UUID to attach the rating to,
// is rejected with ClassNotRatableError; one already rated with
// AlreadyRatedError.
func (a *WorkoutsAPI) RateWorkout(ctx context.Context, workout *Workout, classRating, coachRating int) (*Workout, error) {
	if workout == nil {
		return nil, &ValidationError{Field: "workout"}
	}
	if !workout.Ratable || workout.ClassUUID == "" {
		return nil, &ClassNotRatableError{PerformanceSummaryID: workout.PerformanceSummaryID}
	}
	if workout.ClassRating != nil || workout.CoachRating != nil {
		return nil, &AlreadyRatedError{PerformanceSummaryID: workout.PerformanceSummaryID}
	}

	if err := a.client.Bookings.Rate(ctx, workout.ClassUUID, workout.PerformanceSummaryID, classRating, coachRating); err != nil {
		return nil, err
	}

	return a.WorkoutForBookingID(ctx, workout.BookingID)
}

func (a *WorkoutsAPI) lifetimeStats(ctx context.Context, selectTime StatsTime) (*LifetimeStats, error) {
	resp, err := a.client.defaultRequest(ctx, http.MethodGet,
		"/performance/v2/"+a.client.MemberUUID()+"/over-time/"+string(selectTime), nil, nil)
	if err != nil {
		return nil, err
	}

	data, err := envelope(resp, "data")
	if err != nil {
		return nil, err
	}

	var stats LifetimeStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// LifetimeStatsInStudio returns the member's in-studio stats for a window.
// An empty StatsTime means all time.
func (a *WorkoutsAPI) LifetimeStatsInStudio(ctx context.Context, selectTime StatsTime) (StatsData, error) {
	if selectTime == "" {
		selectTime = StatsAllTime
	}
	stats, err := a.lifetimeStats(ctx, selectTime)
	if err != nil {
		return StatsData{}, err
	}
	return stats.InStudio.ByTime(selectTime), nil
}

// LifetimeStatsOutOfStudio returns the member's out-of-studio stats for a
// window. An empty StatsTime means all time.
func (a *WorkoutsAPI) LifetimeStatsOutOfStudio(ctx context.Context, selectTime StatsTime) (StatsData, error) {
	if selectTime == "" {
		selectTime = StatsAllTime
	}
	stats, err := a.lifetimeStats(ctx, selectTime)
	if err != nil {
		return StatsData{}, err
	}
	return stats.OutStudio.ByTime(selectTime), nil
}

// OutOfStudioWorkouts returns the member's out-of-studio workout history.
func (a *WorkoutsAPI) OutOfStudioWorkouts(ctx context.Context) ([]*OutOfStudioWorkout, error) {
	resp, err := a.client.defaultRequest(ctx, http.MethodGet,
		"/member/members/"+a.client.MemberUUID()+"/out-of-studio-workout", nil, nil)
	if err != nil {
		return nil, err
	}

	data, err := envelope(resp, "data")
	if err != nil {
		return nil, err
	}

	var workouts []*OutOfStudioWorkout
	if err := json.Unmarshal(data, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// BodyCompositions returns the member's InBody scan history. The endpoint is
// keyed by the Cognito subject rather than the member UUID.
func (a *WorkoutsAPI) BodyCompositions(ctx context.Context) ([]*BodyComposition, error) {
	resp, err := a.client.defaultRequest(ctx, http.MethodGet,
		"/member/members/"+a.client.session.CognitoID()+"/body-composition", nil, nil)
	if err != nil {
		return nil, err
	}

	data, err := envelope(resp, "data")
	if err != nil {
		return nil, err
	}

	var scans []*BodyComposition
	if err := json.Unmarshal(data, &scans); err != nil {
		return nil, err
	}
	return scans, nil
}

// ChallengeTracker returns the programs, challenges and benchmarks available
// to the member.
func (a *WorkoutsAPI) ChallengeTracker(ctx context.Context) (*ChallengeTracker, error) {
	resp, err := a.client.defaultRequest(ctx, http.MethodGet,
		"/challenges/v3.1/member/"+a.client.MemberUUID(), nil, nil)
	if err != nil {
		return nil, err
	}

	dto, err := envelope(resp, "Dto")
	if err != nil {
		return nil, err
	}

	var tracker ChallengeTracker
	if err := json.Unmarshal(dto, &tracker); err != nil {
		return nil, err
	}
	return &tracker, nil
}

// Benchmarks returns the member's benchmark records. All arguments may be
// zero; the server treats zero as no filter.
func (a *WorkoutsAPI) Benchmarks(ctx context.Context, challengeCategoryID int, equipmentID EquipmentType, challengeSubcategoryID int) ([]*FitnessBenchmark, error) {
	resp, err := a.client.defaultRequest(ctx, http.MethodGet,
		"/challenges/v3/member/"+a.client.MemberUUID()+"/benchmarks", params{
			"equipmentId":        int(equipmentID),
			"challengeTypeId":    challengeCategoryID,
			"challengeSubTypeId": challengeSubcategoryID,
		}, nil)
	if err != nil {
		return nil, err
	}

	dto, err := envelope(resp, "Dto")
	if err != nil {
		return nil, err
	}

	var benchmarks []*FitnessBenchmark
	if err := json.Unmarshal(dto, &benchmarks); err != nil {
		return nil, err
	}
	return benchmarks, nil
}

// BenchmarksByEquipment returns benchmark records for one equipment type.
// The server-side filter has no observed effect, so the results are filtered
// again locally.
func (a *WorkoutsAPI) BenchmarksByEquipment(ctx context.Context, equipmentID EquipmentType) ([]*FitnessBenchmark, error) {
	benchmarks, err := a.Benchmarks(ctx, 0, equipmentID, 0)
	if err != nil {
		return nil, err
	}

	var out []*FitnessBenchmark
	for _, b := range benchmarks {
		if b.EquipmentID == equipmentID {
			out = append(out, b)
		}
	}
	return out, nil
}

// BenchmarksByChallengeCategory returns benchmark records for one challenge
// category, filtered locally like BenchmarksByEquipment.
func (a *WorkoutsAPI) BenchmarksByChallengeCategory(ctx context.Context, challengeCategoryID int) ([]*FitnessBenchmark, error) {
	benchmarks, err := a.Benchmarks(ctx, challengeCategoryID, 0, 0)
	if err != nil {
		return nil, err
	}

	var out []*FitnessBenchmark
	for _, b := range benchmarks {
		if b.ChallengeCategoryID == challengeCategoryID {
			out = append(out, b)
		}
	}
	return out, nil
}

// ChallengeTrackerDetail returns details about one challenge. This usually
// describes the challenge itself rather than the member's participation.
func (a *WorkoutsAPI) ChallengeTrackerDetail(ctx context.Context, challengeCategoryID int) (*FitnessBenchmark, error) {
	resp, err := a.client.defaultRequest(ctx, http.MethodGet,
		"/challenges/v1/member/"+a.client.MemberUUID()+"/participation",
		params{"challengeTypeId": challengeCategoryID}, nil)
	if err != nil {
		return nil, err
	}

	dto, err := envelope(resp, "Dto")
	if err != nil {
		return nil, err
	}

	var benchmarks []*FitnessBenchmark
	if err := json.Unmarshal(dto, &benchmarks); err != nil {
		return nil, err
	}

	if len(benchmarks) == 0 {
		return nil, &ResourceNotFoundError{Resource: "challenge " + strconv.Itoa(challengeCategoryID)}
	}
	if len(benchmarks) > 1 {
		a.client.logger.Warn("multiple challenge participations found, returning the first one",
			"challenge_category_id", challengeCategoryID)
	}
	return benchmarks[0], nil
}

// HRHistory returns the member's max heart rate history, newest first as
// reported by the server.
func (a *WorkoutsAPI) HRHistory(ctx context.Context) ([]*TelemetryHistoryItem, error) {
	resp, err := a.client.telemetryRequest(ctx, http.MethodGet, "/v1/physVars/maxHr/history",
		params{"memberUuid": a.client.MemberUUID()})
	if err != nil {
		return nil, err
	}

	history, err := envelope(resp, "history")
	if err != nil {
		return nil, err
	}

	var items []*TelemetryHistoryItem
	if err := json.Unmarshal(history, &items); err != nil {
		return nil, err
	}
	return items, nil
}
