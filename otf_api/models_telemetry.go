package otf_api

import (
	"encoding/json"
	"time"
)

// Zone is a heart rate zone's BPM range.
type Zone struct {
	StartBPM int `json:"startBpm"`
	EndBPM   int `json:"endBpm"`
}

// Zones holds the five heart rate zones assigned to the member.
type Zones struct {
	Gray   Zone `json:"gray"`
	Blue   Zone `json:"blue"`
	Green  Zone `json:"green"`
	Orange Zone `json:"orange"`
	Red    Zone `json:"red"`
}

// TreadData is the treadmill portion of one telemetry sample.
type TreadData struct {
	TreadSpeed       float64 `json:"treadSpeed"`
	TreadIncline     float64 `json:"treadIncline"`
	AggTreadDistance int     `json:"aggTreadDistance"`
}

// RowData is the rower portion of one telemetry sample.
type RowData struct {
	RowSpeed       float64 `json:"rowSpeed"`
	RowPPS         float64 `json:"rowPps"`
	RowSPM         float64 `json:"rowSpm"`
	AggRowDistance int     `json:"aggRowDistance"`
	RowPace        int     `json:"rowPace"`
}

// TelemetrySample is one interval of a workout's time series. Timestamp is
// not stored upstream; it is derived from the class start time and the
// sample's relative offset when the Telemetry is decoded.
type TelemetrySample struct {
	RelativeTimestamp int        `json:"relativeTimestamp"`
	HR                int        `json:"hr"`
	AggSplats         int        `json:"aggSplats"`
	AggCalories       int        `json:"aggCalories"`
	TreadData         *TreadData `json:"treadData"`
	RowData           *RowData   `json:"rowData"`

	Timestamp time.Time `json:"-"`
}

// Telemetry is the full time series for one workout.
type Telemetry struct {
	MemberUUID           string           `json:"memberUuid"`
	PerformanceSummaryID string           `json:"classHistoryUuid"`
	ClassStartTime       *LocalTime       `json:"classStartTime"`
	MaxHR                int              `json:"maxHr"`
	Zones                Zones            `json:"zones"`
	WindowSize           int              `json:"windowSize"`
	Samples              []TelemetrySample `json:"telemetry"`
}

func (t *Telemetry) UnmarshalJSON(data []byte) error {
	type alias Telemetry
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = Telemetry(a)

	if t.ClassStartTime != nil {
		for i := range t.Samples {
			t.Samples[i].Timestamp = t.ClassStartTime.Add(
				time.Duration(t.Samples[i].RelativeTimestamp) * time.Second)
		}
	}
	return nil
}

// TelemetryHistoryItem is one entry of the member's max heart rate history.
type TelemetryHistoryItem struct {
	MaxHRType          string
	MaxHRValue         int
	Zones              *Zones
	ChangeFromPrevious int
	ChangeBucket       string
	AssignedAt         *LocalTime
}

func (h *TelemetryHistoryItem) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}

	if _, err := obj.at(&h.MaxHRType, "maxHr", "type"); err != nil {
		return err
	}
	if _, err := obj.at(&h.MaxHRValue, "maxHr", "value"); err != nil {
		return err
	}
	if _, err := obj.get(&h.Zones, "zones"); err != nil {
		return err
	}
	if _, err := obj.get(&h.ChangeFromPrevious, "changeFromPrevious"); err != nil {
		return err
	}
	if _, err := obj.get(&h.ChangeBucket, "changeBucket"); err != nil {
		return err
	}
	if _, err := obj.get(&h.AssignedAt, "assignedAt"); err != nil {
		return err
	}
	return nil
}
