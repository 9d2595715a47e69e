package otf_api

import (
	"encoding/json"
	"fmt"
	"time"
)

// ZoneTimeMinutes is time spent per heart rate zone.
type ZoneTimeMinutes struct {
	Gray   int `json:"gray"`
	Blue   int `json:"blue"`
	Green  int `json:"green"`
	Orange int `json:"orange"`
	Red    int `json:"red"`
}

// HeartRate is the summary heart rate block of a performance summary.
type HeartRate struct {
	MaxHR         int `json:"max_hr"`
	PeakHR        int `json:"peak_hr"`
	PeakHRPercent int `json:"peak_hr_percent"`
	AvgHR         int `json:"avg_hr"`
	AvgHRPercent  int `json:"avg_hr_percent"`
}

// PerformanceMetric is one display metric from the equipment data. Time
// metrics arrive with a "MM:SS" or "HH:MM:SS" display value and the raw value
// in seconds.
type PerformanceMetric struct {
	DisplayValue string
	DisplayUnit  string
	MetricValue  float64
}

func (m *PerformanceMetric) UnmarshalJSON(data []byte) error {
	var raw struct {
		DisplayValue json.RawMessage `json:"display_value"`
		DisplayUnit  string          `json:"display_unit"`
		MetricValue  json.RawMessage `json:"metric_value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.DisplayUnit = raw.DisplayUnit

	// display_value may be a number or a clock string
	if len(raw.DisplayValue) > 0 {
		var s string
		if err := json.Unmarshal(raw.DisplayValue, &s); err == nil {
			m.DisplayValue = s
		} else {
			var n float64
			if err := json.Unmarshal(raw.DisplayValue, &n); err != nil {
				return &ValidationError{Field: "display_value", Cause: err}
			}
			m.DisplayValue = fmt.Sprintf("%v", n)
		}
	}

	// metric_value may likewise be a number or a numeric string
	if len(raw.MetricValue) > 0 {
		var n float64
		if err := json.Unmarshal(raw.MetricValue, &n); err == nil {
			m.MetricValue = n
		} else {
			var s string
			if err := json.Unmarshal(raw.MetricValue, &s); err != nil {
				return &ValidationError{Field: "metric_value", Cause: err}
			}
			d, err := parseClockDuration(s)
			if err != nil {
				return &ValidationError{Field: "metric_value", Cause: err}
			}
			m.MetricValue = d.Seconds()
		}
	}
	return nil
}

// Duration interprets the metric value as seconds.
func (m PerformanceMetric) Duration() time.Duration {
	return time.Duration(m.MetricValue * float64(time.Second))
}

// Treadmill metrics from a performance summary.
type Treadmill struct {
	AvgPace         PerformanceMetric `json:"avg_pace"`
	AvgSpeed        PerformanceMetric `json:"avg_speed"`
	MaxPace         PerformanceMetric `json:"max_pace"`
	MaxSpeed        PerformanceMetric `json:"max_speed"`
	MovingTime      PerformanceMetric `json:"moving_time"`
	TotalDistance   PerformanceMetric `json:"total_distance"`
	AvgIncline      PerformanceMetric `json:"avg_incline"`
	MaxIncline      PerformanceMetric `json:"max_incline"`
	ElevationGained PerformanceMetric `json:"elevation_gained"`
}

// Rower metrics from a performance summary.
type Rower struct {
	AvgPace       PerformanceMetric `json:"avg_pace"`
	AvgSpeed      PerformanceMetric `json:"avg_speed"`
	MaxPace       PerformanceMetric `json:"max_pace"`
	MaxSpeed      PerformanceMetric `json:"max_speed"`
	MovingTime    PerformanceMetric `json:"moving_time"`
	TotalDistance PerformanceMetric `json:"total_distance"`
	AvgCadence    PerformanceMetric `json:"avg_cadence"`
	MaxCadence    PerformanceMetric `json:"max_cadence"`
	AvgPower      PerformanceMetric `json:"avg_power"`
}

// PerformanceSummary is the per-workout aggregate from the performance
// summaries endpoint. Most callers want the assembled Workout instead.
type PerformanceSummary struct {
	ID      string
	Ratable bool

	CaloriesBurned  int
	SplatPoints     int
	StepCount       int
	ZoneTimeMinutes *ZoneTimeMinutes
	HeartRate       *HeartRate
	RowerData       *Rower
	TreadmillData   *Treadmill

	// Class UUID for the ratings endpoint, present only on list responses
	// and only while the class is ratable.
	ClassUUID string
}

func (p *PerformanceSummary) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}

	if err := obj.require(&p.ID, "id"); err != nil {
		return err
	}
	if _, err := obj.get(&p.Ratable, "ratable"); err != nil {
		return err
	}
	if _, err := obj.at(&p.CaloriesBurned, "details", "calories_burned"); err != nil {
		return err
	}
	if _, err := obj.at(&p.SplatPoints, "details", "splat_points"); err != nil {
		return err
	}
	if _, err := obj.at(&p.StepCount, "details", "step_count"); err != nil {
		return err
	}
	if _, err := obj.at(&p.ZoneTimeMinutes, "details", "zone_time_minutes"); err != nil {
		return err
	}
	if _, err := obj.at(&p.HeartRate, "details", "heart_rate"); err != nil {
		return err
	}
	if _, err := obj.at(&p.RowerData, "details", "equipment_data", "rower"); err != nil {
		return err
	}
	if _, err := obj.at(&p.TreadmillData, "details", "equipment_data", "treadmill"); err != nil {
		return err
	}
	if _, err := obj.at(&p.ClassUUID, "class", "ot_base_class_uuid"); err != nil {
		return err
	}
	return nil
}
