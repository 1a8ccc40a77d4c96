package models

import "time"

// Schedule is one class session of an offering. Start and end times are
// time-of-day strings as returned by the database (HH:MM or HH:MM:SS).
type Schedule struct {
	ID         int64     `db:"id" json:"id"`
	OfferingID int64     `db:"offering_id" json:"offering_id"`
	DayOfWeek  string    `db:"day_of_week" json:"day_of_week"`
	Date       time.Time `db:"date" json:"date"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	Room       string    `db:"room" json:"room"`
}
