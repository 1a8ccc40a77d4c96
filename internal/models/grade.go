package models

// Grade is one assessment score, keyed by offering, student and assessment name.
type Grade struct {
	OfferingID     int64  `db:"offering_id" json:"offering_id"`
	StudentID      int64  `db:"student_id" json:"student_id"`
	AssessmentName string `db:"assessment_name" json:"assessment_name"`
	Score          int    `db:"score" json:"score"`
	MaxScore       int    `db:"max_score" json:"max_score"`
	DateSubmitted  string `db:"date_submitted" json:"date_submitted"`
}

// Percent returns the score as a percentage of the maximum.
func (g Grade) Percent() float64 {
	if g.MaxScore <= 0 {
		return 0
	}
	return float64(g.Score) * 100 / float64(g.MaxScore)
}
