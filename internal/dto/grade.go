package dto

// RecordGradeRequest stores one assessment score.
type RecordGradeRequest struct {
	OfferingID     int64  `json:"offering_id" validate:"required,gt=0"`
	StudentID      int64  `json:"student_id" validate:"required,gt=0"`
	AssessmentName string `json:"assessment_name" validate:"required,max=100"`
	Score          int    `json:"score" validate:"gte=0,ltefield=MaxScore"`
	MaxScore       int    `json:"max_score" validate:"required,gt=0"`
	DateSubmitted  string `json:"date_submitted" validate:"required,datetime=2006-01-02"`
}
