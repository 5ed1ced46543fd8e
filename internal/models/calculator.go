package models

import (
	"time"

	"github.com/google/uuid"
)

type Calculator struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"desc"`
	SubDescription  string    `json:"sub_desc"`
	Caution         string    `json:"caution"`
	ScoringName     string    `json:"scoring_name"`
	LevelingName    string    `json:"leveling_name"`
	CalculationPara string    `json:"calculation_para"`
	ResultLine      string    `json:"result_line"`
	Img             string    `json:"img,omitempty"`
}

type CalculatorQuestion struct {
	ID           uuid.UUID `json:"id"`
	CalculatorID uuid.UUID `json:"calculator"`
	Question     string    `json:"question"`
	Option1      string    `json:"option1"`
	Option2      string    `json:"option2"`
	Option3      string    `json:"option3"`
	Option4      string    `json:"option4"`
}

// CalculatorResult is a score band: [Min, Max] maps to a qualitative label.
// A nil Max means the band is open-ended. Bands are not validated for gaps
// or overlaps.
type CalculatorResult struct {
	Min    int    `json:"min"`
	Max    *int   `json:"max"`
	Result string `json:"result"`
}

type CalculatorScore struct {
	ID           int64     `json:"id"`
	CalculatorID uuid.UUID `json:"calculator"`
	UserID       uuid.UUID `json:"user"`
	Score        int       `json:"score"`
	CreatedAt    time.Time `json:"created_at"`
}

// LatestScore is one row of the latest-score-per-calculator query.
type LatestScore struct {
	CalculatorName string    `json:"calculator_name"`
	Score          int       `json:"score"`
	CreatedAt      time.Time `json:"created_at"`
}
