// Package analytics aggregates the responses of a form.
package analytics

import (
	"encoding/json"

	"github.com/SAP-F-2025/form-builder-service/internal/models"
)

// Analytics summarizes every response of one form.
type Analytics struct {
	TotalResponses int     `json:"totalResponses"`
	AverageScore   float64 `json:"averageScore"` // mean percentage, 0-100
	AverageTime    float64 `json:"averageTime"`  // minutes
}

// Summarize averages percentage score and time spent over responses. No
// responses yields zeros.
func Summarize(responses []models.FormResponse) Analytics {
	if len(responses) == 0 {
		return Analytics{}
	}

	var percentSum, secondsSum float64
	for i := range responses {
		percentSum += responses[i].PercentageScore()
		secondsSum += float64(responses[i].TimeSpent)
	}

	n := float64(len(responses))
	return Analytics{
		TotalResponses: len(responses),
		AverageScore:   percentSum / n,
		AverageTime:    secondsSum / n / 60,
	}
}

// Rounded returns a copy with both averages rounded to 2 decimals for display.
func (a Analytics) Rounded() Analytics {
	a.AverageScore = models.Round2(a.AverageScore)
	a.AverageTime = models.Round2(a.AverageTime)
	return a
}

func (a Analytics) MarshalJSON() ([]byte, error) {
	type alias Analytics
	return json.Marshal(alias(a.Rounded()))
}
