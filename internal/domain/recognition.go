package domain

import "context"

// RecognizedFood is one candidate returned by the recognition or lookup
// service. Macros are per single portion.
type RecognizedFood struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// FoodRecognitionService is the boundary to the external image-recognition
// and nutrition-lookup integration. The core never looks behind it.
type FoodRecognitionService interface {
	AnalyzeImage(ctx context.Context, image []byte, filename string) ([]RecognizedFood, error)
	Search(ctx context.Context, query string, limit int) ([]RecognizedFood, error)
}
