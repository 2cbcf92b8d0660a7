package maps

// Travel modes accepted by the Distance Matrix API
var Modes = []string{"driving", "transit", "bicycling", "walking"}

// Traffic models used for driving departures in the future
var TrafficModels = []string{"best_guess", "pessimistic", "optimistic"}

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// DistanceMatrixResponse is the body of /distancematrix/json
type DistanceMatrixResponse struct {
	Status               string              `json:"status"`
	ErrorMessage         string              `json:"error_message,omitempty"`
	OriginAddresses      []string            `json:"origin_addresses"`
	DestinationAddresses []string            `json:"destination_addresses"`
	Rows                 []DistanceMatrixRow `json:"rows"`
}

// DistanceMatrixRow holds the elements for one origin
type DistanceMatrixRow struct {
	Elements []DistanceMatrixElement `json:"elements"`
}

// DistanceMatrixElement is the result for one origin/destination pair
type DistanceMatrixElement struct {
	Status            string     `json:"status"`
	Duration          *TextValue `json:"duration,omitempty"`
	DurationInTraffic *TextValue `json:"duration_in_traffic,omitempty"`
	Distance          *TextValue `json:"distance,omitempty"`
}

// TextValue pairs a numeric value (seconds or meters) with its display text
type TextValue struct {
	Value int64  `json:"value"`
	Text  string `json:"text"`
}

// AutocompleteResponse is the body of /place/autocomplete/json
type AutocompleteResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Predictions  []Prediction `json:"predictions"`
}

// Prediction is one place suggestion
type Prediction struct {
	Description string `json:"description"`
	PlaceID     string `json:"place_id"`
}

// ValidMode reports whether mode is one of Modes
func ValidMode(mode string) bool {
	return contains(Modes, mode)
}

// ValidTrafficModel reports whether model is one of TrafficModels
func ValidTrafficModel(model string) bool {
	return contains(TrafficModels, model)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
