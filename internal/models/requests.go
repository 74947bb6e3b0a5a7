package models

type RegisterRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
	Email string `json:"email"`
}

type FeedbackRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

type PlayResponse struct {
	Success bool         `json:"success"`
	Outcome *PlayOutcome `json:"outcome"`
}

// RegisterResponse is what the upstream promotions API returns on a successful
// registration. Parsing is tolerant: missing offers or a stringly-typed
// probability must not fail the whole registration.
type RegisterResponse struct {
	Token                 string              `json:"token"`
	LatestPlayedTimestamp string              `json:"latestPlayedTimestamp"`
	Offers                map[string][]string `json:"offers"`
	TableName             string              `json:"tableName"`
	WinProbability        float64             `json:"winProbability"`
}
