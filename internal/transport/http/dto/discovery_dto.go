package dto

type DiscoveryCardResponse struct {
	UserID        int64    `json:"user_id"`
	DisplayName   string   `json:"display_name"`
	Age           int      `json:"age"`
	Bio           string   `json:"bio,omitempty"`
	City          string   `json:"city,omitempty"`
	State         string   `json:"state,omitempty"`
	PhotoURLs     []string `json:"photo_urls"`
	Ethnicities   []string `json:"ethnicities,omitempty"`
	Interests     []string `json:"interests,omitempty"`
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
}

type DiscoveryResponse struct {
	Cards   []DiscoveryCardResponse `json:"cards"`
	Relaxed bool                    `json:"relaxed"`
}
