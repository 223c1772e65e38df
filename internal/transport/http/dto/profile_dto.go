package dto

type ProfileResponse struct {
	UserID      int64    `json:"user_id"`
	DisplayName string   `json:"display_name"`
	Age         int      `json:"age"`
	Bio         string   `json:"bio,omitempty"`
	City        string   `json:"city,omitempty"`
	State       string   `json:"state,omitempty"`
	PhotoURLs   []string `json:"photo_urls"`
	Ethnicities []string `json:"ethnicities,omitempty"`
	Interests   []string `json:"interests,omitempty"`
	IsPremium   bool     `json:"is_premium"`
}

type SaveProfileRequest struct {
	DisplayName    string   `json:"display_name"`
	Age            int      `json:"age"`
	Bio            string   `json:"bio,omitempty"`
	City           string   `json:"city,omitempty"`
	State          string   `json:"state,omitempty"`
	Lat            float64  `json:"lat,omitempty"`
	Lon            float64  `json:"lon,omitempty"`
	PhotoKeys      []string `json:"photo_keys,omitempty"`
	Ethnicities    []string `json:"ethnicities,omitempty"`
	Interests      []string `json:"interests,omitempty"`
	IsDiscoverable *bool    `json:"is_discoverable,omitempty"`
}

type UploadPhotoResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type DeletePhotoRequest struct {
	Key string `json:"key"`
}
