package transfer

type LinkedInShare struct {
	Author          string            `json:"author"`
	LifecycleState  string            `json:"lifecycleState"`
	SpecificContent LinkedInSpecific  `json:"specificContent"`
	Visibility      map[string]string `json:"visibility"`
}

type LinkedInSpecific struct {
	ShareContent LinkedInShareContent `json:"com.linkedin.ugc.ShareContent"`
}

type LinkedInShareContent struct {
	ShareCommentary    LinkedInText    `json:"shareCommentary"`
	ShareMediaCategory string          `json:"shareMediaCategory"`
	Media              []LinkedInMedia `json:"media,omitempty"`
}

type LinkedInText struct {
	Text string `json:"text"`
}

type LinkedInMedia struct {
	Status      string `json:"status"`
	OriginalURL string `json:"originalUrl"`
}

type LinkedInResponse struct {
	ID               string `json:"id"`
	Message          string `json:"message"`
	ServiceErrorCode *int   `json:"serviceErrorCode"`
	Status           int    `json:"status"`
}
