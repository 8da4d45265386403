package transfer

// GraphResponse covers the replies of the Facebook, Instagram and WhatsApp Graph endpoints.
type GraphResponse struct {
	ID     string      `json:"id"`
	PostID string      `json:"post_id"`
	Error  *GraphError `json:"error"`
}

type GraphError struct {
	Message        string `json:"message"`
	Type           string `json:"type"`
	Code           int    `json:"code"`
	ErrorSubcode   int    `json:"error_subcode"`
	IsTransient    bool   `json:"is_transient"`
	ErrorUserTitle string `json:"error_user_title"`
	ErrorUserMsg   string `json:"error_user_msg"`
	FbtraceID      string `json:"fbtrace_id"`
}

type WhatsAppMessage struct {
	MessagingProduct string         `json:"messaging_product"`
	To               string         `json:"to"`
	Type             string         `json:"type"`
	Image            *WhatsAppImage `json:"image,omitempty"`
	Text             *WhatsAppText  `json:"text,omitempty"`
}

type WhatsAppImage struct {
	Link string `json:"link"`
}

type WhatsAppText struct {
	Body string `json:"body"`
}

type WhatsAppResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *GraphError `json:"error"`
}
