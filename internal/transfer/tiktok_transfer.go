package transfer

type TikTokInitResponse struct {
	Data  TiktokInitData `json:"data"`
	Error TiktokError    `json:"error"`
}

type TiktokInitData struct {
	PublishID string `json:"publish_id"`
	UploadURL string `json:"upload_url"`
}

type TiktokError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	LogID   string `json:"log_id"`
}

// Failed reports whether TikTok returned anything other than its "ok" code.
func (e TiktokError) Failed() bool {
	return e.Code != "" && e.Code != "ok"
}

type VideoPostInfo struct {
	Title                 string `json:"title"`
	PrivacyLevel          string `json:"privacy_level"`
	DisableDuet           bool   `json:"disable_duet"`
	DisableComment        bool   `json:"disable_comment"`
	DisableStitch         bool   `json:"disable_stitch"`
	VideoCoverTimestampMs int    `json:"video_cover_timestamp_ms"`
	IsAIGC                bool   `json:"is_aigc"`
}

type VideoFileSourceInfo struct {
	Source          string `json:"source"`
	VideoSize       int64  `json:"video_size"`
	ChunkSize       int64  `json:"chunk_size"`
	TotalChunkCount int    `json:"total_chunk_count"`
}

type VideoInitRequest struct {
	PostInfo   VideoPostInfo       `json:"post_info"`
	SourceInfo VideoFileSourceInfo `json:"source_info"`
}
