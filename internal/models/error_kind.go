package models

type ErrorKind string

const (
	ErrOutOfScope          ErrorKind = "OUT_OF_SCOPE"
	ErrConfig              ErrorKind = "CONFIG_ERROR"
	ErrGenerationFailed    ErrorKind = "GENERATION_FAILED"
	ErrValidation          ErrorKind = "VALIDATION_ERROR"
	ErrLocalhost           ErrorKind = "LOCALHOST_ERROR"
	ErrInvalidMediaType    ErrorKind = "INVALID_MEDIA_TYPE"
	ErrFile                ErrorKind = "FILE_ERROR"
	ErrInit                ErrorKind = "INIT_ERROR"
	ErrUpload              ErrorKind = "UPLOAD_ERROR"
	ErrAPI                 ErrorKind = "API_ERROR"
	ErrTimeout             ErrorKind = "TIMEOUT"
	ErrException           ErrorKind = "EXCEPTION"
	ErrPlatformUnsupported ErrorKind = "PLATFORM_UNSUPPORTED"
)
