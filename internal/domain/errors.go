package domain

import "errors"

var (
	ErrEmptyText          = errors.New("report text is empty")
	ErrTextTooLong        = errors.New("report text exceeds maximum allowed size")
	ErrInvalidEncoding    = errors.New("report text is not valid UTF-8")
	ErrUnknownReportType  = errors.New("unknown report type")
	ErrUnsupportedFormat  = errors.New("unsupported export format")
	ErrNoGenerator        = errors.New("no generative client configured")
	ErrMalformedOutput    = errors.New("generative output is malformed")
	ErrNoCodesSuggested   = errors.New("no diagnostic codes suggested")
	ErrCatalogUnreadable  = errors.New("diagnostic code catalog could not be read")
	ErrInvalidTrainingPos = errors.New("invalid training pair position")
)
