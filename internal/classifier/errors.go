package classifier

import "errors"

var (
	ErrUnavailable     = errors.New("classifier unavailable")
	ErrInvalidResponse = errors.New("classifier returned invalid response")
)
