package http

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
)

// NewRequestID returns an ID of the form req_<base36 unix millis>_<8 hex chars>.
func NewRequestID() string {
	return constants.RequestIDPrefix +
		strconv.FormatInt(time.Now().UnixMilli(), 36) + "_" +
		uuid.NewString()[:constants.RequestIDRandomLength]
}
