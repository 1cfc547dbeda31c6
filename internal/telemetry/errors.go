package telemetry

import "encoding/json"

// DeliveryError is the normalized record of a failed send. StatusCode 0 means
// no HTTP response was received (connection error, timeout).
type DeliveryError struct {
	Message           string `json:"message"`
	StatusCode        int    `json:"statusCode,omitempty"`
	StatusDescription string `json:"statusDescription,omitempty"`
	InnerMessage      string `json:"innerMessage,omitempty"`
	RawResponseBody   string `json:"rawResponseBody,omitempty"`
	RequestID         string `json:"requestId,omitempty"`
}

// Error returns the primary failure message.
func (e *DeliveryError) Error() string {
	return e.Message
}

// remoteFailure carries a DeliveryError serialized by the send goroutine. The
// goroutine boundary transports plain bytes, not live error values, so the
// receiving side reconstructs the structured record by deserializing.
type remoteFailure struct {
	payload []byte
}

// Error returns the serialized payload; Normalize parses it back into a
// DeliveryError.
func (e *remoteFailure) Error() string {
	return string(e.payload)
}

// encodeFailure serializes de for transport out of the send goroutine. If
// serialization itself fails the original error is returned so the failure is
// never lost.
func encodeFailure(de *DeliveryError) error {
	payload, err := json.Marshal(de)
	if err != nil {
		return de
	}
	return &remoteFailure{payload: payload}
}
