package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"modtel/internal/logging"
)

// progressInterval is how often the wait animation advances while an
// asynchronous send is in flight.
const progressInterval = 250 * time.Millisecond

// Dispatcher sends serialized events to the ingestion endpoint. One attempt
// per call; the caller decides whether to retry.
type Dispatcher struct {
	Endpoint   string
	HTTPClient *http.Client
	Logger     logging.Logger

	// Progress receives a small animation while an asynchronous send is in
	// flight. Nil disables it (DefaultNoStatus).
	Progress io.Writer
}

// NewDispatcher returns a dispatcher POSTing to endpoint.
func NewDispatcher(endpoint string, logger logging.Logger) *Dispatcher {
	return &Dispatcher{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{},
		Logger:     logger,
	}
}

// Send serializes event and POSTs it with the given timeout (0 means none).
//
// Synchronous mode performs the HTTP call on the calling goroutine and returns
// a *DeliveryError on transport failure. Asynchronous mode performs the call
// in its own goroutine so the caller's session stays responsive; the failure
// crosses the goroutine boundary as a serialized payload and is returned as an
// error whose message is that payload. Both modes wait for completion.
func (d *Dispatcher) Send(ctx context.Context, event *Event, synchronous bool, timeout time.Duration) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize telemetry event: %w", err)
	}

	if synchronous {
		return d.post(ctx, d.Endpoint, body, timeout)
	}

	// The goroutine receives everything it needs by value and reports back
	// through the channel only; it never touches caller state.
	result := make(chan error, 1)
	endpoint := d.Endpoint
	go func() {
		err := d.post(context.Background(), endpoint, body, timeout)
		if de, ok := err.(*DeliveryError); ok {
			err = encodeFailure(de)
		}
		result <- err
	}()

	return d.wait(result)
}

// wait blocks until the send goroutine reports, animating Progress when set.
func (d *Dispatcher) wait(result chan error) error {
	if d.Progress == nil {
		return <-result
	}
	const frames = `|/-\`
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	i := 0
	for {
		select {
		case err := <-result:
			fmt.Fprint(d.Progress, "\r \r")
			return err
		case <-ticker.C:
			fmt.Fprintf(d.Progress, "\r%c", frames[i%len(frames)])
			i++
		}
	}
}

// post performs one HTTP POST of body to endpoint. It returns nil on 2xx and a
// *DeliveryError describing the failure otherwise.
func (d *Dispatcher) post(ctx context.Context, endpoint string, body []byte, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Message: fmt.Sprintf("build telemetry request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	client := d.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return &DeliveryError{Message: fmt.Sprintf("telemetry request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	de := &DeliveryError{
		Message:           fmt.Sprintf("the remote server returned an error: (%d) %s", resp.StatusCode, statusDescription(resp)),
		StatusCode:        resp.StatusCode,
		StatusDescription: statusDescription(resp),
		RequestID:         requestID(resp),
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		// The secondary failure must never mask the delivery failure.
		if d.Logger != nil {
			d.Logger.Log("failed to read telemetry error response body", logging.LevelWarning, err)
		}
		return de
	}
	if json.Valid(raw) {
		de.InnerMessage = string(raw)
	} else {
		de.RawResponseBody = string(raw)
	}
	return de
}

// statusDescription returns the reason phrase of the response status line.
func statusDescription(resp *http.Response) string {
	desc := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if desc == "" {
		desc = http.StatusText(resp.StatusCode)
	}
	return desc
}

// requestID returns the server's correlation id for the request, if any.
func requestID(resp *http.Response) string {
	if id := resp.Header.Get("Request-Id"); id != "" {
		return id
	}
	return resp.Header.Get("X-Request-Id")
}
