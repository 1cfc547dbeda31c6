package telemetry

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
)

// Normalize reconstructs a multi-line diagnostic from a failed send. It
// accepts the two failure shapes the dispatcher produces: a direct
// *DeliveryError (synchronous path) and a serialized payload from the send
// goroutine (asynchronous path). Any other shape is returned unchanged so the
// caller can log it as a programming error.
func Normalize(failure error) (string, error) {
	var de *DeliveryError
	switch f := failure.(type) {
	case *DeliveryError:
		de = f
	case *remoteFailure:
		de = &DeliveryError{}
		if err := json.Unmarshal(f.payload, de); err != nil {
			return "", failure
		}
	default:
		return "", failure
	}

	lines := []string{de.Message}

	if de.StatusCode != 0 {
		lines = append(lines, fmt.Sprintf("%d | %s", de.StatusCode, strings.TrimSpace(de.StatusDescription)))
	}

	if de.InnerMessage != "" {
		lines = append(lines, innerLines(de.InnerMessage)...)
	}

	if strings.TrimSpace(de.RawResponseBody) != "" {
		lines = append(lines, de.RawResponseBody)
	}

	if de.RequestID != "" {
		lines = append(lines, fmt.Sprintf("RequestId: %s", de.RequestID))
	}

	return strings.Join(lines, "\n"), nil
}

// innerLines renders the error-detail payload attached to a failure. The
// payload is usually JSON (a plain string or an API error object) but falls
// back to raw text when it is not.
func innerLines(inner string) []string {
	var parsed interface{}
	if err := json.Unmarshal([]byte(inner), &parsed); err != nil {
		return []string{strings.TrimSpace(inner)}
	}

	switch v := parsed.(type) {
	case string:
		return []string{strings.TrimSpace(v)}
	case map[string]interface{}:
		msg, _ := v["message"].(string)
		if strings.TrimSpace(msg) != "" {
			docURL, _ := v["documentation_url"].(string)
			lines := []string{fmt.Sprintf("%s | %s", strings.TrimSpace(msg), strings.TrimSpace(docURL))}
			if details, ok := v["details"].([]interface{}); ok && len(details) > 0 {
				if table := detailTable(details); table != "" {
					lines = append(lines, table)
				}
			}
			return lines
		}
		return []string{fmt.Sprintf("%+v", v)}
	default:
		return []string{fmt.Sprintf("%+v", v)}
	}
}

// detailTable renders API error detail entries as an aligned table, one row
// per entry, with a header of the union of keys in sorted order.
func detailTable(details []interface{}) string {
	keySet := map[string]bool{}
	rows := make([]map[string]interface{}, 0, len(details))
	for _, d := range details {
		m, ok := d.(map[string]interface{})
		if !ok {
			continue
		}
		rows = append(rows, m)
		for k := range m {
			keySet[k] = true
		}
	}
	if len(rows) == 0 {
		return ""
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(keys, "\t"))
	for _, row := range rows {
		cells := make([]string, len(keys))
		for i, k := range keys {
			if val, ok := row[k]; ok {
				cells[i] = fmt.Sprint(val)
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()
	return strings.TrimRight(buf.String(), "\n")
}
