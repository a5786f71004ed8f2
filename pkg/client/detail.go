package client

import (
	"encoding/json"
	"html"
	"mime"
	"net/http"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

const maxDetailLen = 300

var (
	stripOnce   sync.Once
	stripPolicy *bluemonday.Policy
)

func stripMarkup(s string) string {
	stripOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	return html.UnescapeString(stripPolicy.Sanitize(s))
}

// extractDetail returns the best human readable message of an error reply:
// a JSON detail string, the msg entries of a validation error list, a
// message or error key, the body text without markup, or the status text.
func extractDetail(status int, header http.Header, body []byte) string {
	if msg := jsonDetail(body); msg != "" {
		return truncate(msg)
	}
	if !isJSON(header) {
		text := strings.Join(strings.Fields(stripMarkup(string(body))), " ")
		if text != "" {
			return truncate(text)
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unexpected status"
}

func isJSON(header http.Header) bool {
	mt, _, err := mime.ParseMediaType(header.Get("Content-Type"))
	return err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json"))
}

func jsonDetail(body []byte) string {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "message", "error"} {
		raw, ok := doc[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(raw, &items); err == nil {
			var msgs []string
			for _, item := range items {
				if m := strings.TrimSpace(item.Msg); m != "" {
					msgs = append(msgs, m)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	return ""
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxDetailLen {
		return s
	}
	return string(r[:maxDetailLen-1]) + "…"
}
