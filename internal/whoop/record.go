package whoop

import (
	"encoding/json"
	"fmt"
	"time"
)

// RawRecord is a single item of a whoop record stream, kept as the decoded JSON object.
// Each stream has its own schema and field names differ between API revisions,
// so nothing is decoded into a typed struct here.
type RawRecord map[string]any

type Stream string

const (
	StreamRecovery Stream = "recovery"
	StreamSleep    Stream = "sleep"
	StreamCycle    Stream = "cycle"
)

var Streams = []Stream{StreamRecovery, StreamSleep, StreamCycle}

func (s Stream) Path() string {
	switch s {
	case StreamRecovery:
		return "/v2/recovery"
	case StreamSleep:
		return "/v2/activity/sleep"
	case StreamCycle:
		return "/v2/cycle"
	default:
		return ""
	}
}

// TimeWindow is the inclusive [Start, End] interval records are requested for.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// continuation token field names seen across the API revisions, in priority order
var nextTokenFields = []string{"next_token", "nextToken", "next_page_token"}

type page struct {
	Records   []RawRecord
	NextToken string
}

func parsePage(body []byte) (*page, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal page: %w", err)
	}

	p := &page{}
	if recordsJson, ok := raw["records"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(recordsJson, &items); err != nil {
			return nil, fmt.Errorf("unmarshal page records: %w", err)
		}
		p.Records = make([]RawRecord, 0, len(items))
		for _, item := range items {
			var rec RawRecord
			// non-object items carry nothing we could use
			if err := json.Unmarshal(item, &rec); err != nil || rec == nil {
				continue
			}
			p.Records = append(p.Records, rec)
		}
	}

	for _, field := range nextTokenFields {
		tokenJson, ok := raw[field]
		if !ok {
			continue
		}
		var token string
		if err := json.Unmarshal(tokenJson, &token); err == nil && token != "" {
			p.NextToken = token
			break
		}
	}

	return p, nil
}
