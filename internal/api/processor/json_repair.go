package processor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// AI responses arrive in declining states of health: clean JSON, JSON wrapped
// in markdown fences, JSON with leading prose, and truncated JSON when the
// token budget ran out mid-object. Each parse attempt below handles one more
// degraded state than the previous; a salvaged partial itinerary beats a
// failed pipeline.

type itineraryPayload struct {
	Days []dayPayload `json:"days"`
}

type dayPayload struct {
	DayNumber  int               `json:"day_number"`
	Title      string            `json:"title"`
	Activities []activityPayload `json:"activities"`
}

type activityPayload struct {
	Time          string  `json:"time"`
	Description   string  `json:"description"`
	Type          string  `json:"type"`
	Location      string  `json:"location,omitempty"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// cleanJSONResponse strips markdown fences and leading/trailing prose,
// returning the outermost {...} span.
func cleanJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)

	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
	} else if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}

// repairTruncatedJSON rewinds a truncated document to the last structurally
// complete value and closes every container still open at that point. The scan
// is string-aware so braces inside text do not confuse the bracket stack.
func repairTruncatedJSON(s string) string {
	var stack []byte
	var lastGoodStack []byte
	lastGood := -1
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
				lastGood = i + 1
				lastGoodStack = append(lastGoodStack[:0], stack...)
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, ch)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			lastGood = i + 1
			lastGoodStack = append(lastGoodStack[:0], stack...)
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'e', 'l', 'd':
			// Trailing digit of a number or last letter of true/false/null.
			lastGood = i + 1
			lastGoodStack = append(lastGoodStack[:0], stack...)
		}
	}

	if lastGood < 0 {
		return s
	}

	repaired := strings.TrimRight(s[:lastGood], ", \n\t")
	// A dangling key with no value cannot be closed into valid JSON, whether
	// the cut came after the colon or right after the key string itself.
	if keyIdx := danglingKeyStart(repaired, lastGoodStack); keyIdx >= 0 {
		repaired = strings.TrimRight(repaired[:keyIdx], ", \n\t")
	}
	for i := len(lastGoodStack) - 1; i >= 0; i-- {
		if lastGoodStack[i] == '{' {
			repaired += "}"
		} else {
			repaired += "]"
		}
	}
	return repaired
}

// danglingKeyStart reports the index where a trailing valueless key begins,
// or -1 when the document ends on a complete value. stack holds the
// containers still open at the end of s. Covers both `"key":` and a bare
// `"key"` whose colon was cut off.
func danglingKeyStart(s string, stack []byte) int {
	trimmed := strings.TrimRight(s, " \n\t")
	if trimmed == "" {
		return -1
	}
	end := len(trimmed) - 1
	switch {
	case trimmed[end] == ':':
		closing := prevQuote(trimmed, end-1)
		if closing < 0 {
			return -1
		}
		return prevQuote(trimmed, closing-1)
	case trimmed[end] == '"' && len(stack) > 0 && stack[len(stack)-1] == '{':
		// A bare string directly inside an object is a key awaiting its
		// colon; a string value would sit after one.
		start := prevQuote(trimmed, end-1)
		if start < 0 {
			return -1
		}
		if prev := prevNonSpace(trimmed, start-1); prev >= 0 && (trimmed[prev] == '{' || trimmed[prev] == ',') {
			return start
		}
	}
	return -1
}

func prevQuote(s string, from int) int {
	for i := from; i >= 0; i-- {
		if s[i] == '"' && (i == 0 || s[i-1] != '\\') {
			return i
		}
	}
	return -1
}

func prevNonSpace(s string, from int) int {
	for i := from; i >= 0; i-- {
		switch s[i] {
		case ' ', '\n', '\t', '\r':
		default:
			return i
		}
	}
	return -1
}

var (
	dayNumberRe = regexp.MustCompile(`"day_number"\s*:\s*(\d+)`)
	dayTitleRe  = regexp.MustCompile(`"title"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	activityRe  = regexp.MustCompile(`\{[^{}]*"description"\s*:\s*"(?:[^"\\]|\\.)*"[^{}]*\}`)
)

// scavengeDays is the last structural resort: pull whatever complete day and
// activity objects survive in the raw text, discarding the rest.
func scavengeDays(raw string) []dayPayload {
	markers := dayNumberRe.FindAllStringSubmatchIndex(raw, -1)
	if len(markers) == 0 {
		return nil
	}

	var days []dayPayload
	for i, m := range markers {
		segEnd := len(raw)
		if i+1 < len(markers) {
			segEnd = markers[i+1][0]
		}
		segment := raw[m[0]:segEnd]

		num, _ := strconv.Atoi(raw[m[2]:m[3]])
		day := dayPayload{DayNumber: num}
		if tm := dayTitleRe.FindStringSubmatch(segment); tm != nil {
			day.Title = tm[1]
		}
		for _, actJSON := range activityRe.FindAllString(segment, -1) {
			var act activityPayload
			if err := json.Unmarshal([]byte(actJSON), &act); err == nil && act.Description != "" {
				day.Activities = append(day.Activities, act)
			}
		}
		if len(day.Activities) > 0 {
			days = append(days, day)
		}
	}
	return days
}

// parseItineraryResponse runs the repair cascade over a raw AI response.
func parseItineraryResponse(raw string) ([]dayPayload, error) {
	var payload itineraryPayload
	if err := json.Unmarshal([]byte(raw), &payload); err == nil && len(payload.Days) > 0 {
		return payload.Days, nil
	}

	cleaned := cleanJSONResponse(raw)
	if err := json.Unmarshal([]byte(cleaned), &payload); err == nil && len(payload.Days) > 0 {
		return payload.Days, nil
	}

	repaired := repairTruncatedJSON(cleaned)
	if err := json.Unmarshal([]byte(repaired), &payload); err == nil && len(payload.Days) > 0 {
		return payload.Days, nil
	}

	if days := scavengeDays(raw); len(days) > 0 {
		return days, nil
	}

	return nil, fmt.Errorf("itinerary response could not be parsed or repaired")
}

// parseJSONObject parses a raw AI response into dst with fence stripping and
// truncation repair, for the smaller single-object responses.
func parseJSONObject(raw string, dst any) error {
	if err := json.Unmarshal([]byte(raw), dst); err == nil {
		return nil
	}
	cleaned := cleanJSONResponse(raw)
	if err := json.Unmarshal([]byte(cleaned), dst); err == nil {
		return nil
	}
	repaired := repairTruncatedJSON(cleaned)
	if err := json.Unmarshal([]byte(repaired), dst); err != nil {
		return fmt.Errorf("response could not be parsed or repaired: %w", err)
	}
	return nil
}
