package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Reply is the structure the model is instructed to answer with.
type Reply struct {
	NeedsAnimation bool    `json:"needs_animation"`
	Response       string  `json:"response"`
	ManimCode      *string `json:"manim_code"`
}

// HasAnimationCode reports whether the reply asks for an animation and
// carries code to render it.
func (r Reply) HasAnimationCode() bool {
	return r.NeedsAnimation && r.ManimCode != nil && *r.ManimCode != ""
}

var (
	leadingFence  = regexp.MustCompile("^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")

	errNoObject = errors.New("no JSON object found")
)

// ParseReply extracts a Reply from raw model output. It never fails: when the
// output cannot be read as a Reply, it returns the plain-text fallback
// {needs_animation: false, response: raw, manim_code: null} and ok=false.
func ParseReply(raw string) (reply Reply, ok bool) {
	reply, err := parseReply(raw)
	if err != nil {
		log.Warnf("Model reply is not valid reply JSON, using text fallback: %v", err)
		log.Debugf("Raw model reply: %s", raw)
		return Reply{NeedsAnimation: false, Response: raw, ManimCode: nil}, false
	}
	return reply, true
}

func parseReply(raw string) (Reply, error) {
	clean := StripCodeFence(strings.TrimSpace(raw))

	candidate := clean
	if !json.Valid([]byte(clean)) {
		obj, found := ExtractJSONObject(clean)
		if !found {
			return Reply{}, errNoObject
		}
		candidate = obj
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return Reply{}, fmt.Errorf("decode reply: %w", err)
	}

	rawNeeds, hasNeeds := fields["needs_animation"]
	rawResponse, hasResponse := fields["response"]
	if !hasNeeds || !hasResponse {
		return Reply{}, errors.New("invalid response structure: needs_animation and response are required")
	}

	var reply Reply
	if err := json.Unmarshal(rawNeeds, &reply.NeedsAnimation); err != nil {
		return Reply{}, fmt.Errorf("needs_animation is not a boolean: %w", err)
	}
	if err := json.Unmarshal(rawResponse, &reply.Response); err != nil {
		return Reply{}, fmt.Errorf("response is not a string: %w", err)
	}
	if rawCode, ok := fields["manim_code"]; ok {
		if err := json.Unmarshal(rawCode, &reply.ManimCode); err != nil {
			return Reply{}, fmt.Errorf("manim_code is not a string: %w", err)
		}
	}
	return reply, nil
}

// StripCodeFence removes a leading ``` or ```json marker and a trailing ```.
func StripCodeFence(s string) string {
	s = leadingFence.ReplaceAllString(s, "")
	return trailingFence.ReplaceAllString(s, "")
}

// ExtractJSONObject returns the greedy span from the first '{' to the last
// '}' in s. It is a recovery heuristic, not a parser: the span may still be
// invalid JSON, and text with several objects yields everything between the
// outermost braces.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(s, '}')
	if end < start {
		return "", false
	}
	return s[start : end+1], true
}
