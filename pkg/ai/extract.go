package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

// ExtractJSON returns the first balanced {...} or [...] span in content that
// decodes as JSON. Brackets inside string literals are ignored.
func ExtractJSON(content string) (string, error) {
	for start := 0; start < len(content); start++ {
		if content[start] != '{' && content[start] != '[' {
			continue
		}
		end := matchBracket(content, start)
		if end < 0 {
			continue
		}
		candidate := content[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}
	return "", ErrUnparseableResponse
}

func matchBracket(content string, start int) int {
	stack := make([]byte, 0, 8)
	inString := false
	escaped := false

	for i := start; i < len(content); i++ {
		ch := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != ch {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}

// ParseAssessment extracts and decodes an assessment from raw model output.
func ParseAssessment(content string) (Assessment, error) {
	span, err := ExtractJSON(content)
	if err != nil {
		return Assessment{}, err
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(span), &decoded); err != nil {
		return Assessment{}, fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
	}

	object, ok := firstObject(decoded)
	if !ok {
		return Assessment{}, fmt.Errorf("%w: expected a json object", ErrUnparseableResponse)
	}

	fields := normalizeKeys(object)
	assessment := Assessment{
		Title:        stringField(fields, "title", "name", "ideatitle"),
		Description:  stringField(fields, "description", "refineddescription", "summary"),
		Category:     stringField(fields, "category"),
		Tags:         listField(fields, "tags", "keywords"),
		PainPoints:   listField(fields, "painpoints", "problems"),
		Features:     listField(fields, "features", "keyfeatures", "solutions"),
		UserPersonas: listField(fields, "userpersonas", "personas", "targetusers"),
		Suggestions:  listField(fields, "suggestions", "recommendations", "improvements"),
		Strengths:    listField(fields, "strengths"),
		Weaknesses:   listField(fields, "weaknesses"),
		NextSteps:    listField(fields, "nextsteps", "actionplan"),
		Risks:        listField(fields, "risks"),
		Timeline:     stringField(fields, "timeline"),
		Score:        numberField(fields, "score", "maturityscore", "overallscore"),
	}

	if reality, ok := objectField(fields, "realitycheck"); ok {
		assessment.RealityCheck = RealityCheck{
			MarketDemand:             stringField(reality, "marketdemand", "demand"),
			CompetitionLevel:         stringField(reality, "competitionlevel", "competition"),
			Profitability:            stringField(reality, "profitability"),
			ImplementationDifficulty: stringField(reality, "implementationdifficulty", "difficulty"),
			FatalFlaws:               listField(reality, "fatalflaws", "flaws"),
		}
	}

	if market, ok := objectField(fields, "marketanalysis", "market", "marketpotential"); ok {
		assessment.Market = MarketInsight{
			Size:           stringField(market, "size", "marketsize"),
			Competition:    stringField(market, "competition", "competitionlevel"),
			Demand:         stringField(market, "demand", "marketdemand"),
			TargetAudience: stringField(market, "targetaudience", "audience"),
			Trends:         listField(market, "trends"),
		}
	}

	return assessment, nil
}

func firstObject(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		return v, true
	case []interface{}:
		for _, item := range v {
			if object, ok := item.(map[string]interface{}); ok {
				return object, true
			}
		}
	}
	return nil, false
}

func normalizeKeys(object map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(object))
	replacer := strings.NewReplacer("_", "", "-", "", " ", "")
	for key, value := range object {
		out[strings.ToLower(replacer.Replace(key))] = value
	}
	return out
}

func lookup(fields map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, key := range keys {
		if value, ok := fields[key]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

func objectField(fields map[string]interface{}, keys ...string) (map[string]interface{}, bool) {
	value, ok := lookup(fields, keys...)
	if !ok {
		return nil, false
	}
	object, ok := value.(map[string]interface{})
	if !ok {
		return nil, false
	}
	return normalizeKeys(object), true
}

func stringField(fields map[string]interface{}, keys ...string) string {
	value, ok := lookup(fields, keys...)
	if !ok {
		return ""
	}
	return scalarString(value)
}

func scalarString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case map[string]interface{}:
		fields := normalizeKeys(v)
		return stringField(fields, "name", "title", "description", "text", "value")
	}
	return ""
}

func listField(fields map[string]interface{}, keys ...string) []string {
	value, ok := lookup(fields, keys...)
	if !ok {
		return nil
	}

	switch v := value.(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if text := scalarString(item); text != "" {
				out = append(out, text)
			}
		}
		return out
	case string:
		return splitList(v)
	}

	if text := scalarString(value); text != "" {
		return []string{text}
	}
	return nil
}

func splitList(value string) []string {
	var parts []string
	switch {
	case strings.Contains(value, "\n"):
		parts = strings.Split(value, "\n")
	case strings.Contains(value, ";"):
		parts = strings.Split(value, ";")
	default:
		parts = strings.Split(value, ",")
	}

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		cleaned := strings.TrimSpace(listMarker.ReplaceAllString(part, ""))
		if cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

func numberField(fields map[string]interface{}, keys ...string) *float64 {
	value, ok := lookup(fields, keys...)
	if !ok {
		return nil
	}

	var parsed float64
	switch v := value.(type) {
	case float64:
		parsed = v
	case string:
		text := strings.TrimSuffix(strings.TrimSpace(v), "%")
		scale := 1.0
		if numerator, denominator, found := strings.Cut(text, "/"); found {
			text = strings.TrimSpace(numerator)
			if strings.TrimSpace(denominator) == "10" {
				scale = 10
			}
		}
		number, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil
		}
		parsed = number * scale
	default:
		return nil
	}

	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil
	}
	if parsed < 0 {
		parsed = 0
	}
	if parsed > 100 {
		parsed = 100
	}
	return &parsed
}
