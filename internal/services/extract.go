package services

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/yoockh/visaprep/internal/models"
)

var ErrNoJSONObject = errors.New("no JSON object in model output")

// ExtractJSONObject parses the span from the first '{' to the last '}'.
// Models wrap JSON in prose or code fences; anything outside is ignored.
func ExtractJSONObject(text string) (map[string]any, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, ErrNoJSONObject
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NormalizeAnalysis fills every field of the report, defaulting what the
// model left out or typed wrongly.
func NormalizeAnalysis(raw map[string]any) models.AnalysisResult {
	scores := objField(raw, "scores")
	res := models.AnalysisResult{
		OverallScore:       numField(raw, "overallScore"),
		ApprovalLikelihood: numField(raw, "approvalLikelihood"),
		LikelyOutcome:      strField(raw, "likelyOutcome"),
		KeyFactor:          strField(raw, "keyFactor"),
		RedFlags:           []models.AnalysisRedFlag{},
		Strengths:          strSlice(raw, "strengths"),
		Scores: models.AnswerScores{
			Clarity:      numField(scores, "clarity"),
			Confidence:   numField(scores, "confidence"),
			Specificity:  numField(scores, "specificity"),
			ReturnIntent: numField(scores, "returnIntent"),
		},
		Recommendations:       strSlice(raw, "recommendations"),
		WeakAnswersAnalysis:   []models.WeakAnswer{},
		NextFocus:             strField(raw, "nextFocus"),
		ReadyForRealInterview: boolField(raw, "readyForRealInterview"),
		WhatsMissing:          optStrField(raw, "whatsMissing"),
		RecommendedSessions:   int(math.Round(numField(raw, "recommendedSessions"))),
	}
	if res.LikelyOutcome == "" {
		res.LikelyOutcome = "uncertain"
	}
	for _, item := range objSlice(raw, "redFlags") {
		res.RedFlags = append(res.RedFlags, models.AnalysisRedFlag{
			Type:        strField(item, "type"),
			Severity:    strField(item, "severity"),
			Answer:      strField(item, "answer"),
			Explanation: strField(item, "explanation"),
			Suggestion:  strField(item, "suggestion"),
			Impact:      strField(item, "impact"),
		})
	}
	for _, item := range objSlice(raw, "weakAnswersAnalysis") {
		res.WeakAnswersAnalysis = append(res.WeakAnswersAnalysis, models.WeakAnswer{
			Original: strField(item, "original"),
			Issue:    strField(item, "issue"),
			Improved: strField(item, "improved"),
		})
	}
	return res
}

func NormalizeRedFlag(raw map[string]any) models.RedFlagResult {
	return models.RedFlagResult{
		HasRedFlag:   boolField(raw, "hasRedFlag"),
		Severity:     optStrField(raw, "severity"),
		Type:         optStrField(raw, "type"),
		Explanation:  optStrField(raw, "explanation"),
		BetterAnswer: optStrField(raw, "betterAnswer"),
		ShouldPause:  boolField(raw, "shouldPause"),
	}
}

func numField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, "%")), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func strField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// optStrField maps missing, null and empty strings to nil.
func optStrField(m map[string]any, key string) *string {
	s := strField(m, key)
	if s == "" {
		return nil
	}
	return &s
}

func boolField(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
	}
	return false
}

func objField(m map[string]any, key string) map[string]any {
	if o, ok := m[key].(map[string]any); ok {
		return o
	}
	return map[string]any{}
}

func strSlice(m map[string]any, key string) []string {
	out := []string{}
	arr, _ := m[key].([]any)
	for _, v := range arr {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func objSlice(m map[string]any, key string) []map[string]any {
	var out []map[string]any
	arr, _ := m[key].([]any)
	for _, v := range arr {
		if o, ok := v.(map[string]any); ok {
			out = append(out, o)
		}
	}
	return out
}
