package models

type AnalysisRedFlag struct {
	Type        string `bson:"type" firestore:"type" json:"type"`
	Severity    string `bson:"severity" firestore:"severity" json:"severity"`
	Answer      string `bson:"answer" firestore:"answer" json:"answer"`
	Explanation string `bson:"explanation" firestore:"explanation" json:"explanation"`
	Suggestion  string `bson:"suggestion" firestore:"suggestion" json:"suggestion"`
	Impact      string `bson:"impact" firestore:"impact" json:"impact"`
}

type AnswerScores struct {
	Clarity      float64 `bson:"clarity" firestore:"clarity" json:"clarity"`
	Confidence   float64 `bson:"confidence" firestore:"confidence" json:"confidence"`
	Specificity  float64 `bson:"specificity" firestore:"specificity" json:"specificity"`
	ReturnIntent float64 `bson:"return_intent" firestore:"returnIntent" json:"returnIntent"`
}

type WeakAnswer struct {
	Original string `bson:"original" firestore:"original" json:"original"`
	Issue    string `bson:"issue" firestore:"issue" json:"issue"`
	Improved string `bson:"improved" firestore:"improved" json:"improved"`
}

// AnalysisResult always carries every field; missing keys are defaulted at extraction.
type AnalysisResult struct {
	OverallScore          float64           `bson:"overall_score" firestore:"overallScore" json:"overallScore"`             // 0-10
	ApprovalLikelihood    float64           `bson:"approval_likelihood" firestore:"approvalLikelihood" json:"approvalLikelihood"` // 0-100
	LikelyOutcome         string            `bson:"likely_outcome" firestore:"likelyOutcome" json:"likelyOutcome"`          // approved|denied|uncertain
	KeyFactor             string            `bson:"key_factor" firestore:"keyFactor" json:"keyFactor"`
	RedFlags              []AnalysisRedFlag `bson:"red_flags" firestore:"redFlags" json:"redFlags"`
	Strengths             []string          `bson:"strengths" firestore:"strengths" json:"strengths"`
	Scores                AnswerScores      `bson:"scores" firestore:"scores" json:"scores"`
	Recommendations       []string          `bson:"recommendations" firestore:"recommendations" json:"recommendations"`
	WeakAnswersAnalysis   []WeakAnswer      `bson:"weak_answers_analysis" firestore:"weakAnswersAnalysis" json:"weakAnswersAnalysis"`
	NextFocus             string            `bson:"next_focus" firestore:"nextFocus" json:"nextFocus"`
	ReadyForRealInterview bool              `bson:"ready_for_real_interview" firestore:"readyForRealInterview" json:"readyForRealInterview"`
	WhatsMissing          *string           `bson:"whats_missing" firestore:"whatsMissing" json:"whatsMissing"`
	RecommendedSessions   int               `bson:"recommended_sessions" firestore:"recommendedSessions" json:"recommendedSessions"` // 0-5
}

// RedFlagResult is the per-answer classification produced in practice mode.
type RedFlagResult struct {
	HasRedFlag   bool    `json:"hasRedFlag"`
	Severity     *string `json:"severity"`
	Type         *string `json:"type"`
	Explanation  *string `json:"explanation"`
	BetterAnswer *string `json:"betterAnswer"`
	ShouldPause  bool    `json:"shouldPause"`
}
