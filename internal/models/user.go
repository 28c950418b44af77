package models

import "time"

type UserProfile struct {
	VisaType            string `firestore:"visaType" json:"visaType"`
	Country             string `firestore:"country" json:"country"`
	Age                 int    `firestore:"age" json:"age"`
	Field               string `firestore:"field" json:"field"`
	University          string `firestore:"university,omitempty" json:"university,omitempty"`
	Company             string `firestore:"company,omitempty" json:"company,omitempty"`
	HasRelativesInUS    bool   `firestore:"hasRelativesInUS" json:"hasRelativesInUS"`
	RelativesVisaStatus string `firestore:"relativesVisaStatus,omitempty" json:"relativesVisaStatus,omitempty"`
	InterviewDate       string `firestore:"interviewDate,omitempty" json:"interviewDate,omitempty"`
	PreviousVisa        bool   `firestore:"previousVisa" json:"previousVisa"`
	PreviousApproval    *bool  `firestore:"previousApproval,omitempty" json:"previousApproval,omitempty"`
}

type User struct {
	ID           string      `firestore:"userId" json:"userId"` // uuid
	Email        string      `firestore:"email" json:"email"`
	PasswordHash string      `firestore:"passwordHash" json:"-"`
	Profile      UserProfile `firestore:"profile" json:"profile"`
	CreatedAt    time.Time   `firestore:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time   `firestore:"updatedAt" json:"updatedAt"`
}
