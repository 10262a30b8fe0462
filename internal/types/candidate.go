// Package types provides type definitions for the request and response payloads of the candidate intake API.
package types

// CandidateInput is the inbound payload for POST /api/candidate.
// Email is the natural key; callers never supply an identifier.
type CandidateInput struct {
	FirstName    string `json:"firstName" validate:"notblank"`
	LastName     string `json:"lastName" validate:"notblank"`
	PhoneNumber  string `json:"phoneNumber"`
	Email        string `json:"email" validate:"notblank,email"`
	BestCallTime string `json:"bestCallTime"`
	LinkedInURL  string `json:"linkedInUrl" validate:"omitempty,absurl"`
	GitHubURL    string `json:"gitHubUrl" validate:"omitempty,absurl"`
	Comment      string `json:"comment"`
}

// Messages returned in OperationResult.Message.
// Only MsgCandidateSaved is produced today; create and update share it.
const (
	MsgCandidateSaved    = "Candidate records have been saved successfully."
	MsgCandidateUpdated  = "Candidate records have been updated successfully."
	MsgCandidateDeleted  = "Candidate records have been deleted successfully."
	MsgCandidateNotFound = "Candidate record could not be found."
)
