package models

// Change-event payloads delivered to the functions as JSON CloudEvent data.
// Each carries the routing ids plus the before/after snapshots of the record
// that changed. Create events leave Before zero; delete events leave After
// zero.

// DocumentChangeEvent fires on writes to
// companies/{companyId}/documents/{documentId}.
type DocumentChangeEvent struct {
	CompanyID  string            `json:"companyId"`
	DocumentID string            `json:"documentId"`
	Before     ApplicantDocument `json:"before"`
	After      ApplicantDocument `json:"after"`
}

// ApplicantChangeEvent fires on writes to
// companies/{companyId}/dashboards/{dashboardId}/applicants/{applicantId}.
type ApplicantChangeEvent struct {
	CompanyID   string    `json:"companyId"`
	DashboardID string    `json:"dashboardId"`
	ApplicantID string    `json:"applicantId"`
	Before      Applicant `json:"before"`
	After       Applicant `json:"after"`
	Created     bool      `json:"created,omitempty"`
}

// DashboardChangeEvent fires on writes to
// companies/{companyId}/dashboards/{dashboardId}.
type DashboardChangeEvent struct {
	CompanyID   string    `json:"companyId"`
	DashboardID string    `json:"dashboardId"`
	Before      Dashboard `json:"before"`
	After       Dashboard `json:"after"`
}

// PageChangeEvent fires on writes to companies/{companyId}/pages/{pageId}.
type PageChangeEvent struct {
	CompanyID string        `json:"companyId"`
	PageID    string        `json:"pageId"`
	Before    ApplicantPage `json:"before"`
	After     ApplicantPage `json:"after"`
	Deleted   bool          `json:"deleted,omitempty"`
}

// FormChangeEvent fires on writes to forms/{formId}.
type FormChangeEvent struct {
	FormID  string `json:"formId"`
	Before  Form   `json:"before"`
	After   Form   `json:"after"`
	Created bool   `json:"created,omitempty"`
}

// MessageChangeEvent fires on writes to messages/{messageId}.
type MessageChangeEvent struct {
	MessageID string  `json:"messageId"`
	Before    Message `json:"before"`
	After     Message `json:"after"`
	Created   bool    `json:"created,omitempty"`
}

// InviteCreateEvent fires on creates to invites/{inviteId}.
type InviteCreateEvent struct {
	InviteID string `json:"inviteId"`
	Invite   Invite `json:"invite"`
}

// UserCreateEvent fires on creates to companies/{companyId}/users/{userId}.
type UserCreateEvent struct {
	CompanyID string `json:"companyId"`
	UserID    string `json:"userId"`
	User      User   `json:"user"`
}

// StorageObjectEvent is the GCS object-finalize / metadata-update payload,
// matching the shape the storage trigger delivers.
type StorageObjectEvent struct {
	Bucket      string            `json:"bucket"`
	Name        string            `json:"name"`
	ContentType string            `json:"contentType"`
	Metadata    map[string]string `json:"metadata"`
}

// ReconcileRequest is the scheduler payload for the counter reconciler.
type ReconcileRequest struct {
	CompanyID   string `json:"companyId"`
	DashboardID string `json:"dashboardId,omitempty"`
}
