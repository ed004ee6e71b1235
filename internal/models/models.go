package models

import "time"

// Status enums. These are stored as plain strings in Firestore; the typed
// aliases exist so transition logic can't mix document and applicant states.

type ApplicantStatus string

const (
	ApplicantNotSubmitted ApplicantStatus = "not-submitted"
	ApplicantIncomplete   ApplicantStatus = "incomplete"
	ApplicantComplete     ApplicantStatus = "complete"
)

type DocumentStatus string

const (
	DocNotSubmitted  DocumentStatus = "not-submitted"
	DocDelayed       DocumentStatus = "delayed"
	DocSubmitted     DocumentStatus = "submitted"
	DocAdminChecked  DocumentStatus = "admin-checked"
	DocAccepted      DocumentStatus = "accepted"
	DocRejected      DocumentStatus = "rejected"
	DocNotApplicable DocumentStatus = "not-applicable"
)

type StitchStatus string

const (
	StitchPending  StitchStatus = "stitching"
	StitchComplete StitchStatus = "stitched"
	StitchFailed   StitchStatus = "failed"
)

type MessageType string

const (
	MessageEmail MessageType = "email"
	MessageSMS   MessageType = "sms"
)

type MessageDeliveryStatus string

const (
	DeliveryPending      MessageDeliveryStatus = "Pending"
	DeliveryDelivered    MessageDeliveryStatus = "Delivered"
	DeliveryNotDelivered MessageDeliveryStatus = "Not Delivered"
)

type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPDF  Format = "pdf"
)

type RejectionReason string

const (
	RejectWrongDocument   RejectionReason = "wrong-document"
	RejectEdgesNotVisible RejectionReason = "edges-not-visible"
	RejectBlurry          RejectionReason = "blurry"
	RejectTooDark         RejectionReason = "too-dark"
	RejectOther           RejectionReason = "other"
)

// Company is created by onboarding and read-only from the core's perspective,
// except for the denormalized users list.
type Company struct {
	CreatedAt    time.Time      `firestore:"createdAt"`
	Name         string         `firestore:"name"`
	Users        []string       `firestore:"users"`
	Logo         string         `firestore:"logo,omitempty"`
	MessageTypes []MessageType  `firestore:"messageTypes"`
	Options      CompanyOptions `firestore:"options"`
}

// CompanyOptions is injected into handlers as a value rather than read from
// ambient state; AdminCheck gates the human review step.
type CompanyOptions struct {
	AdminCheck bool `firestore:"adminCheck"`
	MobileOnly bool `firestore:"mobileOnly"`
	ImageOnly  bool `firestore:"imageOnly"`
}

type User struct {
	CreatedAt time.Time  `firestore:"createdAt"`
	Company   CompanyRef `firestore:"company"`
	Email     string     `firestore:"email"`
	Name      PersonName `firestore:"name"`
}

type CompanyRef struct {
	ID   string `firestore:"id"`
	Name string `firestore:"name"`
}

type PersonName struct {
	First  string `firestore:"first"`
	Middle string `firestore:"middle,omitempty"`
	Last   string `firestore:"last"`
}

type PhoneNumbers struct {
	Primary   string `firestore:"primary"`
	Secondary string `firestore:"secondary,omitempty"`
}

// DashboardDoc is one configured document type on a dashboard.
type DashboardDoc struct {
	Format       Format  `firestore:"format"`
	IsRequired   bool    `firestore:"isRequired"`
	Sample       *Sample `firestore:"sample,omitempty"`
	Instructions string  `firestore:"instructions,omitempty"`
	Alias        string  `firestore:"alias,omitempty"`
	DocNumber    int     `firestore:"docNumber"`
}

type Sample struct {
	File        string `firestore:"file"`
	ContentType string `firestore:"contentType"`
}

// ApplicantItem is a pending-invite queue entry on a dashboard.
type ApplicantItem struct {
	Email        string        `firestore:"email"`
	Name         *PersonName   `firestore:"name,omitempty"`
	PhoneNumbers *PhoneNumbers `firestore:"phoneNumbers,omitempty"`
	Address      string        `firestore:"address,omitempty"`
}

// Dashboard covers both the draft and published shapes; the publish handler
// fires on the one-way false→true flip of IsPublished. The aggregate counters
// are eventually-consistent sums over child applicant state.
type Dashboard struct {
	CreatedAt   time.Time               `firestore:"createdAt"`
	CreatedBy   string                  `firestore:"createdBy"`
	Country     string                  `firestore:"country"`
	Job         string                  `firestore:"job"`
	Title       string                  `firestore:"title"`
	Deadline    time.Time               `firestore:"deadline"`
	FormContent FormContent             `firestore:"formContent"`
	Docs        map[string]DashboardDoc `firestore:"docs"`
	Messages    DashboardMessages       `firestore:"messages"`

	NewApplicants []ApplicantItem `firestore:"newApplicants"`

	IsPublished bool      `firestore:"isPublished"`
	PublishedAt time.Time `firestore:"publishedAt,omitempty"`

	ApplicantsCount           int `firestore:"applicantsCount,omitempty"`
	IncompleteApplicantsCount int `firestore:"incompleteApplicantsCount,omitempty"`
	CompleteApplicantsCount   int `firestore:"completeApplicantsCount,omitempty"`
	ActionsCount              int `firestore:"actionsCount,omitempty"`
	MessagesSentCount         int `firestore:"messagesSentCount,omitempty"`
}

type FormContent struct {
	Header  string `firestore:"header"`
	Caption string `firestore:"caption"`
}

type DashboardMessages struct {
	Opening string `firestore:"opening"`
}

// LatestMessage is the simplified delivery state surfaced on the applicant.
type LatestMessage struct {
	ID     string                `firestore:"id"`
	Status MessageDeliveryStatus `firestore:"status"`
	SentAt time.Time             `firestore:"sentAt"`
}

// Applicant is owned by one dashboard. The four counters obey
// AcceptedDocs <= AdminAcceptedDocs <= TotalDocs after every transition, and
// Status is derived from them.
type Applicant struct {
	CreatedAt    time.Time     `firestore:"createdAt,serverTimestamp"`
	Email        string        `firestore:"email"`
	Name         *PersonName   `firestore:"name,omitempty"`
	PhoneNumbers *PhoneNumbers `firestore:"phoneNumbers,omitempty"`
	Address      string        `firestore:"address,omitempty"`

	Dashboard ApplicantDashboard `firestore:"dashboard"`
	FormID    string             `firestore:"formId,omitempty"`

	Status                ApplicantStatus `firestore:"status"`
	TotalDocs             int             `firestore:"totalDocs"`
	AdminAcceptedDocs     int             `firestore:"adminAcceptedDocs"`
	AcceptedDocs          int             `firestore:"acceptedDocs"`
	UnCheckedOptionalDocs int             `firestore:"unCheckedOptionalDocs"`

	LatestMessage *LatestMessage `firestore:"latestMessage,omitempty"`
	ResendLink    bool           `firestore:"resendLink,omitempty"`
	IsDeleted     bool           `firestore:"isDeleted,omitempty"`
}

type ApplicantDashboard struct {
	ID          string    `firestore:"id"`
	SubmittedAt time.Time `firestore:"submittedAt,omitempty"`
}

// Rejection is the reason payload attached to a rejected document.
type Rejection struct {
	Reasons    []RejectionReason `firestore:"reasons"`
	RejectedBy string            `firestore:"rejectedBy"`
	RejectedAt time.Time         `firestore:"rejectedAt"`
	Message    string            `firestore:"message,omitempty"`
}

// ApplicantDocument is one requested file-type instance for one applicant.
// SubmissionCount is the generation counter bumped on each resubmission;
// pages from a stale generation are never stitched.
type ApplicantDocument struct {
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp"`
	FormID      string    `firestore:"formId"`
	DashboardID string    `firestore:"dashboardId"`
	ApplicantID string    `firestore:"applicantId"`
	CompanyID   string    `firestore:"companyId"`

	Name            string  `firestore:"name"`
	Alias           string  `firestore:"alias,omitempty"`
	UpdatedName     string  `firestore:"updatedName,omitempty"`
	RequestedFormat Format  `firestore:"requestedFormat"`
	IsRequired      bool    `firestore:"isRequired"`
	Sample          *Sample `firestore:"sample,omitempty"`
	Instructions    string  `firestore:"instructions,omitempty"`
	DocNumber       int     `firestore:"docNumber"`

	Status          DocumentStatus `firestore:"status"`
	DeviceSubmitted string         `firestore:"deviceSubmitted,omitempty"`
	TotalPages      int            `firestore:"totalPages"`
	SubmissionCount int            `firestore:"submissionCount"`

	IsUpdating       bool           `firestore:"isUpdating"`
	RestitchDocument bool           `firestore:"restitchDocument,omitempty"`
	StitchStatus     StitchStatus   `firestore:"stitchStatus,omitempty"`
	StitchError      string         `firestore:"stitchError,omitempty"`
	DelayedUntil     time.Time      `firestore:"delayedUntil,omitempty"`
	Rejection        *Rejection     `firestore:"rejection,omitempty"`
	PreviousStatus   DocumentStatus `firestore:"previousStatus,omitempty"`
}

// ImageProperties are the manual adjustment parameters an admin can request
// for a page. Absent values mean no-op for that step.
type ImageProperties struct {
	Brightness  string `firestore:"brightness,omitempty"`
	Contrast    string `firestore:"contrast,omitempty"`
	Sharpness   string `firestore:"sharpness,omitempty"`
	RotateRight string `firestore:"rotateRight"`
	Normalise   bool   `firestore:"normalise"`
}

// ApplicantPage is one physical page of a multi-page document submission.
type ApplicantPage struct {
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time `firestore:"updatedAt,omitempty"`
	DocID       string    `firestore:"docId"`
	FormID      string    `firestore:"formId"`
	DashboardID string    `firestore:"dashboardId"`
	ApplicantID string    `firestore:"applicantId"`
	CompanyID   string    `firestore:"companyId"`

	Name            string `firestore:"name"`
	PageNumber      int    `firestore:"pageNumber"`
	SubmittedFormat string `firestore:"submittedFormat"`
	SubmittedSize   int64  `firestore:"submittedSize"`
	SubmissionCount int    `firestore:"submissionCount"`

	UpdatingFixedImage bool             `firestore:"updatingFixedImage,omitempty"`
	ImageProperties    *ImageProperties `firestore:"imageProperties,omitempty"`
}

// Form is the applicant-facing read model combining applicant, company and
// dashboard context. AdminCheckDocs counts child documents awaiting review.
type Form struct {
	CreatedAt     time.Time     `firestore:"createdAt,serverTimestamp"`
	Applicant     FormApplicant `firestore:"applicant"`
	Company       FormCompany   `firestore:"company"`
	Dashboard     FormDashboard `firestore:"dashboard"`
	AdminCheckDocs int          `firestore:"adminCheckDocs"`
	IsDeleted     bool          `firestore:"isDeleted,omitempty"`
}

type FormApplicant struct {
	ID           string          `firestore:"id"`
	Status       ApplicantStatus `firestore:"status"`
	Name         *PersonName     `firestore:"name,omitempty"`
	Email        string          `firestore:"email"`
	PhoneNumbers *PhoneNumbers   `firestore:"phoneNumbers,omitempty"`
}

type FormCompany struct {
	ID   string `firestore:"id"`
	Logo string `firestore:"logo,omitempty"`
	Name string `firestore:"name"`
}

type FormDashboard struct {
	ID          string            `firestore:"id"`
	FormContent FormContent       `firestore:"formContent"`
	Deadline    time.Time         `firestore:"deadline"`
	Job         string            `firestore:"job"`
	Country     string            `firestore:"country"`
	Messages    DashboardMessages `firestore:"messages"`
}

// Message is created by any notification-triggering event and immutable
// except for the provider status patch written back after dispatch.
type Message struct {
	CreatedAt    time.Time     `firestore:"createdAt,serverTimestamp"`
	UpdatedAt    time.Time     `firestore:"updatedAt,omitempty"`
	MessageTypes []MessageType `firestore:"messageTypes"`
	EmailData    *EmailData    `firestore:"emailData,omitempty"`
	SMSData      *SMSData      `firestore:"smsData,omitempty"`
}

type Recipient struct {
	Email string `firestore:"email" json:"email"`
	Type  string `firestore:"type,omitempty" json:"type,omitempty"`
}

type EmailData struct {
	Subject             string           `firestore:"subject"`
	Recipients          []Recipient      `firestore:"recipients"`
	Body                string           `firestore:"body"`
	FromName            string           `firestore:"fromName,omitempty"`
	Metadata            *MessageMetadata `firestore:"metadata,omitempty"`
	Template            *EmailTemplate   `firestore:"template,omitempty"`
	MessageResponseData *MessageResponse `firestore:"messageResponseData,omitempty"`
}

// EmailTemplate names a provider-side template plus its merge variables.
type EmailTemplate struct {
	Name string            `firestore:"name"`
	Data map[string]string `firestore:"data"`
}

const (
	TemplateDocumentsRequest = "Applicant Documents Request"
	TemplateRejectEmail      = "Applicant Reject Email"
	TemplateTeamInvite       = "Team Invite Message"
)

type MessageMetadata struct {
	ApplicantID string `firestore:"applicantId"`
	DashboardID string `firestore:"dashboardId"`
	CompanyID   string `firestore:"companyId"`
	FormLink    string `firestore:"formLink,omitempty"`
}

// MessageResponse is the per-recipient provider outcome.
type MessageResponse struct {
	ID           string `firestore:"id"`
	Status       string `firestore:"status"`
	RejectReason string `firestore:"rejectReason,omitempty"`
}

type SMSStatus string

const (
	SMSPending  SMSStatus = "Pending"
	SMSSent     SMSStatus = "Sent"
	SMSFailed   SMSStatus = "Failed"
	SMSRefunded SMSStatus = "Refunded"
)

type SMSData struct {
	PhoneNumber string    `firestore:"phoneNumber"`
	Message     string    `firestore:"message"`
	SenderName  string    `firestore:"senderName,omitempty"`
	Status      SMSStatus `firestore:"status,omitempty"`
}

// Invite is a pending team-member invitation.
type Invite struct {
	CreatedAt  time.Time  `firestore:"createdAt"`
	Company    CompanyRef `firestore:"company"`
	Email      string     `firestore:"email"`
	Resend     bool       `firestore:"resend"`
	IsComplete bool       `firestore:"isComplete"`
	InvitedBy  string     `firestore:"invitedBy"`
}

// FullName renders "First Last", tolerating a missing name.
func FullName(n *PersonName) string {
	if n == nil {
		return ""
	}
	if n.First == "" {
		return n.Last
	}
	if n.Last == "" {
		return n.First
	}
	return n.First + " " + n.Last
}
