package gcp

import "cloud.google.com/go/firestore"

// Refs resolves the canonical Firestore paths for every record kind. All
// services address the store through these helpers so the layout lives in
// one place.
type Refs struct {
	client *firestore.Client
}

func NewRefs(client *firestore.Client) Refs {
	return Refs{client: client}
}

func (r Refs) Companies() *firestore.CollectionRef {
	return r.client.Collection("companies")
}

func (r Refs) Company(companyID string) *firestore.DocumentRef {
	return r.Companies().Doc(companyID)
}

func (r Refs) Users(companyID string) *firestore.CollectionRef {
	return r.Company(companyID).Collection("users")
}

func (r Refs) User(companyID, userID string) *firestore.DocumentRef {
	return r.Users(companyID).Doc(userID)
}

func (r Refs) Dashboards(companyID string) *firestore.CollectionRef {
	return r.Company(companyID).Collection("dashboards")
}

func (r Refs) Dashboard(companyID, dashboardID string) *firestore.DocumentRef {
	return r.Dashboards(companyID).Doc(dashboardID)
}

func (r Refs) Applicants(companyID, dashboardID string) *firestore.CollectionRef {
	return r.Dashboard(companyID, dashboardID).Collection("applicants")
}

func (r Refs) Applicant(companyID, dashboardID, applicantID string) *firestore.DocumentRef {
	return r.Applicants(companyID, dashboardID).Doc(applicantID)
}

func (r Refs) Documents(companyID string) *firestore.CollectionRef {
	return r.Company(companyID).Collection("documents")
}

func (r Refs) Document(companyID, documentID string) *firestore.DocumentRef {
	return r.Documents(companyID).Doc(documentID)
}

func (r Refs) Pages(companyID string) *firestore.CollectionRef {
	return r.Company(companyID).Collection("pages")
}

func (r Refs) Page(companyID, pageID string) *firestore.DocumentRef {
	return r.Pages(companyID).Doc(pageID)
}

func (r Refs) Forms() *firestore.CollectionRef {
	return r.client.Collection("forms")
}

func (r Refs) Form(formID string) *firestore.DocumentRef {
	return r.Forms().Doc(formID)
}

func (r Refs) Messages() *firestore.CollectionRef {
	return r.client.Collection("messages")
}

func (r Refs) Message(messageID string) *firestore.DocumentRef {
	return r.Messages().Doc(messageID)
}

func (r Refs) Invites() *firestore.CollectionRef {
	return r.client.Collection("invites")
}
