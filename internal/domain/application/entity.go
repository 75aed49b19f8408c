package application

import (
	"strings"
	"time"
)

// Application is a passport application record. Each document slot maps to
// exactly one URL column; an empty or whitespace-only value means the slot
// holds no document. Deletion writes "" rather than NULL, and both read back
// as absent.
type Application struct {
	ID                              int64     `gorm:"column:id;primaryKey" json:"id"`
	OwnerID                         int64     `gorm:"column:owner_id;index" json:"owner_id"`
	FirstName                       string    `gorm:"column:first_name" json:"first_name"`
	MiddleName                      string    `gorm:"column:middle_name" json:"middle_name"`
	LastName                        string    `gorm:"column:last_name" json:"last_name"`
	Status                          string    `gorm:"column:status" json:"status"`
	BirthCertificateURL             string    `gorm:"column:birth_certificate_url" json:"-"`
	ConsentFormURL                  string    `gorm:"column:consent_form_url" json:"-"`
	MarriageOrDivorceCertificateURL string    `gorm:"column:marriage_or_divorce_certificate_url" json:"-"`
	OldPassportCopyURL              string    `gorm:"column:old_passport_copy_url" json:"-"`
	SignatureURL                    string    `gorm:"column:signature_url" json:"-"`
	PhotoIDURL                      string    `gorm:"column:photo_id_url" json:"-"`
	GuardianIDURL                   string    `gorm:"column:guardian_id_url" json:"-"`
	RepresentativeIDURL             string    `gorm:"column:representative_id_url" json:"-"`
	CreatedAt                       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt                       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Application) TableName() string { return "applications" }

// DisplayName builds the applicant's display name from the name parts.
// Missing parts are skipped; an entirely empty name yields "".
func (a *Application) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.FirstName, a.MiddleName, a.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// DocumentURL returns the stored pointer for a slot ("" when absent).
func (a *Application) DocumentURL(slot Slot) string {
	if f := a.urlField(slot); f != nil {
		return *f
	}
	return ""
}

// SetDocumentURL writes a slot's pointer in memory. Persisting it is the
// repository's job.
func (a *Application) SetDocumentURL(slot Slot, url string) {
	if f := a.urlField(slot); f != nil {
		*f = url
	}
}

// HasDocument reports whether a slot holds a live pointer. Whitespace counts
// as absent, matching the document-count convention of the admin console.
func (a *Application) HasDocument(slot Slot) bool {
	return strings.TrimSpace(a.DocumentURL(slot)) != ""
}

// DocumentCount returns the number of slots with a live pointer.
func (a *Application) DocumentCount() int {
	n := 0
	for _, s := range Slots {
		if a.HasDocument(s) {
			n++
		}
	}
	return n
}

func (a *Application) urlField(slot Slot) *string {
	switch slot {
	case SlotBirthCertificate:
		return &a.BirthCertificateURL
	case SlotConsentForm:
		return &a.ConsentFormURL
	case SlotMarriageOrDivorceCertificate:
		return &a.MarriageOrDivorceCertificateURL
	case SlotOldPassportCopy:
		return &a.OldPassportCopyURL
	case SlotSignature:
		return &a.SignatureURL
	case SlotPhotoID:
		return &a.PhotoIDURL
	case SlotGuardianID:
		return &a.GuardianIDURL
	case SlotRepresentativeID:
		return &a.RepresentativeIDURL
	}
	return nil
}
