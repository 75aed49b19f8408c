package application

// Slot identifies one logical document slot on an application. The set is
// closed: every slot maps to exactly one URL column on Application.
type Slot string

const (
	SlotBirthCertificate             Slot = "birth_certificate"
	SlotConsentForm                  Slot = "consent_form"
	SlotMarriageOrDivorceCertificate Slot = "marriage_or_divorce_certificate"
	SlotOldPassportCopy              Slot = "old_passport_copy"
	SlotSignature                    Slot = "signature"
	SlotPhotoID                      Slot = "photo_id"
	SlotGuardianID                   Slot = "guardian_id"
	SlotRepresentativeID             Slot = "representative_id"
)

// Slots lists every slot in a fixed order (used for fan-out and listings).
var Slots = []Slot{
	SlotBirthCertificate,
	SlotConsentForm,
	SlotMarriageOrDivorceCertificate,
	SlotOldPassportCopy,
	SlotSignature,
	SlotPhotoID,
	SlotGuardianID,
	SlotRepresentativeID,
}

var slotColumns = map[Slot]string{
	SlotBirthCertificate:             "birth_certificate_url",
	SlotConsentForm:                  "consent_form_url",
	SlotMarriageOrDivorceCertificate: "marriage_or_divorce_certificate_url",
	SlotOldPassportCopy:              "old_passport_copy_url",
	SlotSignature:                    "signature_url",
	SlotPhotoID:                      "photo_id_url",
	SlotGuardianID:                   "guardian_id_url",
	SlotRepresentativeID:             "representative_id_url",
}

// ParseSlot validates a slot name coming from the outside (URL params).
func ParseSlot(s string) (Slot, bool) {
	slot := Slot(s)
	_, ok := slotColumns[slot]
	return slot, ok
}

// DocType is the slot's external document-type name, embedded in storage
// paths as {owner}/{docType}_{millis}.{ext}.
func (s Slot) DocType() string { return string(s) }

// Column is the database column backing the slot's pointer field.
func (s Slot) Column() string { return slotColumns[s] }

func (s Slot) Valid() bool {
	_, ok := slotColumns[s]
	return ok
}
