package model

import "time"

// DocumentSlot names one of the six upload slots of the documents step.
type DocumentSlot string

const (
	SlotPassport         DocumentSlot = "passport"
	SlotPhoto            DocumentSlot = "photo"
	SlotBirthCertificate DocumentSlot = "birthCertificate"
	SlotEducation        DocumentSlot = "education"
	SlotEmployment       DocumentSlot = "employment"
	SlotFinancial        DocumentSlot = "financial"
)

// DocumentSlotInfo describes a slot for display.
type DocumentSlotInfo struct {
	Slot      DocumentSlot `json:"slot"`
	Label     string       `json:"label"`
	Hint      string       `json:"hint"`
	Mandatory bool         `json:"mandatory"`
}

// UploadHint is shown under every empty slot. Nothing enforces it.
const UploadHint = "PDF, JPG, PNG (Max 10MB)"

var documentSlots = []DocumentSlotInfo{
	{Slot: SlotPassport, Label: "Passport Copy", Hint: "Upload passport copy (Bio page)", Mandatory: true},
	{Slot: SlotPhoto, Label: "Passport Size Photo", Hint: "Upload recent passport size photo", Mandatory: true},
	{Slot: SlotBirthCertificate, Label: "Birth Certificate", Hint: "Upload birth certificate", Mandatory: true},
	{Slot: SlotEducation, Label: "Education Certificate", Hint: "Upload highest education certificate"},
	{Slot: SlotEmployment, Label: "Employment Letter", Hint: "Upload current employment letter"},
	{Slot: SlotFinancial, Label: "Financial Documents", Hint: "Upload bank statements / proof of funds"},
}

// DocumentSlots returns the slot table in display order.
func DocumentSlots() []DocumentSlotInfo {
	out := make([]DocumentSlotInfo, len(documentSlots))
	copy(out, documentSlots)
	return out
}

// MandatorySlots are the slots that must be filled before leaving the documents step.
func MandatorySlots() []DocumentSlot {
	return []DocumentSlot{SlotPassport, SlotPhoto, SlotBirthCertificate}
}

// ParseDocumentSlot validates a slot key coming from the outside.
func ParseDocumentSlot(s string) (DocumentSlot, bool) {
	for _, info := range documentSlots {
		if string(info.Slot) == s {
			return info.Slot, true
		}
	}
	return "", false
}

// DocumentRef points at a file the applicant picked. Contents are never kept.
type DocumentRef struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Documents is the fixed slot mapping. A nil field means the slot is empty.
type Documents struct {
	Passport         *DocumentRef `json:"passport"`
	Photo            *DocumentRef `json:"photo"`
	BirthCertificate *DocumentRef `json:"birthCertificate"`
	Education        *DocumentRef `json:"education"`
	Employment       *DocumentRef `json:"employment"`
	Financial        *DocumentRef `json:"financial"`
}

func (d *Documents) field(slot DocumentSlot) **DocumentRef {
	switch slot {
	case SlotPassport:
		return &d.Passport
	case SlotPhoto:
		return &d.Photo
	case SlotBirthCertificate:
		return &d.BirthCertificate
	case SlotEducation:
		return &d.Education
	case SlotEmployment:
		return &d.Employment
	case SlotFinancial:
		return &d.Financial
	}
	return nil
}

// Get returns the reference held by slot, or nil.
func (d Documents) Get(slot DocumentSlot) *DocumentRef {
	if f := d.field(slot); f != nil {
		return *f
	}
	return nil
}

// Set replaces one slot. Unknown slots are ignored.
func (d *Documents) Set(slot DocumentSlot, ref *DocumentRef) {
	if f := d.field(slot); f != nil {
		*f = ref
	}
}

// Count returns how many slots are filled.
func (d Documents) Count() int {
	n := 0
	for _, info := range documentSlots {
		if d.Get(info.Slot) != nil {
			n++
		}
	}
	return n
}

// Names maps every filled slot to its file name.
func (d Documents) Names() map[DocumentSlot]string {
	out := make(map[DocumentSlot]string)
	for _, info := range documentSlots {
		if ref := d.Get(info.Slot); ref != nil {
			out[info.Slot] = ref.Name
		}
	}
	return out
}
