// Package proptag defines the MAPI property-tag table this module's EML and
// PST layers share, adapted from the teacher's mapi/constants.go
// PropertyTag{PropertyType, PropertyID} struct and PidTagXxx/PtypXxx naming
// convention — narrowed to the property set spec.md §4.4/§6 actually needs
// to reconstitute an email/calendar/contact in Outlook.
package proptag

// Tag is a MAPI property tag: PropertyType (low 16 bits) and PropertyID
// (high 16 bits) combine into the 32-bit wire tag via Uint32.
type Tag struct {
	PropertyType uint16
	PropertyID   uint16
}

// Uint32 returns the 32-bit property tag as it appears on the wire:
// propID<<16 | propType.
func (t Tag) Uint32() uint32 {
	return uint32(t.PropertyID)<<16 | uint32(t.PropertyType)
}

// Property types used by the tag table below.
const (
	PtypInteger16 = 0x0002
	PtypInteger32 = 0x0003
	PtypBoolean   = 0x000B
	PtypTime      = 0x0040
	PtypString    = 0x001F // PT_UNICODE
	PtypString8   = 0x001E // PT_STRING8
	PtypBinary    = 0x0102
	PtypGUID      = 0x0048
)

// Property tags spec.md §4.4/§6 names explicitly.
var (
	PidTagSubject             = Tag{PtypString, 0x0037}
	PidTagSenderName          = Tag{PtypString, 0x0C1A}
	PidTagSenderEmailAddress  = Tag{PtypString, 0x0C1F}
	PidTagSenderAddrType      = Tag{PtypString, 0x0C1E}
	PidTagRecipientType       = Tag{PtypInteger32, 0x0C15}
	PidTagClientSubmitTime    = Tag{PtypTime, 0x0039}
	PidTagMessageDeliveryTime = Tag{PtypTime, 0x0E06}
	PidTagImportance          = Tag{PtypInteger32, 0x0017}
	PidTagBody                = Tag{PtypString, 0x1000}
	PidTagHTML                = Tag{PtypBinary, 0x1013}
	PidTagMessageClass        = Tag{PtypString, 0x001A}
	PidTagInternetMessageID   = Tag{PtypString, 0x1035}
	PidTagDisplayName         = Tag{PtypString, 0x3001}
	PidTagAttachFilename      = Tag{PtypString, 0x3704}
	PidTagAttachLongFilename  = Tag{PtypString, 0x3707}
	PidTagAttachDataBin       = Tag{PtypBinary, 0x3701}
	PidTagAttachMimeTag       = Tag{PtypString, 0x370E}
	PidTagAttachMethod        = Tag{PtypInteger32, 0x3705}
	PidTagMessageFlags        = Tag{PtypInteger32, 0x0E07}
	PidTagHasAttachments      = Tag{PtypBoolean, 0x0E1B}
	PidTagRecordKey           = Tag{PtypBinary, 0x0FF9}
	PidTagRootMailbox         = Tag{PtypInteger32, 0x35E0}
	PidTagIPMSubtreeEntryID   = Tag{PtypBinary, 0x35E2}
	PidTagIPMWastebasketEID   = Tag{PtypBinary, 0x35E3}
	PidTagFinderEntryID       = Tag{PtypBinary, 0x35E7}
)

// RecipientType mirrors PR_RECIPIENT_TYPE's 1/2/3 domain (To/Cc/Bcc).
type RecipientType int32

const (
	RecipientTo RecipientType = iota + 1
	RecipientCc
	RecipientBcc
)

// Importance mirrors PR_IMPORTANCE's 0/1/2 domain (Low/Normal/High).
type Importance int32

const (
	ImportanceLow Importance = iota
	ImportanceNormal
	ImportanceHigh
)

// AttachMethodByValue is the only PR_ATTACH_METHOD value this module
// synthesizes (spec.md §4.4: "PR_ATTACH_METHOD = 1").
const AttachMethodByValue = 1
