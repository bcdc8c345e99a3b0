package entity

import (
	"github.com/sensepost/edbxtract/bytesx"
	"github.com/sensepost/edbxtract/ese"
)

const (
	colParentFolderID  = "ParentFolderId"
	colFolderDisplay   = "DisplayName"
	colSpecialNumber   = "SpecialFolderNumber"
	colFolderMsgCount  = "ContentCount"
	colMailboxNumber   = "MailboxNumber"
	colMailboxGUID     = "MailboxGuid"
	colOwnerDisplay    = "MailboxOwnerDisplayName"
	colMailboxMsgCount = "MessageCount"
	colLastLogon       = "LastLogonTime"
)

// AssembleFolder fills a Folder from a Folder_XXX row, created once per
// load and owned by the EDB reader thereafter (spec.md §5).
func AssembleFolder(row ese.Row) Folder {
	g := ese.ColumnGetter{Row: row}
	var f Folder

	if fid := g.Raw(colFolderID); len(fid) == 26 {
		copy(f.FolderID[:], fid)
	}
	if pid := g.Raw(colParentFolderID); len(pid) == 26 {
		copy(f.ParentID[:], pid)
	} else {
		f.ParentID = f.FolderID
	}

	f.DisplayName = decodeStringValue(g.Raw(colFolderDisplay))
	if v, ok := g.Int(colSpecialNumber); ok {
		f.SpecialNumber = int(v)
	}
	if v, ok := g.Int(colFolderMsgCount); ok {
		f.MessageCount = int(v)
	}

	return f
}

// AssembleMailbox fills a Mailbox from a Mailbox table row, created once per
// load (spec.md §5).
func AssembleMailbox(row ese.Row) Mailbox {
	g := ese.ColumnGetter{Row: row}
	var m Mailbox

	if v, ok := g.Int(colMailboxNumber); ok {
		m.MailboxNumber = int(v)
	}
	if guid := g.Raw(colMailboxGUID); len(guid) == 16 {
		copy(m.GUID[:], guid)
	}
	m.OwnerDisplayName = decodeStringValue(g.Raw(colOwnerDisplay))
	if v, ok := g.Int(colMailboxMsgCount); ok {
		m.MessageCount = int(v)
	}
	if data := g.Raw(colLastLogon); len(data) == 8 {
		if t, ok := bytesx.FromFileTime(leUint64(data)); ok {
			m.LastLogon, m.HasLastLogon = t, true
		}
	}

	return m
}
