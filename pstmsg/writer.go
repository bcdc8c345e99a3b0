package pstmsg

import (
	"sort"

	"github.com/sensepost/edbxtract/entity"
	"github.com/sensepost/edbxtract/ndb"
)

// orphanFolderID is the sentinel FolderID for the synthesized "Orphaned"
// folder (spec.md §3: orphan messages are routed there rather than
// dropped), vanishingly unlikely to collide with a real EDB-assigned
// FolderID.
var orphanFolderID = [26]byte{
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF,
}

// dataStart is the file offset the first data block is written at,
// immediately after the header, rounded up to a 512-byte page boundary.
const dataStart = 1024

// node is one pending NBT entry: a top-level object's data block plus,
// for messages, the subnode tree holding its recipients/attachments.
type node struct {
	nid       NID
	parentNID NID
	dataBID   ndb.BID
	subBID    ndb.BID
}

// Writer assembles a complete PST byte stream from extracted mailbox
// entities, driving the ndb (blocks/pages/B-trees/header) and ltp
// (PC/TC) layers, per spec.md §4.7's Messaging layer contract.
type Writer struct {
	bidCounter uint64
	nids       *nidAllocator
	names      *NameIDMap
	nodes      []node
	blocks     []ndb.Block
}

// NewWriter creates an empty PST writer.
func NewWriter() *Writer {
	return &Writer{nids: newNIDAllocator(), names: NewNameIDMap()}
}

func (w *Writer) allocBID() ndb.BID {
	w.bidCounter++
	return ndb.NewExternalBID(w.bidCounter)
}

func (w *Writer) allocInternalBID() ndb.BID {
	w.bidCounter++
	return ndb.NewInternalBID(w.bidCounter)
}

// addDataNode stores data as one or more blocks and records an NBT entry
// for nid under parentNID, with no subnode tree.
func (w *Writer) addDataNode(nid, parentNID NID, data []byte) {
	bid, blocks := ndb.SplitData(data, w.allocBID)
	w.blocks = append(w.blocks, blocks...)
	w.nodes = append(w.nodes, node{nid: nid, parentNID: parentNID, dataBID: bid})
}

// WriteMailbox renders an entire mailbox (Store, folder hierarchy,
// messages) into the writer's pending node/block set. folders must
// include the root folder (IsRoot() true) and messagesByFolder maps a
// folder's FolderID to the messages it directly contains.
func (w *Writer) WriteMailbox(mailbox entity.Mailbox, folders []entity.Folder, messagesByFolder map[[26]byte][]entity.EmailMessage) {
	folders, messagesByFolder = withOrphanedFolder(folders, messagesByFolder)
	folders = sortFoldersTopological(folders)

	folderNIDs := make(map[[26]byte]NID, len(folders))
	for _, f := range folders {
		folderNIDs[f.FolderID] = w.nids.next(NIDTypeNormalFolder)
	}

	childrenOf := make(map[[26]byte][]entity.Folder)
	var root entity.Folder
	for _, f := range folders {
		if f.IsRoot() {
			root = f
			continue
		}
		childrenOf[f.ParentID] = append(childrenOf[f.ParentID], f)
	}

	rootEntryID := folderNIDs[root.FolderID]
	var wastebasketEntryID, finderEntryID []byte
	for _, f := range folders {
		lname := lowerASCII(f.DisplayName)
		if lname == "deleted items" {
			wastebasketEntryID = nidBytes(folderNIDs[f.FolderID])
		}
		if lname == "search root" {
			finderEntryID = nidBytes(folderNIDs[f.FolderID])
		}
	}
	if wastebasketEntryID == nil {
		wastebasketEntryID = nidBytes(rootEntryID)
	}
	if finderEntryID == nil {
		finderEntryID = nidBytes(rootEntryID)
	}

	storePC := BuildStorePC(mailbox, nidBytes(rootEntryID), wastebasketEntryID, finderEntryID)
	w.addDataNode(NIDMessageStore, 0, storePC)

	for _, f := range folders {
		nid := folderNIDs[f.FolderID]
		parentNID := NID(0)
		if !f.IsRoot() {
			parentNID = folderNIDs[f.ParentID]
		}

		children := childrenOf[f.FolderID]
		folderPC := BuildFolderPC(f, len(children))
		w.addDataNode(nid, parentNID, folderPC)

		hierarchyTC := BuildHierarchyTC(children, func(fid [26]byte) NID { return folderNIDs[fid] })
		w.addDataNode(MakeNID(NIDTypeHierarchyTable, uint32(nid)), nid, hierarchyTC)

		msgs := messagesByFolder[f.FolderID]
		msgNIDs := make(map[int]NID, len(msgs))
		for _, m := range msgs {
			msgNIDs[m.RecordIndex] = w.nids.next(NIDTypeNormalMessage)
		}
		contentsTC := BuildContentsTC(msgs, func(idx int) NID { return msgNIDs[idx] })
		w.addDataNode(MakeNID(NIDTypeContentsTable, uint32(nid)), nid, contentsTC)

		for _, m := range msgs {
			w.writeMessage(m, nid, msgNIDs[m.RecordIndex])
		}
	}
}

// withOrphanedFolder synthesizes an "Orphaned" folder under the root and
// routes any message whose FolderID names no folder in folders into it,
// instead of losing the message (it would otherwise be indexed under a key
// no folder in the emission loop below ever visits).
func withOrphanedFolder(folders []entity.Folder, messagesByFolder map[[26]byte][]entity.EmailMessage) ([]entity.Folder, map[[26]byte][]entity.EmailMessage) {
	known := make(map[[26]byte]bool, len(folders))
	var root entity.Folder
	for _, f := range folders {
		known[f.FolderID] = true
		if f.IsRoot() {
			root = f
		}
	}

	var orphans []entity.EmailMessage
	for fid, msgs := range messagesByFolder {
		if !known[fid] {
			orphans = append(orphans, msgs...)
		}
	}
	if len(orphans) == 0 {
		return folders, messagesByFolder
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].RecordIndex < orphans[j].RecordIndex })

	out := make([]entity.Folder, len(folders), len(folders)+1)
	copy(out, folders)
	out = append(out, entity.Folder{
		FolderID:    orphanFolderID,
		ParentID:    root.FolderID,
		DisplayName: "Orphaned",
	})

	effective := make(map[[26]byte][]entity.EmailMessage, len(messagesByFolder)+1)
	for fid, msgs := range messagesByFolder {
		if known[fid] {
			effective[fid] = msgs
		}
	}
	effective[orphanFolderID] = orphans

	return out, effective
}

// sortFoldersTopological reorders folders into parent-before-child order
// via BFS from the root, regardless of the row order the ESE table handed
// them in (spec.md §5 Ordering guarantees; §8 Testable Property 6).
func sortFoldersTopological(folders []entity.Folder) []entity.Folder {
	var root entity.Folder
	haveRoot := false
	childrenOf := make(map[[26]byte][]entity.Folder, len(folders))
	for _, f := range folders {
		if f.IsRoot() {
			root, haveRoot = f, true
		} else {
			childrenOf[f.ParentID] = append(childrenOf[f.ParentID], f)
		}
	}
	if !haveRoot {
		return folders
	}

	out := make([]entity.Folder, 0, len(folders))
	visited := make(map[[26]byte]bool, len(folders))
	queue := []entity.Folder{root}
	visited[root.FolderID] = true
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		out = append(out, f)
		for _, c := range childrenOf[f.FolderID] {
			if !visited[c.FolderID] {
				visited[c.FolderID] = true
				queue = append(queue, c)
			}
		}
	}
	// A folder unreachable from root (e.g. a dangling ParentID) is still
	// emitted rather than silently dropped.
	for _, f := range folders {
		if !visited[f.FolderID] {
			visited[f.FolderID] = true
			out = append(out, f)
		}
	}
	return out
}

func (w *Writer) writeMessage(m entity.EmailMessage, folderNID, msgNID NID) {
	pc := BuildMessagePC(m)
	bid, blocks := ndb.SplitData(pc, w.allocBID)
	w.blocks = append(w.blocks, blocks...)

	recipientsTC := BuildRecipientsTC(m)
	recipBID, recipBlocks := ndb.SplitData(recipientsTC, w.allocBID)
	w.blocks = append(w.blocks, recipBlocks...)

	attachTC, attachSubnodes, attachBlocks, err := BuildAttachmentsTC(m, w.allocBID)
	if err != nil {
		// Attachment data could not be resolved; the message is still
		// written without its attachment payloads rather than dropped.
		attachTC, attachSubnodes, attachBlocks = nil, nil, nil
	}
	attachTCBID, attachTCBlocks := ndb.SplitData(attachTC, w.allocBID)
	w.blocks = append(w.blocks, attachBlocks...)
	w.blocks = append(w.blocks, attachTCBlocks...)

	subnodeEntries := append([]ndb.SubnodeEntry{
		{NID: subnodeRecipientTable, BIDData: recipBID},
		{NID: subnodeAttachmentTable, BIDData: attachTCBID},
	}, attachSubnodes...)
	sort.Slice(subnodeEntries, func(i, j int) bool { return subnodeEntries[i].NID < subnodeEntries[j].NID })

	subBID, subBlocks := ndb.BuildSubnodeBlocks(subnodeEntries, w.allocInternalBID)
	w.blocks = append(w.blocks, subBlocks...)

	w.nodes = append(w.nodes, node{nid: msgNID, parentNID: folderNID, dataBID: bid, subBID: subBID})
}

// Finalize lays out every accumulated block sequentially, builds the NBT
// and BBT, allocates AMap pages tracking the resulting file size, and
// returns the complete PST byte stream.
func (w *Writer) Finalize() []byte {
	offsets := make(map[ndb.BID]uint64, len(w.blocks))
	blockData := make([]byte, 0, len(w.blocks)*64)
	offset := uint64(dataStart)
	for _, b := range w.blocks {
		offsets[b.BID] = offset
		encoded := b.Encode()
		blockData = append(blockData, encoded...)
		offset += uint64(len(encoded))
	}

	bbt := ndb.NewBTreeBuilder(ndb.PageTypeBBT, w.allocInternalBID)
	for _, b := range w.blocks {
		value := make([]byte, 16)
		putLE64(value[0:8], offsets[b.BID])
		putLE16(value[8:10], uint16(len(b.Data)))
		putLE16(value[10:12], 1) // cRef: one referencing node assumed
		bbt.Add(ndb.LeafEntry{Key: uint64(b.BID), Value: value})
	}
	bbtRoot, bbtPages := bbt.Build()

	nbt := ndb.NewBTreeBuilder(ndb.PageTypeNBT, w.allocInternalBID)
	for _, n := range w.nodes {
		value := make([]byte, 24)
		putLE64(value[0:8], uint64(n.dataBID))
		putLE64(value[8:16], uint64(n.subBID))
		putLE64(value[16:24], uint64(n.parentNID))
		nbt.Add(ndb.LeafEntry{Key: uint64(n.nid), Value: value})
	}
	nbtRoot, nbtPages := nbt.Build()

	// BBT pages follow the NBT pages in the output.
	nbtBase := dataStart + uint64(len(blockData))
	bbtBase := nbtBase
	for _, p := range nbtPages {
		bbtBase += uint64(len(p.Encode()))
	}
	var btreePages []byte
	for _, p := range append(nbtPages, bbtPages...) {
		btreePages = append(btreePages, p.Encode()...)
	}
	offset += uint64(len(btreePages))

	amap := ndb.NewAMapAllocator(dataStart, w.allocInternalBID)
	amap.Allocate(int(offset - dataStart))
	var amapPages []byte
	for _, p := range amap.Pages() {
		amapPages = append(amapPages, p.Encode()...)
	}
	offset += uint64(len(amapPages))

	header := ndb.Header{
		NBTRootBID:    nbtRoot,
		NBTRootOffset: nbtPageOffset(nbtPages, nbtRoot, nbtBase),
		BBTRootBID:    bbtRoot,
		BBTRootOffset: nbtPageOffset(bbtPages, bbtRoot, bbtBase),
		NextBID:       w.bidCounter + 1,
		NextPage:      uint32(len(nbtPages) + len(bbtPages) + len(amapPages)),
		FileSize:      offset,
	}

	out := make([]byte, 0, offset)
	out = append(out, header.Encode()...)
	out = append(out, make([]byte, dataStart-ndb.HeaderSize)...)
	out = append(out, blockData...)
	out = append(out, btreePages...)
	out = append(out, amapPages...)
	return out
}

func nbtPageOffset(pages []ndb.Page, root ndb.BID, base uint64) uint64 {
	off := base
	for _, p := range pages {
		if p.BID == root {
			return off
		}
		off += uint64(len(p.Encode()))
	}
	return base
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

func nidBytes(nid NID) []byte {
	b := make([]byte, 4)
	putLE32(b, uint32(nid))
	return b
}

func putLE16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func putLE32(b []byte, v uint32) {
	for i := 0; i < 4; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
}

func putLE64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
}
