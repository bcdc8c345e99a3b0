package ndb

import "github.com/sensepost/edbxtract/bytesx"

// subnodeEntrySize is the size of one SLENTRY: nid(4) + bidData(8) +
// bidSub(8) = 20 bytes, written back to back with no alignment padding
// (spec.md §4.5's "subnode trees" bullet).
const subnodeEntrySize = 20

// SubnodeEntry is one leaf record of a subnode's own internal B-tree:
// attachments and recipient/hierarchy subobjects are addressed by an
// internal NID distinct from the NBT's top-level node NIDs.
type SubnodeEntry struct {
	NID     uint32
	BIDData BID
	BIDSub  BID // non-zero if this subnode itself owns subnodes
}

// EncodeSLBLOCK serializes a single-level subnode block (SLBLOCK): a flat
// array of SubnodeEntry sorted by NID, sufficient whenever the entries fit
// in one block.
func EncodeSLBLOCK(entries []SubnodeEntry) []byte {
	w := bytesx.NewWriter()
	w.PutUint8(2) // btype: 0x02 identifies SLBLOCK
	w.PutUint8(0) // cLevel: 0 for a leaf subnode block
	w.PutUint16(uint16(len(entries)))
	w.PutUint32(0) // padding
	for _, e := range entries {
		w.PutUint32(e.NID)
		w.PutUint64(uint64(e.BIDData))
		w.PutUint64(uint64(e.BIDSub))
	}
	return w.Bytes()
}

// EncodeSIBLOCK serializes a two-level subnode index block (SIBLOCK),
// referencing the SLBLOCKs that together hold more subnode entries than
// fit in a single block.
func EncodeSIBLOCK(firstNIDs []uint32, slblockBIDs []BID) []byte {
	w := bytesx.NewWriter()
	w.PutUint8(2) // btype: 0x02
	w.PutUint8(1) // cLevel: 1 for an index block
	w.PutUint16(uint16(len(slblockBIDs)))
	w.PutUint32(0)
	for i, bid := range slblockBIDs {
		w.PutUint32(firstNIDs[i])
		w.PutUint32(0) // alignment padding to 8 bytes
		w.PutUint64(uint64(bid))
	}
	return w.Bytes()
}

// BuildSubnodeBlocks packs entries (already sorted by NID) into one or more
// SLBLOCKs, wrapping them in an SIBLOCK if more than one SLBLOCK is needed.
// Returns the BID a node's NBT entry should reference as its bidSub.
func BuildSubnodeBlocks(entries []SubnodeEntry, allocBID func() BID) (BID, []Block) {
	if len(entries) == 0 {
		return 0, nil
	}

	const maxPerBlock = (MaxBlockData - 8) / subnodeEntrySize

	if len(entries) <= maxPerBlock {
		data := EncodeSLBLOCK(entries)
		b := Block{BID: allocBID(), Data: data}
		return b.BID, []Block{b}
	}

	var blocks []Block
	var firstNIDs []uint32
	var slBIDs []BID
	for i := 0; i < len(entries); i += maxPerBlock {
		end := i + maxPerBlock
		if end > len(entries) {
			end = len(entries)
		}
		chunk := entries[i:end]
		data := EncodeSLBLOCK(chunk)
		b := Block{BID: allocBID(), Data: data}
		blocks = append(blocks, b)
		firstNIDs = append(firstNIDs, chunk[0].NID)
		slBIDs = append(slBIDs, b.BID)
	}

	si := EncodeSIBLOCK(firstNIDs, slBIDs)
	siBlock := Block{BID: allocBID(), Data: si}
	blocks = append(blocks, siBlock)
	return siBlock.BID, blocks
}
