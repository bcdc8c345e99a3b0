package ndb

import (
	"sort"

	"github.com/sensepost/edbxtract/bytesx"
)

// btreeFooterSize is the BTPAGE footer occupying the last 8 bytes of a
// B-tree page's content area: cEnt, cEntMax, cbEnt, cLevel, dwPadding(4).
const btreeFooterSize = 8
const btreeContentSize = pageSize - pageTrailerSize - btreeFooterSize

// LeafEntry is one NBT or BBT leaf record: an 8-byte key (NID zero-extended
// for NBT, BID for BBT) and its pre-encoded value bytes.
type LeafEntry struct {
	Key   uint64
	Value []byte // entry-type-specific payload following the key
}

// entrySize returns the on-disk size of one leaf entry: 8-byte key plus its
// value.
func (e LeafEntry) entrySize() int {
	return 8 + len(e.Value)
}

// BTreeBuilder accumulates leaf entries and produces a balanced B-tree of
// Pages, bottom-up, per spec.md §4.5's "B-tree construction" rule: leaves
// filled in sorted key order, intermediate pages built by upward
// consolidation targeting 50-100% fill.
type BTreeBuilder struct {
	pageType    PageType
	entries     []LeafEntry
	allocBID    func() BID
}

// NewBTreeBuilder creates a builder for the given page type (NBT or BBT).
// allocBID supplies a fresh internal BID for each page the builder emits.
func NewBTreeBuilder(pageType PageType, allocBID func() BID) *BTreeBuilder {
	return &BTreeBuilder{pageType: pageType, allocBID: allocBID}
}

// Add inserts one leaf entry. Entries may be added in any order; Build
// sorts them by key.
func (b *BTreeBuilder) Add(entry LeafEntry) {
	b.entries = append(b.entries, entry)
}

// Build emits the complete page tree and returns the root page's BID along
// with every page produced (leaves first, then each intermediate level).
// An empty tree produces a single empty leaf page.
func (b *BTreeBuilder) Build() (root BID, pages []Page) {
	sort.Slice(b.entries, func(i, j int) bool { return b.entries[i].Key < b.entries[j].Key })

	if len(b.entries) == 0 {
		leaf := b.buildLeafPage(nil)
		pages = append(pages, leaf)
		return leaf.BID, pages
	}

	entrySize := b.entries[0].entrySize()
	perPage := btreeContentSize / entrySize
	if perPage < 1 {
		perPage = 1
	}

	var level []Page
	for i := 0; i < len(b.entries); i += perPage {
		end := i + perPage
		if end > len(b.entries) {
			end = len(b.entries)
		}
		level = append(level, b.buildLeafPage(b.entries[i:end]))
	}
	pages = append(pages, level...)

	// Consolidate upward until a single root page remains.
	for len(level) > 1 {
		nextKeys := make([]uint64, len(level))
		for i, p := range level {
			nextKeys[i] = firstKeyOf(p)
		}
		intermediateEntrySize := 8 + 16 // btkey + BREF{bid,ib}
		perParent := btreeContentSize / intermediateEntrySize
		if perParent < 1 {
			perParent = 1
		}

		var parents []Page
		for i := 0; i < len(level); i += perParent {
			end := i + perParent
			if end > len(level) {
				end = len(level)
			}
			parents = append(parents, b.buildIntermediatePage(level[i:end], nextKeys[i:end]))
		}
		pages = append(pages, parents...)
		level = parents
	}

	return level[0].BID, pages
}

func (b *BTreeBuilder) buildLeafPage(entries []LeafEntry) Page {
	w := bytesx.NewWriter()
	for _, e := range entries {
		w.PutUint64(e.Key)
		w.PutBytes(e.Value)
	}
	entrySize := 0
	if len(entries) > 0 {
		entrySize = entries[0].entrySize()
	}
	return b.finishPage(w, len(entries), entrySize, 0)
}

func (b *BTreeBuilder) buildIntermediatePage(children []Page, keys []uint64) Page {
	w := bytesx.NewWriter()
	for i, child := range children {
		w.PutUint64(keys[i])
		w.PutUint64(uint64(child.BID)) // BREF.bid
		w.PutUint64(0)                 // BREF.ib: file offset, resolved at flush time by the caller
	}
	return b.finishPage(w, len(children), 24, 1)
}

func (b *BTreeBuilder) finishPage(w *bytesx.Writer, count, entrySize, level int) Page {
	content := w.Bytes()
	padded := make([]byte, btreeContentSize)
	copy(padded, content)

	footer := bytesx.NewWriter()
	footer.PutUint8(uint8(count))
	cEntMax := 1
	if entrySize > 0 {
		cEntMax = btreeContentSize / entrySize
	}
	footer.PutUint8(uint8(cEntMax))
	footer.PutUint8(uint8(entrySize))
	footer.PutUint8(uint8(level))
	footer.PutUint32(0)

	full := append(padded, footer.Bytes()...)
	return Page{Type: b.pageType, BID: b.allocBID(), Data: full}
}

// firstKeyOf extracts the first leaf/intermediate entry's key from an
// already-encoded page's content, used when promoting a child page's
// smallest key to its parent.
func firstKeyOf(p Page) uint64 {
	if len(p.Data) < 8 {
		return 0
	}
	return binaryLittleEndianUint64(p.Data[:8])
}

func binaryLittleEndianUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
