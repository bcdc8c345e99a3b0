package ndb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlock_EncodeRoundTrip(t *testing.T) {
	b := Block{BID: NewExternalBID(1), Data: []byte("hello world")}
	encoded := b.Encode()

	require.Equal(t, b.TotalSize(), len(encoded))
	// cb field at the start of the trailer must equal the unpadded length.
	trailerOffset := len(encoded) - blockTrailerSize
	cb := uint16(encoded[trailerOffset]) | uint16(encoded[trailerOffset+1])<<8
	require.Equal(t, uint16(len(b.Data)), cb)
}

func TestBlock_PadsToEightByteBoundary(t *testing.T) {
	b := Block{BID: NewExternalBID(2), Data: []byte("abc")}
	encoded := b.Encode()
	require.Equal(t, 8+blockTrailerSize, len(encoded))
}

func TestPage_EncodeFixedSize(t *testing.T) {
	p := Page{Type: PageTypeNBT, BID: NewInternalBID(1), Data: []byte{1, 2, 3}}
	encoded := p.Encode()
	require.Len(t, encoded, pageSize)
	require.Equal(t, byte(PageTypeNBT), encoded[pageSize-pageTrailerSize])
	require.Equal(t, byte(PageTypeNBT), encoded[pageSize-pageTrailerSize+1])
}

func TestZeroPage(t *testing.T) {
	p := ZeroPage(PageTypePMap, NewInternalBID(9))
	for _, b := range p.Data {
		require.Equal(t, byte(0), b)
	}
	require.Len(t, p.Encode(), pageSize)
}

func TestBTreeBuilder_EmptyProducesOneLeaf(t *testing.T) {
	counter := uint64(0)
	alloc := func() BID { counter++; return NewInternalBID(counter) }

	b := NewBTreeBuilder(PageTypeNBT, alloc)
	root, pages := b.Build()

	require.Len(t, pages, 1)
	require.Equal(t, pages[0].BID, root)
}

func TestBTreeBuilder_SingleLeafWhenSmall(t *testing.T) {
	counter := uint64(0)
	alloc := func() BID { counter++; return NewInternalBID(counter) }

	b := NewBTreeBuilder(PageTypeNBT, alloc)
	for i := uint64(1); i <= 3; i++ {
		b.Add(LeafEntry{Key: i, Value: make([]byte, 16)})
	}
	root, pages := b.Build()

	require.Len(t, pages, 1)
	require.Equal(t, pages[0].BID, root)
}

func TestBTreeBuilder_ManyEntriesConsolidateUpward(t *testing.T) {
	counter := uint64(0)
	alloc := func() BID { counter++; return NewInternalBID(counter) }

	b := NewBTreeBuilder(PageTypeBBT, alloc)
	// Entry size 8(key)+24(value) = 32 bytes; content area is
	// pageSize-pageTrailerSize-btreeFooterSize bytes, so a few hundred
	// entries force at least one level of consolidation.
	for i := uint64(1); i <= 500; i++ {
		b.Add(LeafEntry{Key: i, Value: make([]byte, 24)})
	}
	root, pages := b.Build()

	require.Greater(t, len(pages), 1)
	found := false
	for _, p := range pages {
		if p.BID == root {
			found = true
		}
	}
	require.True(t, found)
}

func TestSplitData_SmallValueSingleBlock(t *testing.T) {
	counter := uint64(0)
	alloc := func() BID { counter++; return NewExternalBID(counter) }

	bid, blocks := SplitData([]byte("small value"), alloc)
	require.Len(t, blocks, 1)
	require.Equal(t, bid, blocks[0].BID)
}

func TestSplitData_LargeValueProducesXBlock(t *testing.T) {
	counter := uint64(0)
	alloc := func() BID { counter++; return NewExternalBID(counter) }

	value := make([]byte, MaxBlockData*3+100)
	bid, blocks := SplitData(value, alloc)

	// 3 full data blocks + 1 partial + 1 xblock.
	require.Len(t, blocks, 5)
	require.Equal(t, bid, blocks[len(blocks)-1].BID)
}

func TestAMapAllocator_MarksUnitsAllocated(t *testing.T) {
	counter := uint64(0)
	alloc := func() BID { counter++; return NewInternalBID(counter) }

	a := NewAMapAllocator(HeaderSize, alloc)
	start := a.Allocate(128)
	require.Equal(t, HeaderSize, start)
	require.Len(t, a.Pages(), 1)
}

func TestAMapAllocator_NewMapOnSpanCross(t *testing.T) {
	counter := uint64(0)
	alloc := func() BID { counter++; return NewInternalBID(counter) }

	a := NewAMapAllocator(0, alloc)
	a.Allocate(AMapGranularity - 64)
	a.Allocate(128)
	require.Len(t, a.Pages(), 2)
}

func TestBuildSubnodeBlocks_EmptyReturnsZero(t *testing.T) {
	bid, blocks := BuildSubnodeBlocks(nil, func() BID { return 1 })
	require.Equal(t, BID(0), bid)
	require.Nil(t, blocks)
}

func TestBuildSubnodeBlocks_SingleBlock(t *testing.T) {
	counter := uint64(0)
	alloc := func() BID { counter++; return NewExternalBID(counter) }

	entries := []SubnodeEntry{
		{NID: 1, BIDData: NewExternalBID(100)},
		{NID: 2, BIDData: NewExternalBID(101)},
	}
	bid, blocks := BuildSubnodeBlocks(entries, alloc)
	require.Len(t, blocks, 1)
	require.Equal(t, bid, blocks[0].BID)
}

func TestHeader_EncodeFixedSizeAndMagic(t *testing.T) {
	h := Header{
		NBTRootBID: NewInternalBID(1),
		BBTRootBID: NewInternalBID(2),
		NextBID:    100,
		NextPage:   4,
		FileSize:   65536,
	}
	encoded := h.Encode()
	require.Len(t, encoded, HeaderSize)
	require.Equal(t, []byte(headerMagic), encoded[offMagic:offMagic+4])
	require.Equal(t, byte(headerWVer), encoded[offWVer])
	require.Equal(t, byte(0), encoded[offWVer+1])
	require.Equal(t, byte(headerVersion), encoded[offVersion])
	require.Equal(t, byte(headerUnicode), encoded[offUnicodeFlag])
	require.Equal(t, byte(headerCryptNone), encoded[offCryptMethod])
}
