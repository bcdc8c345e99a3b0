package ndb

// AMapGranularity is the number of file bytes one AMap page tracks, at one
// bit per 64-byte allocation unit across the (512-16)*8 = 3968 usable bits,
// i.e. 3968*64 = 253,952 bytes per spec.md §4.5.
const AMapGranularity = 253952

// AMapUnitSize is the allocation granularity each AMap bit represents.
const AMapUnitSize = 64

// AMap tracks space allocation for one AMapGranularity-sized span of the
// file as a bitmap, one bit per 64-byte unit (1 = allocated).
type AMap struct {
	BID    BID
	bitmap []byte // (pageSize - pageTrailerSize) bytes = 496*8 = 3968 bits
}

// NewAMap returns an AMap with every unit initially free.
func NewAMap(bid BID) *AMap {
	return &AMap{BID: bid, bitmap: make([]byte, pageSize-pageTrailerSize)}
}

// MarkAllocated flags the units spanning [offset, offset+length) within
// this AMap's span as allocated. offset is relative to the start of the
// span this AMap covers.
func (a *AMap) MarkAllocated(offset, length int) {
	firstUnit := offset / AMapUnitSize
	lastUnit := (offset + length - 1) / AMapUnitSize
	for unit := firstUnit; unit <= lastUnit; unit++ {
		byteIdx := unit / 8
		bitIdx := uint(unit % 8)
		if byteIdx >= len(a.bitmap) {
			break
		}
		a.bitmap[byteIdx] |= 1 << (7 - bitIdx)
	}
}

// Page renders this AMap as an on-disk Page.
func (a *AMap) Page() Page {
	return Page{Type: PageTypeAMap, BID: a.BID, Data: a.bitmap}
}

// AMapAllocator tracks file-space allocation across however many
// AMapGranularity-sized spans the growing file requires, creating a new
// AMap page each time the prior one fills.
type AMapAllocator struct {
	nextOffset int
	allocBID   func() BID
	maps       []*AMap
}

// NewAMapAllocator creates an allocator starting space accounting at
// fileOffset (the byte offset immediately following the PST header).
func NewAMapAllocator(fileOffset int, allocBID func() BID) *AMapAllocator {
	return &AMapAllocator{nextOffset: fileOffset, allocBID: allocBID}
}

// Allocate reserves length bytes, creating additional AMap pages as the
// allocation crosses AMapGranularity boundaries, and returns the absolute
// file offset of the reservation.
func (a *AMapAllocator) Allocate(length int) int {
	start := a.nextOffset
	a.nextOffset += length

	for span := start / AMapGranularity; span <= (start+length-1)/AMapGranularity; span++ {
		for len(a.maps) <= span {
			a.maps = append(a.maps, NewAMap(a.allocBID()))
		}
	}

	spanStart := (start / AMapGranularity) * AMapGranularity
	remaining := length
	offset := start
	for remaining > 0 {
		span := offset / AMapGranularity
		spanBase := span * AMapGranularity
		withinSpan := offset - spanBase
		chunk := AMapGranularity - withinSpan
		if chunk > remaining {
			chunk = remaining
		}
		a.maps[span].MarkAllocated(withinSpan, chunk)
		remaining -= chunk
		offset += chunk
	}
	_ = spanStart
	return start
}

// Pages returns every AMap page created so far, in span order.
func (a *AMapAllocator) Pages() []Page {
	pages := make([]Page, len(a.maps))
	for i, m := range a.maps {
		pages[i] = m.Page()
	}
	return pages
}
