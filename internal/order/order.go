// Package order implements the position reconciliation rules for ordered
// siblings: lists within a board and cards within a list. Every structural
// change (insert, move, delete) goes through these functions so that the
// set of positions in a container is always exactly {0..n-1}.
//
// The same functions back both the client's optimistic state and the
// server's transactional updates; keeping them pure (no I/O, no errors,
// out-of-range indices clamped) is what lets the two halves predict each
// other.
package order

// Item is anything that carries a position rank among siblings.
// *model.List and *model.Card implement it.
type Item interface {
	GetID() string
	GetPosition() int
	SetPosition(int)
}

// Normalize rewrites positions to 0..n-1 in slice order and reports whether
// any position changed. Idempotent; an empty slice is a no-op. Run as the
// final defensive pass after every structural change, and on load to absorb
// externally corrupted positions.
func Normalize[T Item](items []T) bool {
	changed := false
	for i, it := range items {
		if it.GetPosition() != i {
			it.SetPosition(i)
			changed = true
		}
	}
	return changed
}

// IndexOf returns the slice index of the item with the given id, or -1.
func IndexOf[T Item](items []T, id string) int {
	for i, it := range items {
		if it.GetID() == id {
			return i
		}
	}
	return -1
}

// Insert places item at index at, clamped to [0, len]. Siblings at or after
// the insertion point shift up one position.
func Insert[T Item](items []T, item T, at int) []T {
	at = clamp(at, 0, len(items))
	for _, it := range items {
		if it.GetPosition() >= at {
			it.SetPosition(it.GetPosition() + 1)
		}
	}
	item.SetPosition(at)
	items = append(items, item)
	copy(items[at+1:], items[at:len(items)-1])
	items[at] = item
	Normalize(items)
	return items
}

// Remove deletes the item at index at and closes the gap. Out-of-range
// indices are ignored.
func Remove[T Item](items []T, at int) []T {
	if at < 0 || at >= len(items) {
		return items
	}
	items = append(items[:at], items[at+1:]...)
	Normalize(items)
	return items
}

// MoveWithin relocates items[src] to index dst within the same container.
// dst is clamped to [0, len-1]; moving an item onto its own slot reports
// false so callers can skip the write entirely.
func MoveWithin[T Item](items []T, src, dst int) bool {
	n := len(items)
	if n == 0 || src < 0 || src > n-1 {
		return false
	}
	dst = clamp(dst, 0, n-1)
	if dst == src {
		return false
	}
	moved := items[src]
	if dst < src {
		// everything in [dst, src) shifts down one slot
		for i := dst; i < src; i++ {
			items[i].SetPosition(items[i].GetPosition() + 1)
		}
		copy(items[dst+1:src+1], items[dst:src])
	} else {
		// everything in (src, dst] shifts up one slot
		for i := src + 1; i <= dst; i++ {
			items[i].SetPosition(items[i].GetPosition() - 1)
		}
		copy(items[src:dst], items[src+1:dst+1])
	}
	moved.SetPosition(dst)
	items[dst] = moved
	Normalize(items)
	return true
}

// MoveAcross relocates src[srcIdx] into dst at index dstIdx (clamped to
// [0, len(dst)]): source siblings above the removed slot shift down, the
// destination tail shifts up, and both containers are renormalized. The
// caller owns updating the moved item's parent reference. Returns the new
// source and destination slices.
func MoveAcross[T Item](src []T, srcIdx int, dst []T, dstIdx int) ([]T, []T) {
	if srcIdx < 0 || srcIdx >= len(src) {
		return src, dst
	}
	moved := src[srcIdx]
	removed := moved.GetPosition()
	src = append(src[:srcIdx], src[srcIdx+1:]...)
	for _, it := range src {
		if it.GetPosition() > removed {
			it.SetPosition(it.GetPosition() - 1)
		}
	}

	dstIdx = clamp(dstIdx, 0, len(dst))
	for _, it := range dst {
		if it.GetPosition() >= dstIdx {
			it.SetPosition(it.GetPosition() + 1)
		}
	}
	moved.SetPosition(dstIdx)
	dst = append(dst, moved)
	copy(dst[dstIdx+1:], dst[dstIdx:len(dst)-1])
	dst[dstIdx] = moved

	Normalize(src)
	Normalize(dst)
	return src, dst
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
