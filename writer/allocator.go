package writer

import "github.com/jgpdf/pdfcore/model"

// allocator assigns each structural object a fresh, sequential
// (number, generation 0) identity the first time it is seen, keyed by
// pointer identity so a resource shared across pages (a font, an image) is
// written once and referenced everywhere else rather than duplicated.
type allocator struct {
	next int
	refs map[any]model.ObjRef
	seen map[model.ObjRef]bool
}

func newAllocator() *allocator {
	return &allocator{next: 1, refs: map[any]model.ObjRef{}, seen: map[model.ObjRef]bool{}}
}

// refFor returns v's object reference, allocating one on first use. v must
// be a pointer or other comparable identity (never a value type, or two
// equal-but-distinct structs would collapse onto one reference).
func (a *allocator) refFor(v any) model.ObjRef {
	if ref, ok := a.refs[v]; ok {
		return ref
	}
	ref := model.ObjRef{Num: a.next, Gen: 0}
	a.next++
	a.refs[v] = ref
	a.seen[ref] = true
	return ref
}

// knows reports whether ref was handed out by this allocator, which is
// exactly the set of objects the writer is about to emit.
func (a *allocator) knows(ref model.ObjRef) bool {
	return a.seen[ref]
}

func (a *allocator) maxNum() int {
	return a.next - 1
}
