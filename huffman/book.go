package huffman

import (
	"container/heap"
	"fmt"

	"github.com/lorza/lorza/errs"
)

// CodeWord constrains the code word widths the encoder supports. The
// 4-byte width is the default; the 8-byte width is the runtime fallback
// when a canonical code does not fit 31 bits.
type CodeWord interface {
	~uint32 | ~uint64
}

// MaxCodeLen returns the longest representable code length for W:
// one bit of the word is reserved so a length field can never alias a
// full-width code.
func MaxCodeLen[W CodeWord]() int {
	var zero W
	if _, ok := any(zero).(uint32); ok {
		return 31
	}

	return 63
}

// Book is a canonical Huffman code book over a dense symbol alphabet.
//
// Codes[sym] holds the code bits right-aligned; Lens[sym] is 0 for
// symbols absent from the stream. Canonical order: lengths from the
// Huffman tree, codes assigned ascending by (length, symbol).
type Book[W CodeWord] struct {
	Codes []W
	Lens  []uint8

	// MaxLen is the longest assigned code length.
	MaxLen int
	// CountPerLen[l] is the number of symbols with code length l,
	// indices 1..MaxLen.
	CountPerLen []uint32
	// SymbolsByLen lists the active symbols in canonical order.
	SymbolsByLen []uint16
}

// treeNode is one node of the Huffman merge tree. Leaves are created in
// ascending symbol order and internal nodes afterwards, so the seq field
// doubles as the tie-break: equal weights resolve to the earlier node,
// which for leaves means the smaller symbol id.
type treeNode struct {
	weight      uint64
	seq         int
	left, right int32 // child indices, -1 for leaves
	symbol      uint16
}

type nodeHeap struct {
	nodes []treeNode
	order []int32
}

func (h *nodeHeap) Len() int { return len(h.order) }
func (h *nodeHeap) Less(i, j int) bool {
	a, b := &h.nodes[h.order[i]], &h.nodes[h.order[j]]
	if a.weight != b.weight {
		return a.weight < b.weight
	}

	return a.seq < b.seq
}
func (h *nodeHeap) Swap(i, j int) { h.order[i], h.order[j] = h.order[j], h.order[i] }
func (h *nodeHeap) Push(x any)    { h.order = append(h.order, x.(int32)) }
func (h *nodeHeap) Pop() any {
	old := h.order
	n := len(old)
	x := old[n-1]
	h.order = old[:n-1]

	return x
}

// BuildBook constructs the canonical book for a histogram.
//
// Returns:
//   - *Book[W]: the book; a single active symbol degenerates to one code
//     of length 1
//   - error: ErrCodeTooLong if any canonical length exceeds MaxCodeLen[W]
func BuildBook[W CodeWord](hist []uint32) (*Book[W], error) {
	booklen := len(hist)
	book := &Book[W]{
		Codes: make([]W, booklen),
		Lens:  make([]uint8, booklen),
	}

	active := 0
	for _, c := range hist {
		if c > 0 {
			active++
		}
	}
	if active == 0 {
		return book, nil
	}

	lens := book.Lens
	if active == 1 {
		for sym, c := range hist {
			if c > 0 {
				lens[sym] = 1
			}
		}
	} else {
		// Min-merge tree. Leaves first, in symbol order; 2*active-1
		// nodes total.
		h := &nodeHeap{
			nodes: make([]treeNode, 0, 2*active-1),
			order: make([]int32, 0, active),
		}
		for sym, c := range hist {
			if c == 0 {
				continue
			}
			h.order = append(h.order, int32(len(h.nodes)))
			h.nodes = append(h.nodes, treeNode{
				weight: uint64(c),
				seq:    len(h.nodes),
				left:   -1,
				right:  -1,
				symbol: uint16(sym),
			})
		}
		heap.Init(h)

		for h.Len() > 1 {
			a := heap.Pop(h).(int32)
			b := heap.Pop(h).(int32)
			parent := int32(len(h.nodes))
			h.nodes = append(h.nodes, treeNode{
				weight: h.nodes[a].weight + h.nodes[b].weight,
				seq:    len(h.nodes),
				left:   a,
				right:  b,
			})
			heap.Push(h, parent)
		}

		// Depth-first walk assigns leaf depths as code lengths.
		root := h.order[0]
		type frame struct {
			node  int32
			depth int
		}
		stack := make([]frame, 0, 64)
		stack = append(stack, frame{root, 0})
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			node := &h.nodes[f.node]
			if node.left < 0 {
				lens[node.symbol] = uint8(f.depth)
				continue
			}
			stack = append(stack, frame{node.left, f.depth + 1})
			stack = append(stack, frame{node.right, f.depth + 1})
		}
	}

	maxLen := 0
	for _, l := range lens {
		if int(l) > maxLen {
			maxLen = int(l)
		}
	}
	if limit := MaxCodeLen[W](); maxLen > limit {
		return nil, fmt.Errorf("%w: canonical length %d exceeds %d bits", errs.ErrCodeTooLong, maxLen, limit)
	}
	book.MaxLen = maxLen

	book.CountPerLen = make([]uint32, maxLen+1)
	for _, l := range lens {
		if l > 0 {
			book.CountPerLen[l]++
		}
	}

	// Canonical assignment: codes ascend by length, then by symbol id.
	// Walking symbols in ascending order per length gives both at once.
	firstCode := make([]W, maxLen+2)
	var code W
	for l := 1; l <= maxLen; l++ {
		firstCode[l] = code
		code = (code + W(book.CountPerLen[l])) << 1
	}

	next := make([]W, maxLen+1)
	copy(next, firstCode[:maxLen+1])
	book.SymbolsByLen = make([]uint16, 0, active)
	for l := 1; l <= maxLen; l++ {
		for sym, sl := range lens {
			if int(sl) != l {
				continue
			}
			book.Codes[sym] = next[l]
			next[l]++
			book.SymbolsByLen = append(book.SymbolsByLen, uint16(sym))
		}
	}

	return book, nil
}
