// Package huffman builds canonical Huffman codes over a document's runes and
// encodes the content as a bit string. Used by the document API to expose a
// compressed representation of stored text.
package huffman

import (
	"container/heap"
	"strings"
)

// node is either a leaf (char set, left/right nil) or an internal node.
type node struct {
	freq  int
	order int
	char  rune
	left  *node
	right *node
}

// nodeHeap orders nodes by frequency, breaking ties by insertion order so
// the generated code is deterministic for a given input.
type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].order < h[j].order
}
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)        { *h = append(*h, x.(*node)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// BuildCode returns the Huffman code table for s. A single distinct rune
// gets the code "0"; an empty string yields an empty table.
func BuildCode(s string) map[rune]string {
	freqs := make(map[rune]int)
	order := make([]rune, 0)
	for _, r := range s {
		if _, seen := freqs[r]; !seen {
			order = append(order, r)
		}
		freqs[r]++
	}

	h := make(nodeHeap, 0, len(freqs))
	for i, r := range order {
		h = append(h, &node{freq: freqs[r], order: i, char: r})
	}
	heap.Init(&h)

	next := len(h)
	for h.Len() > 1 {
		left := heap.Pop(&h).(*node)
		right := heap.Pop(&h).(*node)
		heap.Push(&h, &node{
			freq:  left.freq + right.freq,
			order: next,
			left:  left,
			right: right,
		})
		next++
	}

	code := make(map[rune]string, len(freqs))
	if h.Len() == 1 {
		walk(h[0], "", code)
	}
	return code
}

// walk assigns code prefixes depth-first; a lone leaf gets "0".
func walk(n *node, acc string, code map[rune]string) {
	if n.left == nil && n.right == nil {
		if acc == "" {
			acc = "0"
		}
		code[n.char] = acc
		return
	}
	walk(n.left, acc+"0", code)
	walk(n.right, acc+"1", code)
}

// Encode returns s encoded with its own Huffman code as a bit string.
func Encode(s string) string {
	code := BuildCode(s)
	var b strings.Builder
	for _, r := range s {
		b.WriteString(code[r])
	}
	return b.String()
}
