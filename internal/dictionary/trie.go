package dictionary

import "sort"

// trie is a byte-labelled prefix tree mapping surfaces to word ids.
// It is built once and only read afterwards.
type trie struct {
	nodes []trieNode
}

type trieNode struct {
	edges []trieEdge // sorted by label
	words []uint32
}

type trieEdge struct {
	label byte
	next  uint32
}

func newTrie() *trie {
	return &trie{nodes: make([]trieNode, 1)}
}

func (t *trie) insert(key string, id uint32) {
	cur := uint32(0)
	for i := 0; i < len(key); i++ {
		b := key[i]
		edges := t.nodes[cur].edges
		j := sort.Search(len(edges), func(k int) bool { return edges[k].label >= b })
		if j < len(edges) && edges[j].label == b {
			cur = edges[j].next
			continue
		}
		next := uint32(len(t.nodes))
		t.nodes = append(t.nodes, trieNode{})
		edges = append(edges, trieEdge{})
		copy(edges[j+1:], edges[j:])
		edges[j] = trieEdge{label: b, next: next}
		t.nodes[cur].edges = edges
		cur = next
	}
	t.nodes[cur].words = append(t.nodes[cur].words, id)
}

// commonPrefix calls fn for every word whose surface is a prefix of text,
// shortest first, in insertion order for equal surfaces. fn returns false
// to stop the search.
func (t *trie) commonPrefix(text string, fn func(length int, id uint32) bool) {
	cur := uint32(0)
	for i := 0; i < len(text); i++ {
		b := text[i]
		edges := t.nodes[cur].edges
		j := sort.Search(len(edges), func(k int) bool { return edges[k].label >= b })
		if j == len(edges) || edges[j].label != b {
			return
		}
		cur = edges[j].next
		for _, id := range t.nodes[cur].words {
			if !fn(i+1, id) {
				return
			}
		}
	}
}
