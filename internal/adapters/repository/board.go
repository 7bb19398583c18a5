package repository

import (
	"math"
	"math/rand/v2"
)

// board is an order-statistics treap over persisted matches.
//
// Ordering: score DESC, then pair key ASC. "less" means ranks earlier, so an
// in-order walk yields the board from best to worst.

// scoreScale converts [0,1] scores to fixed point so ties compare exactly.
const scoreScale = 1_000_000_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	if math.IsNaN(x) || x <= 0 {
		return 0
	}
	if x >= 1 {
		return scoreScale
	}
	return scoreFP(math.Round(x * scoreScale))
}

type node struct {
	key   string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func less(aScore scoreFP, aKey string, bScore scoreFP, bKey string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aKey < bKey
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, key string, score scoreFP) *node {
	if n == nil {
		return &node{key: key, score: score, prio: rand.Uint64(), size: 1}
	}
	if less(score, key, n.score, n.key) {
		n.left = insert(n.left, key, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, key, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func remove(n *node, key string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && key == n.key:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = remove(n.right, key, score)
		} else {
			n = rotateLeft(n)
			n.left = remove(n.left, key, score)
		}
	case less(score, key, n.score, n.key):
		n.left = remove(n.left, key, score)
	default:
		n.right = remove(n.right, key, score)
	}
	fix(n)
	return n
}

// collectTopN appends up to limit keys in board order.
func collectTopN(n *node, limit int, out *[]string) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.key)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

type board struct {
	root   *node
	scores map[string]scoreFP
}

func newBoard() *board {
	return &board{scores: make(map[string]scoreFP)}
}

// set places key at score, moving it if already present.
func (b *board) set(key string, score float64) {
	fp := toFixedPoint(score)
	if old, ok := b.scores[key]; ok {
		if old == fp {
			return
		}
		b.root = remove(b.root, key, old)
	}
	b.scores[key] = fp
	b.root = insert(b.root, key, fp)
}

func (b *board) top(n int) []string {
	out := make([]string, 0, min(n, len(b.scores)))
	collectTopN(b.root, n, &out)
	return out
}

func (b *board) len() int {
	return len(b.scores)
}
