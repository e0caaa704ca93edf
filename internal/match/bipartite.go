package match

import "github.com/shisou-labs/shisou/internal/hanzi"

// bipartiteMatch treats each slice position as a left vertex and each
// sub-matcher as a right vertex, with an edge where the sub-matcher accepts
// the character at that position. The slice is accepted when an augmenting
// maximum matching saturates every position, i.e. the characters form a
// sub-multiset of the members in some order.
func (m *Matcher) bipartiteMatch(s hanzi.Text, start, end int) bool {
	if start >= end {
		return false
	}
	left := end - start
	right := len(m.Subs)
	if left > right {
		return false
	}

	sat := make([][]bool, left)
	for i := range sat {
		sat[i] = make([]bool, right)
		for j, sub := range m.Subs {
			sat[i][j] = sub.Match(s, start+i, end)
		}
	}

	matchR := make([]int, right)
	for j := range matchR {
		matchR[j] = -1
	}
	visited := make([]bool, right)

	var augment func(u int) bool
	augment = func(u int) bool {
		for v := 0; v < right; v++ {
			if sat[u][v] && !visited[v] {
				visited[v] = true
				if matchR[v] == -1 || augment(matchR[v]) {
					matchR[v] = u
					return true
				}
			}
		}
		return false
	}

	matched := 0
	for u := 0; u < left; u++ {
		for v := range visited {
			visited[v] = false
		}
		if augment(u) {
			matched++
		}
	}
	return matched >= left
}
