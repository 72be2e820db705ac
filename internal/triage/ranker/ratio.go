package ranker

// Ratio is the Ratcliff-Obershelp similarity of a and b over Unicode code
// points: twice the matched characters divided by the combined length. Two
// empty strings are identical (1.0). No character is treated as junk.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingChars(ra, rb)) / float64(total)
}

type span struct {
	alo, ahi, blo, bhi int
}

// matchingChars sums the sizes of the matching blocks: the longest common
// block, then recursively the blocks left and right of it.
func matchingChars(a, b []rune) int {
	total := 0
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b, s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		total += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return total
}

// longestMatch returns the longest block a[i:i+k] == b[j:j+k] inside the
// given bounds. Among equally long blocks it picks the one starting earliest
// in a, then earliest in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestk int) {
	besti, bestj = alo, blo
	width := bhi - blo + 1
	prev := make([]int, width)
	cur := make([]int, width)

	for i := alo; i < ahi; i++ {
		for j := blo; j < bhi; j++ {
			x := j - blo + 1
			if a[i] != b[j] {
				cur[x] = 0
				continue
			}
			k := prev[x-1] + 1
			cur[x] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		prev, cur = cur, prev
	}
	return besti, bestj, bestk
}
