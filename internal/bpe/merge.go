package bpe

// Apply returns ids with every occurrence of pair replaced by id.
//
// The scan runs left to right and never overlaps: after a match it advances two
// positions, otherwise one. ids is not modified.
func Apply(ids []int32, pair Pair, id int32) []int32 {
	out := make([]int32, 0, len(ids))
	for i := 0; i < len(ids); {
		if i+1 < len(ids) && ids[i] == pair.Left && ids[i+1] == pair.Right {
			out = append(out, id)
			i += 2
			continue
		}
		out = append(out, ids[i])
		i++
	}
	return out
}

// contains reports whether pair occurs anywhere in ids.
func contains(ids []int32, pair Pair) bool {
	for i := 0; i+1 < len(ids); i++ {
		if ids[i] == pair.Left && ids[i+1] == pair.Right {
			return true
		}
	}
	return false
}

// BytesToIDs maps every byte of s to its base identifier.
func BytesToIDs(s string) []int32 {
	ids := make([]int32, len(s))
	for i := 0; i < len(s); i++ {
		ids[i] = int32(s[i])
	}
	return ids
}

// ApplyInPlace is Apply reusing the storage of ids. The returned slice aliases
// ids, which must not be used afterwards.
func ApplyInPlace(ids []int32, pair Pair, id int32) []int32 {
	w := 0
	for i := 0; i < len(ids); {
		if i+1 < len(ids) && ids[i] == pair.Left && ids[i+1] == pair.Right {
			ids[w] = id
			i += 2
		} else {
			ids[w] = ids[i]
			i++
		}
		w++
	}
	return ids[:w]
}
