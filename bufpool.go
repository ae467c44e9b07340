package pgcopy

import "sync"

// groupPool reuses the scratch slices the numeric codec fills with base-10000 groups.
// Most numerics are a handful of groups, so 16 avoids regrowth for common values.
var groupPool = sync.Pool{
	New: func() any {
		s := make([]int16, 0, 16)
		return &s
	},
}
