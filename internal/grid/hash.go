package grid

// Mix64 is the SplitMix64 output function: it advances z by the golden
// gamma and avalanches the result.
func Mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Hash is a stateless tie-break hash of a seed and tile coordinates. It
// carries no generator state, so any caller can reproduce it in any order.
func Hash(seed int64, x, y int) uint64 {
	h := Mix64(uint64(seed))
	h = Mix64(h ^ uint64(int64(x)))
	return Mix64(h ^ uint64(int64(y)))
}

// Pick returns Hash(seed, x, y) mod n. n must be positive.
func Pick(seed int64, x, y, n int) int {
	return int(Hash(seed, x, y) % uint64(n))
}
