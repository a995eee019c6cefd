// Package alg holds small search helpers shared by the history stores.
package alg

type side int

const (
	left side = iota
	right
)

// SearchLeft returns the index of value in the sorted slice arr, or the index
// of the rightmost element smaller than value when it is absent. Returns -1
// when every element is greater than value.
func SearchLeft(arr []int64, value int64) int {
	return search(arr, value, left)
}

// SearchRight returns the index of value in the sorted slice arr, or the index
// of the leftmost element greater than value when it is absent. Returns -1
// when every element is smaller than value.
func SearchRight(arr []int64, value int64) int {
	return search(arr, value, right)
}

func search(arr []int64, value int64, s side) int {
	low, high := 0, len(arr)-1
	for low <= high {
		mid := (low + high) / 2
		switch {
		case arr[mid] == value:
			return mid
		case arr[mid] > value:
			high = mid - 1
		default:
			low = mid + 1
		}
	}

	// low is now the insertion point for value.
	if s == left {
		if low > 0 {
			return low - 1
		}
		return -1
	}
	if low < len(arr) {
		return low
	}
	return -1
}
