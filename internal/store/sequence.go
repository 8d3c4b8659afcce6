package store

import (
	"strconv"
	"strings"
)

// NextSequence returns one past the largest numeric suffix among identifiers of the form
// "id_N". Identifiers without a numeric suffix count as zero.
func NextSequence(ids []string) int {
	maxID := 0
	for _, id := range ids {
		_, suffix, ok := strings.Cut(id, "_")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 0 {
			continue
		}
		if n > maxID {
			maxID = n
		}
	}
	return maxID + 1
}

// NextOrderNumber returns one past the largest order number.
func NextOrderNumber(numbers []int) int {
	maxNumber := 0
	for _, n := range numbers {
		if n > maxNumber {
			maxNumber = n
		}
	}
	return maxNumber + 1
}

// FormatID renders a sequence value as an identifier.
func FormatID(n int) string {
	return "id_" + strconv.Itoa(n)
}
