package verify

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// promptSelection asks the operator which pending records to promote.
// Returns nil when the operator exits, or the chosen zero-based indices.
func (s *Service) promptSelection(pending int) ([]int, error) {
	fmt.Fprintln(s.out, "\nEnter student numbers to verify (comma-separated), 'all' to verify all, or 'exit' to quit:")
	fmt.Fprint(s.out, "> ")

	scanner := bufio.NewScanner(s.in)
	if !scanner.Scan() {
		return nil, nil
	}

	indices, dropped, err := ParseSelection(scanner.Text(), pending)
	if err != nil {
		return nil, err
	}
	for _, value := range dropped {
		fmt.Fprintf(s.out, "✗ Invalid index: %d\n", value)
	}
	return indices, nil
}

// ParseSelection interprets the operator's answer against a list of n
// records: "exit" selects nothing, "all" selects everything, otherwise the
// input is comma-separated 1-based indices. Out-of-range values are
// dropped and returned so the caller can report them; non-numeric input
// fails.
func ParseSelection(input string, n int) (indices, dropped []int, err error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" || input == "exit" {
		return nil, nil, nil
	}

	if input == "all" {
		indices = make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil, nil
	}

	for _, part := range strings.Split(input, ",") {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, nil, fmt.Errorf("Invalid input. Please enter numbers separated by commas.")
		}
		idx := value - 1
		if idx < 0 || idx >= n {
			dropped = append(dropped, value)
			continue
		}
		indices = append(indices, idx)
	}
	return indices, dropped, nil
}
