// Package isbn converts ten-digit ISBNs to their thirteen-digit form.
package isbn

import "fmt"

// To13 derives the ISBN-13 for a ten-digit ISBN: prepend the 978 Bookland
// prefix to the first nine digits and recompute the check digit.
func To13(isbn10 string) (string, error) {
	if len(isbn10) != 10 {
		return "", fmt.Errorf("isbn %q: want 10 characters, got %d", isbn10, len(isbn10))
	}

	// The ISBN-10 check digit (position 10, may be 'X') is discarded.
	body := "978" + isbn10[:9]

	sum := 0
	for i, r := range body {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("isbn %q: non-digit %q at position %d", isbn10, r, i)
		}
		digit := int(r - '0')
		if i%2 == 1 {
			digit *= 3
		}
		sum += digit
	}

	check := (10 - sum%10) % 10
	return fmt.Sprintf("%s%d", body, check), nil
}
