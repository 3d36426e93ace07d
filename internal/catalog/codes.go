package catalog

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Registrant prefix assigned to the platform. Every code the system mints
// carries it, which keeps generated codes disjoint from real-world ones.
const isrcRegistrant = "BR-SNA"

// newISRC mints an International Standard Recording Code:
// country-registrant-year-designation, e.g. BR-SNA-26-04821.
func newISRC(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		return "", fmt.Errorf("generating isrc designation: %w", err)
	}
	return fmt.Sprintf("%s-%02d-%05d", isrcRegistrant, now.Year()%100, n.Int64()), nil
}

// newISWC mints an International Standard Musical Work Code:
// T-NNNNNNNNN-C where C is a weighted mod-10 check digit.
func newISWC() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000000))
	if err != nil {
		return "", fmt.Errorf("generating iswc body: %w", err)
	}
	body := fmt.Sprintf("%09d", n.Int64())
	return fmt.Sprintf("T-%s-%d", body, iswcCheckDigit(body)), nil
}

func iswcCheckDigit(body string) int {
	sum := 1
	for i, r := range body {
		sum += (i + 1) * int(r-'0')
	}
	return (10 - sum%10) % 10
}
