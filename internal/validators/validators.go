// Package validators holds the pure per-field input checks. Each validator
// maps raw text to an accepted (possibly normalized) value or an error whose
// message is shown to the user verbatim as the re-prompt reason.
package validators

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	MinBundles = 1
	MaxBundles = 100
)

var (
	// Matches UK postcodes like SW1A 1AA, M1 1AE, CR2 6XH.
	ukPostcodeRe = regexp.MustCompile(`^[A-Z]{1,2}\d{1,2}[A-Z]?\s?\d[A-Z]{2}$`)
	lettersRe    = regexp.MustCompile(`[a-zA-Z]`)
	orderIDRe    = regexp.MustCompile(`^[A-F0-9]{6}$`)
)

// BundleCount validates that the input is a whole number of bundles within
// the acceptable range.
func BundleCount(text string) (int, error) {
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, errors.New("Please enter a valid number (e.g., 1, 2, 3, etc.)")
	}
	if count < MinBundles {
		return 0, errors.New("Please enter a positive number of bundles! 😊")
	}
	if count > MaxBundles {
		return 0, errors.New("That's a lot of veggies! 😅 Please order 100 or fewer bundles, or contact us directly for bulk orders.")
	}
	return count, nil
}

// Postcode validates a UK postcode and normalizes it to upper case with the
// separating space inserted. Normalization is part of the contract: a value
// it accepts re-validates to itself.
func Postcode(text string) (string, error) {
	postcode := strings.ToUpper(strings.TrimSpace(text))

	if !ukPostcodeRe.MatchString(postcode) {
		return "", errors.New("Please enter a valid UK postcode (e.g., SW1A 1AA, M1 1AE)")
	}

	if !strings.Contains(postcode, " ") {
		postcode = postcode[:len(postcode)-3] + " " + postcode[len(postcode)-3:]
	}
	return postcode, nil
}

// Address validates a free-text delivery address.
func Address(text string) (string, error) {
	address := strings.TrimSpace(text)

	if len(address) < 5 {
		return "", errors.New("Please provide a complete address (street, house number, etc.)")
	}
	if len(address) > 200 {
		return "", errors.New("Address is too long. Please use a shorter format.")
	}
	if !lettersRe.MatchString(address) {
		return "", errors.New("Please provide a valid address with street name")
	}
	return address, nil
}

// Name validates a customer name.
func Name(text string) (string, error) {
	name := strings.TrimSpace(text)

	if len(name) < 2 {
		return "", errors.New("Please provide your full name")
	}
	if len(name) > 50 {
		return "", errors.New("Name is too long. Please use a shorter format.")
	}
	if !lettersRe.MatchString(name) {
		return "", errors.New("Please provide a valid name")
	}
	return name, nil
}

// DeliverySlotChoice validates a 1-based slot selection against the
// configured slot list and returns the chosen slot.
func DeliverySlotChoice(text string, slots []string) (string, error) {
	index, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return "", errors.New("Please enter the number of your preferred delivery slot")
	}
	if index < 1 || index > len(slots) {
		return "", fmt.Errorf("Please choose a number between 1 and %d", len(slots))
	}
	return slots[index-1], nil
}

// OrderID validates the 6-character hex order ID format.
func OrderID(text string) (string, error) {
	id := strings.ToUpper(strings.TrimSpace(text))

	if len(id) != 6 {
		return "", errors.New("Order ID should be 6 characters")
	}
	if !orderIDRe.MatchString(id) {
		return "", errors.New("Invalid order ID format. Order IDs contain only letters A-F and numbers 0-9")
	}
	return id, nil
}
