package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleCountValid(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  int
	}{
		{"5", 5},
		{"1", 1},
		{"100", 100},
		{" 42 ", 42},
	} {
		got, err := BundleCount(tc.input)
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got)
	}
}

func TestBundleCountRejected(t *testing.T) {
	for _, tc := range []struct {
		input  string
		reason string
	}{
		{"0", "positive number"},
		{"-5", "positive number"},
		{"101", "100 or fewer"},
		{"five", "valid number"},
		{"", "valid number"},
	} {
		_, err := BundleCount(tc.input)
		require.Error(t, err, "input %q", tc.input)
		assert.Contains(t, err.Error(), tc.reason)
	}
}

func TestPostcodeValid(t *testing.T) {
	got, err := Postcode("SW1A 1AA")
	require.NoError(t, err)
	assert.Equal(t, "SW1A 1AA", got)

	for _, code := range []string{"CR2 6XH", "DN55 1PT", "W1A 1HQ", "EC1A 1BB"} {
		_, err := Postcode(code)
		assert.NoError(t, err, "postcode %q", code)
	}
}

func TestPostcodeNormalization(t *testing.T) {
	got, err := Postcode("M11AE")
	require.NoError(t, err)
	assert.Equal(t, "M1 1AE", got)

	got, err = Postcode("m1 1ae")
	require.NoError(t, err)
	assert.Equal(t, "M1 1AE", got)
}

// A value the validator accepts must re-validate to itself unchanged.
func TestPostcodeIdempotentAcceptance(t *testing.T) {
	for _, code := range []string{"M11AE", "SW1A1AA", "CR2 6XH", "dn551pt"} {
		first, err := Postcode(code)
		require.NoError(t, err)

		second, err := Postcode(first)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestPostcodeRejected(t *testing.T) {
	_, err := Postcode("INVALID")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid UK postcode")

	_, err = Postcode("12345")
	assert.Error(t, err)
}

func TestAddress(t *testing.T) {
	got, err := Address("123 Main Street")
	require.NoError(t, err)
	assert.Equal(t, "123 Main Street", got)

	_, err = Address("Flat 4, Park View Apartments")
	assert.NoError(t, err)

	_, err = Address("123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "complete address")

	_, err = Address(strings.Repeat("A", 201))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long")

	_, err = Address("123456789")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "street name")
}

func TestName(t *testing.T) {
	got, err := Name("John Smith")
	require.NoError(t, err)
	assert.Equal(t, "John Smith", got)

	_, err = Name("Mary-Jane O'Connor")
	assert.NoError(t, err)

	_, err = Name("A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full name")

	_, err = Name(strings.Repeat("A", 51))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long")

	_, err = Name("123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid name")
}

func TestDeliverySlotChoice(t *testing.T) {
	slots := []string{"Saturday 2-4 PM", "Sunday 10-12 PM", "Monday 3-5 PM"}

	got, err := DeliverySlotChoice("1", slots)
	require.NoError(t, err)
	assert.Equal(t, "Saturday 2-4 PM", got)

	got, err = DeliverySlotChoice("3", slots)
	require.NoError(t, err)
	assert.Equal(t, "Monday 3-5 PM", got)

	_, err = DeliverySlotChoice("5", slots[:2])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 1 and 2")

	_, err = DeliverySlotChoice("first", slots)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "number")
}

func TestOrderID(t *testing.T) {
	got, err := OrderID("A1B2C3")
	require.NoError(t, err)
	assert.Equal(t, "A1B2C3", got)

	got, err = OrderID("ffffff")
	require.NoError(t, err)
	assert.Equal(t, "FFFFFF", got)

	_, err = OrderID("ABC")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "6 characters")

	_, err = OrderID("ABCXYZ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid order ID")
}
