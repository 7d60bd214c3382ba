package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxMessageLength = 500

var whitespaceRe = regexp.MustCompile(`\s+`)

// GenerateOrderID returns a 6-character uppercase hex order ID (e.g. "3FA8B2").
func GenerateOrderID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(hex[:6])
}

// Sanitize strips null bytes, collapses whitespace and caps the length of
// raw user input before any processing.
func Sanitize(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if len(text) > maxMessageLength {
		text = text[:maxMessageLength]
	}
	return text
}

// FormatPhone removes the "whatsapp:" prefix Twilio puts on sender numbers.
func FormatPhone(phone string) string {
	return strings.TrimSpace(strings.TrimPrefix(phone, "whatsapp:"))
}

// FormatTimestamp renders a timestamp the way order rows expect it.
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

var (
	yesWords = map[string]bool{
		"yes": true, "y": true, "yeah": true, "yep": true, "sure": true,
		"ok": true, "okay": true, "confirm": true, "correct": true,
	}
	noWords = map[string]bool{
		"no": true, "n": true, "nope": true, "nah": true, "cancel": true, "wrong": true,
	}
)

// ParseYesNo interprets text as an affirmative or negative answer. The second
// return is false when the answer is neither.
func ParseYesNo(text string) (bool, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if yesWords[text] {
		return true, true
	}
	if noWords[text] {
		return false, true
	}
	return false, false
}

// NumberedList renders items as an emoji-bulleted numbered list.
func NumberedList(items []string, emoji string) string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%s %d. %s", emoji, i+1, item))
	}
	return strings.Join(lines, "\n")
}

// Greeting returns a time-of-day greeting.
func Greeting(t time.Time) string {
	switch hour := t.Hour(); {
	case hour >= 5 && hour < 12:
		return "Good morning"
	case hour >= 12 && hour < 17:
		return "Good afternoon"
	case hour >= 17 && hour < 22:
		return "Good evening"
	default:
		return "Hello"
	}
}
