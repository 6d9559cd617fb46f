// Package slotkey encodes (date, meal slot) pairs as assignment keys of the
// form "YYYY-MM-DD_slotID".
package slotkey

import (
	"strings"
	"time"

	"github.com/fdg312/meal-hub/internal/apperr"
	"github.com/fdg312/meal-hub/internal/calendar"
)

// Separator joins the date and slot id halves of a key.
const Separator = "_"

// Key is the decoded form of an assignment key.
type Key struct {
	Date   time.Time
	SlotID string
}

func (k Key) String() string {
	return Encode(k.Date, k.SlotID)
}

// Encode returns the assignment key for slotID on date. The date half is
// fixed width, so keys sharing a slot id sort in date order.
func Encode(date time.Time, slotID string) string {
	return calendar.FormatDate(date) + Separator + slotID
}

// Decode splits key at the first separator. The date half never contains the
// separator, so slot ids are free to.
func Decode(key string) (time.Time, string, error) {
	datePart, slotID, found := strings.Cut(key, Separator)
	if !found {
		return time.Time{}, "", apperr.Newf(apperr.CodeMalformedKey, "assignment key %q has no separator", key)
	}
	if slotID == "" {
		return time.Time{}, "", apperr.Newf(apperr.CodeMalformedKey, "assignment key %q has an empty slot id", key)
	}
	date, err := calendar.ParseDate(datePart)
	if err != nil {
		return time.Time{}, "", apperr.Wrap(apperr.CodeMalformedKey, "assignment key date must be YYYY-MM-DD", err)
	}
	return date, slotID, nil
}

// Parse is Decode returning a Key.
func Parse(key string) (Key, error) {
	date, slotID, err := Decode(key)
	if err != nil {
		return Key{}, err
	}
	return Key{Date: date, SlotID: slotID}, nil
}
