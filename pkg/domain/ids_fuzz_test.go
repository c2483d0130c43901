//go:build go1.18

package domain

import (
	"testing"
)

// FuzzParseRecordID tests that parsing never panics on arbitrary input
// and always returns either a valid ID or an error.
func FuzzParseRecordID(f *testing.F) {
	f.Add("")
	f.Add("1")
	f.Add("-1")
	f.Add("0")
	f.Add("9223372036854775807")
	f.Add("'; DROP TABLE records;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("1\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseRecordID(input)
		if err != nil {
			return
		}

		// Valid ID must round-trip
		roundTrip, err := ParseRecordID(id.String())
		if err != nil {
			t.Errorf("valid ID failed round-trip: %v", err)
		}
		if roundTrip != id {
			t.Errorf("round-trip changed ID value: %d != %d", roundTrip, id)
		}
	})
}
