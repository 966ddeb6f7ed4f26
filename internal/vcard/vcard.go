// Package vcard renders contact cards for the "My QR" feature.
package vcard

import "strings"

// Card is the user's own contact details.
type Card struct {
	FullName     string `json:"full_name"`
	Organization string `json:"organization"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Notes        string `json:"notes"`
}

// String renders c as a vCard 3.0 document. Lines are separated by "\n"
// with no trailing newline.
func (c Card) String() string {
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:" + escape(c.FullName),
		"ORG:" + escape(c.Organization),
		"ADR:;;" + escape(c.Address),
		"TEL:" + escape(c.Phone),
		"EMAIL:" + escape(c.Email),
		"NOTE:" + escape(c.Notes),
		"END:VCARD",
	}
	return strings.Join(lines, "\n")
}

// Empty reports whether every field is blank.
func (c Card) Empty() bool {
	return strings.TrimSpace(c.FullName+c.Organization+c.Address+c.Phone+c.Email+c.Notes) == ""
}

// escape keeps user input on a single property line.
func escape(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
