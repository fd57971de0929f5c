// Package services defines the error markers and context plumbing shared by
// the scanner and the external tool/provider clients below it.
//
// Clients wrap failures with Wrap so callers can classify them with
// errors.Is: lookup failures degrade to negative placeholders while
// external tool failures abort the unit that triggered them.
package services
