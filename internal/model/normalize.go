package model

import "golang.org/x/text/unicode/norm"

// NormalizeText returns s in Unicode NFC form.
//
// SSIDs and device names arrive from different radio stacks in either
// composed or decomposed form; storing NFC keeps equality comparisons on
// read-back stable.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}
