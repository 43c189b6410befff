package forms

import "unicode"

const LicenseNumberLength = 8

// LicenseNumberErrors checks the AAA99999 format: three uppercase letters
// followed by five digits.
func LicenseNumberErrors(license string) []string {
	if len(license) != LicenseNumberLength {
		return []string{"License number should consist of 8 characters."}
	}

	var errs []string
	for _, r := range license[:3] {
		if r > unicode.MaxASCII || !unicode.IsUpper(r) {
			errs = append(errs, "First 3 characters should be uppercase letters.")
			break
		}
	}
	for _, r := range license[3:] {
		if r < '0' || r > '9' {
			errs = append(errs, "Last 5 characters should be digits.")
			break
		}
	}
	return errs
}
