// Package sanitizer cleans free-text input before it is validated and
// sealed. Transforms are plain functions composed with Apply or Compose:
//
//	name := sanitizer.PersonName(form.FullName)
//	blood := sanitizer.Apply(form.BloodType, sanitizer.Trim, sanitizer.ToUpper)
//
// Sanitizing never replaces validation; it only removes noise that would
// otherwise change the lookup hash of an equivalent value.
package sanitizer
