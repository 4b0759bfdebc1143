// Package contact normalizes the addresses users verify ownership of.
//
// A Contact is either a lower-cased email address or an E.164 phone number.
// Normalization is the lookup key for one-time-code challenges and the input
// of lookup hashes, so the same function must run at write time and at query
// time: Parse is that function.
//
//	c, err := contact.Parse(" Bob@Example.COM ")   // {email bob@example.com}
//	c, err = contact.Parse("081-234-5678")          // {phone +66812345678}
//	masked := contact.Mask(c.Value)                 // "bob*********com"
package contact
