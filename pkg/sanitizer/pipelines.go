package sanitizer

// PersonName cleans a display name: tags and control runes removed,
// white space collapsed.
var PersonName = Compose(StripHTML, RemoveControlChars, NormalizeWhitespace)

// Code cleans short enumerated values such as blood types.
var Code = Compose(RemoveControlChars, Trim, ToUpper)

// Keyword cleans lower-case enumerated values such as gender.
var Keyword = Compose(RemoveControlChars, Trim, ToLower)

// Identifier cleans document numbers. Internal separators are kept for the
// validators that accept them.
var Identifier = Compose(RemoveControlChars, Trim)
