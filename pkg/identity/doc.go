// Package identity holds the User aggregate and its storage.
//
// Identifying attributes (email, phone, full name, citizen id, medical
// license, date of birth) live only in sealed form: an AES-GCM ciphertext
// plus a keyed lookup hash produced together by a Cipher. The fields are
// unexported; the accessor methods are the only way to read or write them, so
// business code never sees raw ciphertext or hash bytes.
//
// Directory is the entry point for callers. It binds the Cipher to loaded
// users and turns plaintext queries into lookup hashes with the same
// normalization used when the value was written:
//
//	dir := identity.NewDirectory(store, codec)
//	users, err := dir.FindByPhone(ctx, "081-234-5678")
//
// Lookups compare hashes only and never decrypt.
//
// Two Store implementations are provided: MemoryStore for tests and
// development, and PostgresStore on pgx/v5. Migrations holds the goose SQL
// for the PostgreSQL schema.
package identity
