// Package audit records security events of the authentication gates: code
// requests and checks, registrations, logins, lockouts and credential
// changes.
//
// Events never carry plaintext personal data. A contact is referenced by
// its lookup hash, which correlates events for one address without revealing
// it, and metadata passes through a MetadataFilter that drops secrets and
// masks contact-like values.
//
//	rec := audit.NewRecorder(audit.NewPostgresStorage(pool),
//	    audit.WithRequestIDExtractor(requestIDFromContext),
//	)
//	err := rec.Record(ctx, audit.ActionLoginFailed, audit.ResultFailure,
//	    audit.WithUserID(user.ID().String()),
//	    audit.WithReason("bad_password"),
//	)
//
// Storage is pluggable. MemoryStorage serves tests and the memory store
// mode; PostgresStorage writes the auth_events table created by Migrations.
package audit
