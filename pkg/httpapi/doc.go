// Package httpapi exposes the identity gates over JSON HTTP.
//
// Routes, mounted under /auth by Router:
//
//	POST /auth/request-otp     {contact, purpose}
//	POST /auth/verify-otp      {contact, otp, purpose}
//	POST /auth/register        {email|phone, password, full_name, role, ...}
//	POST /auth/login           {identifier, password}
//	POST /auth/reset-password  {contact, otp, new_password}
//
// Every response uses the same envelope:
//
//	{"status":"success|error","message":"...","data":{...},"errors":{...},"request_id":"..."}
//
// Errors map to status codes by kind: validation 422, unverified contact or
// bad code 400, wrong credentials 401, disabled account 403, conflicts 409 and
// locked account 423. Delivery failures and anything unexpected are a 500.
//
// RequestID middleware accepts a well-formed X-Request-ID or generates one;
// RequestIDExtractor adds it to every log record made with the request context.
package httpapi
