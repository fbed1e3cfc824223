// Package form owns the raw values of the prediction form, their validation
// and the two error kinds a submission can end with.
//
// Validation never reaches the network: a ValidationError is produced
// locally, while a RequestError covers everything that goes wrong once the
// request has been issued (HTTP status, transport, body decoding).
package form
