// Package lifecycle defines the application lifecycle event exchanged between
// the upstream API and the reconciliation worker.
//
// The wire format is a JSON object:
//
//	{"Action": "Create", "Version": "1", "Data": {"Name": "foo", "Image": "v2"}}
//
// Decode rejects payloads that can never be reconciled with a
// *MalformedEventError: invalid JSON, an unknown action, an empty name, or an
// empty image on Create/Update. Such events are dropped by the worker rather
// than retried.
package lifecycle
