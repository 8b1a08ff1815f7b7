// Package core defines the provider-agnostic domain records, the DataClient
// capability contract implemented by every backend adapter, configuration
// resolution, the error taxonomy, and the referential-integrity retry policy.
//
// Nothing in this package talks to a concrete backend; the embedded sqlite
// adapter lives in store/sql and the remote supabase adapter in
// store/supabase.
package core
