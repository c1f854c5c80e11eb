// Package contacts provides the business logic of the contacts backend.
//
// The package is independent of any transport or storage engine. The web
// layer calls [Service]; the Service validates requests and delegates
// persistence to a [Store] (see internal/store/postgres and
// internal/store/memory).
//
// # Method sets
//
// A contact owns zero or more typed methods (phone, email, social,
// address). Create and update always submit the complete method set and
// the stored set becomes exactly that: nothing from the previous set
// survives unless it is listed again. Methods with an empty value are
// dropped before they reach the store; unknown types are rejected.
//
// # Spreadsheet interchange
//
// Export flattens each contact into one row of six columns:
//
//	Name | Favorite | Phone | Email | Social | Address
//
// where every method column joins all values of that type with ", " and
// Favorite is "yes" or "no". Import reverses this: method cells are split
// on ',' and each trimmed piece becomes one method. The transformation is
// lossy: labels are not exported, and a value that itself contains a comma
// comes back as several methods.
//
// An import is all-or-nothing. The whole document is parsed and validated
// before anything is written, and the rows are inserted in one
// transaction. Every import is tagged with an id that [Service.RollbackImport]
// accepts.
//
// # Errors
//
// Errors carry a [Kind] (validation, not found, conflict, format, storage,
// unauthorized) for the transport to translate, and [MapError] turns any
// error into a coded [UserMessage].
package contacts
