// Package tableentity maps Go structs to the flat entity shape used by
// wide-column table stores and back.
//
// A record's exported, writable fields become entity properties named after
// the field. Values of a native storage kind (integers, floats, bool,
// string, []byte, time.Time, uuid.UUID, nil) are stored as is; anything else
// is stored as JSON text under "<Name>Json". Partition and row keys come
// either from literal strings or from designated fields.
//
// Typical usage:
//
//	e, err := tableentity.ToEntityByFields(emp, "Company", "ID")
//	...
//	back, err := tableentity.FromEntityByFields[Employee](e, "Company", "ID")
//
// The type parameter T must be a struct type; pointers are rejected with a
// ConfigurationError. Fields tagged `table:"-"` are never mapped, and fields tagged
// `table:",readonly"` are treated as lacking write access.
package tableentity
