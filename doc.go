// Package serializer provides a JSON facade with a fixed pipeline of type
// converters for errors, name/value multi-maps, enums, date times and IP addresses.
//
// A Serializer owns its configuration. Every call composes a fresh engine
// snapshot from it, so configuration changes never affect a call in flight.
//
//	s := serializer.New(serializer.WithIncludeNullProperties(true))
//	data, err := s.Serialize(person, true)
//	copied, err := serializer.DeepCopy(s, person)
package serializer
