package serializer

import "github.com/viant/serializer/encoding/json"

var (
	// ErrFormat reports text that does not match the target type.
	ErrFormat = json.ErrFormat
	// ErrUnsupported reports a read through a write-only converter.
	ErrUnsupported = json.ErrUnsupported
	// ErrConfiguration reports an invalid configuration assignment.
	ErrConfiguration = json.ErrConfiguration
)
