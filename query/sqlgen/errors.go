package sqlgen

import "errors"

// ErrUnsupportedProvider is returned for providers without a generator
var ErrUnsupportedProvider = errors.New("unsupported database provider")
