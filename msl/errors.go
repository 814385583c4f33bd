package msl

import "errors"

// ErrUnsupportedConstruct indicates the module uses a construct with no
// direct Metal Shading Language equivalent. Writers may still emit a
// best-effort translation unit alongside this error.
var ErrUnsupportedConstruct = errors.New("msl: unsupported construct")
