package ctdf

import "errors"

// ErrUpstreamShape is wrapped by errors describing an upstream response that no longer looks like it used to
var ErrUpstreamShape = errors.New("unexpected upstream response shape")
