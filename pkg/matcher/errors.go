package matcher

import "errors"

var errUnsupportedPattern = errors.New("matcher: unsupported pattern type")
