package utils

import "errors"

// ErrorBomMissing is surfaced verbatim to the operator UI, which shows a
// dedicated "configure your BOM first" message for it.
var ErrorBomMissing = errors.New("bom_missing")

var ErrorJobNotFound = errors.New("job_not_found")
