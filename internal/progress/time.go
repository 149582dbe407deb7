package progress

import "time"

// timeLayout is the timestamp format used in entry headings and the
// log header.
const timeLayout = time.RFC3339

// timeNow is a package-level variable for testability.
// Tests can replace this to control time in assertions.
// Same pattern as backlog/time.go.
var timeNow = time.Now
