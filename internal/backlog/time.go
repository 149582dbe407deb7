package backlog

import "time"

// timeLayout is the timestamp format used for started_at / completed_at.
const timeLayout = time.RFC3339

// timeNow is a package-level variable for testability.
// Tests can replace this to control time in assertions.
var timeNow = time.Now
