// Package fanout implements the status fan-out pipeline of spec §4.5: per-
// kind change detection, seed emission after startup/reconnect, a 50ms
// coalescing window, and bounded per-adapter delivery with lag detection.
package fanout

import "github.com/metaneutrons/snapdog2-sub015/internal/model"

// StatusEvent is the fan-out's wire type, identical to model.StatusEvent.
type StatusEvent = model.StatusEvent
