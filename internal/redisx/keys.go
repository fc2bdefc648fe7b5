package redisx

import "time"

const (
	// Cached order state: order_status:{order_id} -> JSON order summary.
	KeyOrderStatus = "order_status:%s"

	// Fast-path dedup for gateway notifications:
	// notify:{payment_id}:{status_code}. The DB guard stays authoritative.
	KeyNotifySeen = "notify:%s:%s"

	// Dedup for consumed events: dedup:{service}:{event_id}.
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLNotifySeen  = 48 * time.Hour
	TTLDedup       = 48 * time.Hour
)
