package services

import "time"

const (
	KeySession = "session:%s"

	TTLSession = 24 * time.Hour
)
