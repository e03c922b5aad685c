package store

import "github.com/google/uuid"

// Key layout in the backing KV store:
//
//	session:<id>             one Session record
//	session:<id>:activities  ordered JSON array of activity event ids
//	activity:<id>            one ActivityEvent record
const (
	sessionPrefix     = "session:"
	activityPrefix    = "activity:"
	activityIdxSuffix = ":activities"
)

func sessionKey(id uuid.UUID) string {
	return sessionPrefix + id.String()
}

func activityKey(id uuid.UUID) string {
	return activityPrefix + id.String()
}

func sessionIndexKey(sessionID uuid.UUID) string {
	return sessionPrefix + sessionID.String() + activityIdxSuffix
}
