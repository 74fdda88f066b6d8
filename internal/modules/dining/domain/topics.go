package domain

import "strings"

const (
	SystemEntity     = "system"
	DiningHallEntity = "dining-halls"
	CalendarEntity   = "calendar"

	TopicSystemConnected    = SystemEntity + ".connected"
	TopicSystemPong         = SystemEntity + ".pong"
	TopicSystemSubscribed   = SystemEntity + ".subscribed"
	TopicSystemUnsubscribed = SystemEntity + ".unsubscribed"
	TopicSystemRejected     = SystemEntity + ".rejected"

	ActionConnected    = "connected"
	ActionPong         = "pong"
	ActionSubscribed   = "subscribed"
	ActionUnsubscribed = "unsubscribed"
	ActionRejected     = "rejected"
	ActionUpdated      = "updated"
	ActionRefreshed    = "refreshed"
	ActionFailed       = "failed"
	ActionSnapshot     = "snapshot"
)

// DiningHallUpdatedTopic carries a single hall after a successful refresh.
var DiningHallUpdatedTopic = CustomTopic(DiningHallEntity, ActionUpdated)

// DiningHallsRefreshedTopic carries the aggregate result of a batch refresh.
var DiningHallsRefreshedTopic = CustomTopic(DiningHallEntity, ActionRefreshed)

// DiningHallsSnapshotTopic answers a client's snapshot command with the current collection.
var DiningHallsSnapshotTopic = CustomTopic(DiningHallEntity, ActionSnapshot)

// DiningHallFailedTopic reports a refresh requested over a socket that did not succeed.
var DiningHallFailedTopic = CustomTopic(DiningHallEntity, ActionFailed)

// DiningHallTopics lists the topics a client may subscribe to.
var DiningHallTopics = []string{
	DiningHallUpdatedTopic,
	DiningHallsRefreshedTopic,
	DiningHallsSnapshotTopic,
	DiningHallFailedTopic,
}

// IsDiningHallTopic reports whether topic is one of DiningHallTopics.
func IsDiningHallTopic(topic string) bool {
	for _, known := range DiningHallTopics {
		if topic == known {
			return true
		}
	}
	return false
}

// CustomTopic returns the canonical topic for the given entity and action.
func CustomTopic(entity, action string) string {
	cleanEntity := strings.TrimSpace(entity)
	cleanAction := strings.TrimSpace(action)
	if cleanEntity == "" || cleanAction == "" {
		return ""
	}
	return cleanEntity + "." + cleanAction
}
