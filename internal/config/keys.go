package config

import "fmt"

// DefaultNamespace is the application namespace used for event topics and alert headers.
const DefaultNamespace = "21PointsApp"

type KeyStruct struct{}

// UserSettingsUpdateTopic returns the event bus topic fired after a user settings
// create or update. It doubles as the Redis Pub/Sub channel name.
func (KeyStruct) UserSettingsUpdateTopic(namespace string) string {
	return fmt.Sprintf("%s:userSettingsUpdate", namespace)
}

// UserSettingsIndexKey returns the Redis hash holding the user settings search index.
func (KeyStruct) UserSettingsIndexKey() string {
	return "search:usersettings"
}

// UserSettingsIndexQueue returns the Redis list consumed by the index worker.
func (KeyStruct) UserSettingsIndexQueue() string {
	return "index_usersettings_queue"
}

// AlertHeader returns the response header carrying success alerts.
func (KeyStruct) AlertHeader(namespace string) string {
	return fmt.Sprintf("X-%s-alert", namespace)
}

// ErrorHeader returns the response header carrying failure alerts.
func (KeyStruct) ErrorHeader(namespace string) string {
	return fmt.Sprintf("X-%s-error", namespace)
}

// ParamsHeader returns the response header carrying the alert parameter.
func (KeyStruct) ParamsHeader(namespace string) string {
	return fmt.Sprintf("X-%s-params", namespace)
}

var Key = KeyStruct{}
