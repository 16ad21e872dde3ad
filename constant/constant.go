package constant

type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
	EventTypePurged  EventType = "purged"
)

func (e EventType) String() string {
	return string(e)
}

// RoutingKey is the topic key a tutorial event is published under.
func (e EventType) RoutingKey() string {
	return "tutorial." + string(e)
}

const (
	DefaultExchangeName = "tutorials_exchange"
	DefaultQueueName    = "tutorials_archive_queue"
	DefaultRoutingKey   = "tutorial.*"

	ArchivePrefix = "tutorials/"
)

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
