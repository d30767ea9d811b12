package engine

import "fmt"

// CommandKind identifies a subscription change.
type CommandKind int

const (
	CommandSubscribe CommandKind = iota
	CommandUnsubscribe
)

func (k CommandKind) String() string {
	switch k {
	case CommandSubscribe:
		return "subscribe"
	case CommandUnsubscribe:
		return "unsubscribe"
	default:
		return fmt.Sprintf("command(%d)", int(k))
	}
}

// Command is a subscription change queued for the engine worker.
type Command struct {
	Kind  CommandKind
	Topic string
}

func Subscribe(topic string) Command {
	return Command{Kind: CommandSubscribe, Topic: topic}
}

func Unsubscribe(topic string) Command {
	return Command{Kind: CommandUnsubscribe, Topic: topic}
}

func (c Command) String() string {
	return fmt.Sprintf("%s(%q)", c.Kind, c.Topic)
}
