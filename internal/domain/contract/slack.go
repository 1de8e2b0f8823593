package contract

import "github.com/slack-go/slack"

// SlackClient is the delivery gateway used to post reminders and digests.
// It is an interface so tests can substitute a fake; the scheduler treats
// every delivery error as transient and never inspects it beyond logging.
type SlackClient interface {
	// PostMessage sends a message to a Slack channel
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}
