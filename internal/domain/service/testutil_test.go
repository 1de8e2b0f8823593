package service

import (
	"errors"
	"testing"
	"time"

	"github.com/diegoclair/slack-deadline-bot/internal/database"
	"github.com/diegoclair/slack-deadline-bot/internal/domain/contract"
	"github.com/slack-go/slack"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type postedMessage struct {
	ChannelID string
	Text      string
}

// fakeSlackClient records every post and can fail the next N calls
type fakeSlackClient struct {
	posted   []postedMessage
	failNext int
}

func (f *fakeSlackClient) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	if f.failNext > 0 {
		f.failNext--
		return "", "", errors.New("slack unavailable")
	}

	_, values, err := slack.UnsafeApplyMsgOptions("test-token", channelID, slack.APIURL, options...)
	if err != nil {
		return "", "", err
	}

	f.posted = append(f.posted, postedMessage{ChannelID: channelID, Text: values.Get("text")})
	return channelID, "1234567890.123456", nil
}

func (f *fakeSlackClient) postsTo(channelID string) []postedMessage {
	var out []postedMessage
	for _, m := range f.posted {
		if m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	return out
}

func setupService(t *testing.T, now time.Time) (*Instance, contract.DataManager, *fakeClock, *fakeSlackClient) {
	t.Helper()

	db := database.SetupTestDB(t)
	t.Cleanup(func() { database.CleanupTestDB(t, db) })

	dm := database.NewInstance(db)
	clk := &fakeClock{now: now}
	slackClient := &fakeSlackClient{}

	return NewInstance(dm, slackClient, clk), dm, clk, slackClient
}
