package dispatcher_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/modreport/internal/bot/dispatcher"
	"github.com/robalyx/modreport/internal/bot/registry"
	"github.com/robalyx/modreport/internal/bot/report"
	"github.com/robalyx/modreport/internal/bot/review"
)

const (
	selfID         = snowflake.ID(1)
	guildID        = snowflake.ID(100)
	modChannelID   = snowflake.ID(200)
	monitoredID    = snowflake.ID(300)
	generalID      = snowflake.ID(400)
	dmChannelID    = snowflake.ID(500)
	reportedMsgID  = snowflake.ID(600)
	reporterID     = snowflake.ID(700)
	offenderID     = snowflake.ID(800)
	moderatorID    = snowflake.ID(900)
	firstPostedID  = snowflake.ID(10000)
	testGroup      = "7"
	reportedText   = "nobody likes you"
	reporterName   = "reporter"
	offenderName   = "offender"
	moderatorName  = "moderator"
	unknownChannel = snowflake.ID(4040)
)

var errUnavailable = errors.New("gateway unavailable")

type sent struct {
	ChannelID snowflake.ID
	ID        snowflake.ID
	Content   string
}

type reaction struct {
	MessageID snowflake.ID
	Emoji     string
}

type ban struct {
	UserID snowflake.ID
	Reason string
}

// fakeGateway records every call and serves one guild with one reported message.
type fakeGateway struct {
	mu sync.Mutex

	channels []dispatcher.Channel
	nextID   snowflake.ID

	sent      []sent
	dms       map[snowflake.ID][]string
	replies   []string
	deleted   []snowflake.ID
	reactions []reaction
	bans      []ban

	// failSendTo makes SendMessage to a channel fail.
	failSendTo map[snowflake.ID]bool
	// failOnce makes the next SendMessage whose content contains it fail.
	failOnce   string
	failDMs    bool
	dmsClosed  bool
	failDelete error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		channels: []dispatcher.Channel{
			{ID: generalID, Name: "general"},
			{ID: monitoredID, Name: "group-7"},
			{ID: modChannelID, Name: "group-7-mod"},
		},
		nextID:     firstPostedID,
		dms:        make(map[snowflake.ID][]string),
		failSendTo: make(map[snowflake.ID]bool),
	}
}

func (g *fakeGateway) ResolveGuild(_ context.Context, id snowflake.ID) error {
	if id != guildID {
		return fmt.Errorf("guild %s: %w", id, report.ErrNotFound)
	}
	return nil
}

func (g *fakeGateway) ResolveChannel(_ context.Context, _, id snowflake.ID) error {
	if id != generalID {
		return fmt.Errorf("channel %s: %w", id, report.ErrNotFound)
	}
	return nil
}

func (g *fakeGateway) FetchMessage(_ context.Context, gID, cID, mID snowflake.ID) (*report.Message, error) {
	if mID != reportedMsgID {
		return nil, fmt.Errorf("message %s: %w", mID, report.ErrNotFound)
	}
	return &report.Message{
		GuildID:   gID,
		ChannelID: cID,
		ID:        mID,
		Author:    report.User{ID: offenderID, Username: offenderName},
		Content:   reportedText,
	}, nil
}

func (g *fakeGateway) SendMessage(_ context.Context, channelID snowflake.ID, content string) (snowflake.ID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failSendTo[channelID] {
		return 0, errUnavailable
	}
	if g.failOnce != "" && strings.Contains(content, g.failOnce) {
		g.failOnce = ""
		return 0, errUnavailable
	}

	id := g.nextID
	g.nextID++
	g.sent = append(g.sent, sent{ChannelID: channelID, ID: id, Content: content})
	return id, nil
}

func (g *fakeGateway) SendDirectMessage(_ context.Context, userID snowflake.ID, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failDMs {
		return errUnavailable
	}
	if g.dmsClosed {
		return fmt.Errorf("user %s: %w", userID, dispatcher.ErrDirectMessagesClosed)
	}
	g.dms[userID] = append(g.dms[userID], content)
	return nil
}

func (g *fakeGateway) ReplyTo(_ context.Context, _, _ snowflake.ID, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.replies = append(g.replies, content)
	return nil
}

func (g *fakeGateway) DeleteMessage(_ context.Context, _, messageID snowflake.ID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failDelete != nil {
		return g.failDelete
	}
	g.deleted = append(g.deleted, messageID)
	return nil
}

func (g *fakeGateway) AddReaction(_ context.Context, _, messageID snowflake.ID, emoji string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.reactions = append(g.reactions, reaction{MessageID: messageID, Emoji: emoji})
	return nil
}

func (g *fakeGateway) BanMember(_ context.Context, _, userID snowflake.ID, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.bans = append(g.bans, ban{UserID: userID, Reason: reason})
	return nil
}

func (g *fakeGateway) GuildChannels(_ context.Context, id snowflake.ID) ([]dispatcher.Channel, error) {
	if id != guildID {
		return nil, errUnavailable
	}
	return g.channels, nil
}

// sentTo returns the contents posted to a channel, in order.
func (g *fakeGateway) sentTo(channelID snowflake.ID) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []string
	for _, s := range g.sent {
		if s.ChannelID == channelID {
			out = append(out, s.Content)
		}
	}
	return out
}

// lastSentTo returns the last message posted to a channel.
func (g *fakeGateway) lastSentTo(channelID snowflake.ID) sent {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := len(g.sent) - 1; i >= 0; i-- {
		if g.sent[i].ChannelID == channelID {
			return g.sent[i]
		}
	}
	return sent{}
}

func (g *fakeGateway) reactionsOn(messageID snowflake.ID) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []string
	for _, r := range g.reactions {
		if r.MessageID == messageID {
			out = append(out, r.Emoji)
		}
	}
	return out
}

type fakeClassifier struct {
	result string
	err    error
	calls  int
}

func (c *fakeClassifier) Classify(_ context.Context, text string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.result + ":" + text, nil
}

// gatedClassifier blocks every call until release is closed.
type gatedClassifier struct {
	entered chan struct{}
	release chan struct{}
}

func newGatedClassifier() *gatedClassifier {
	return &gatedClassifier{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (c *gatedClassifier) Classify(ctx context.Context, text string) (string, error) {
	select {
	case c.entered <- struct{}{}:
	default:
	}

	select {
	case <-c.release:
		return "late:" + text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// unsavedReviews fails every review save while keeping reports in memory.
type unsavedReviews struct {
	*registry.Memory
}

func (unsavedReviews) SaveReview(context.Context, *review.Session) error {
	return errUnavailable
}

type auditEntry struct {
	ReportID string
	Action   review.Action
	Finished bool
}

type fakeAudit struct {
	mu      sync.Mutex
	reports []*review.Session
	actions []auditEntry
}

func (a *fakeAudit) RecordReport(_ context.Context, s *review.Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.reports = append(a.reports, s)
	return nil
}

func (a *fakeAudit) RecordAction(
	_ context.Context, s *review.Session, action review.Action, _ report.User, finished bool,
) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.actions = append(a.actions, auditEntry{ReportID: s.ReportID.String(), Action: action, Finished: finished})
	return nil
}
