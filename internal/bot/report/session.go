package report

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/modreport/internal/bot/constants"
	"github.com/robalyx/modreport/pkg/utils"
)

// ErrNotFound is wrapped by resolvers when a guild, channel or message does not exist
// or is not visible to the bot.
var ErrNotFound = errors.New("not found")

// messageLinkPattern finds the guild/channel/message triple of a message link.
var messageLinkPattern = regexp.MustCompile(`/(\d+)/(\d+)/(\d+)`)

// User identifies a chat account.
type User struct {
	ID       snowflake.ID `json:"id"`
	Username string       `json:"username"`
}

// Message is the snapshot of a reported message taken when the link is resolved.
type Message struct {
	GuildID   snowflake.ID `json:"guildId"`
	ChannelID snowflake.ID `json:"channelId"`
	ID        snowflake.ID `json:"id"`
	Author    User         `json:"author"`
	Content   string       `json:"content"`
}

// Link returns the jump link to the message.
func (m *Message) Link() string {
	return fmt.Sprintf(constants.MessageLinkFormat, m.GuildID, m.ChannelID, m.ID)
}

// Resolver looks up the pieces of a message link. Missing entities are reported
// with an error wrapping ErrNotFound; any other error is a lookup failure.
type Resolver interface {
	ResolveGuild(ctx context.Context, guildID snowflake.ID) error
	ResolveChannel(ctx context.Context, guildID, channelID snowflake.ID) error
	FetchMessage(ctx context.Context, guildID, channelID, messageID snowflake.ID) (*Message, error)
}

// Session is one reporter's walk through the intake conversation.
// It is owned by the reporter for its whole lifetime.
type Session struct {
	State        State    `json:"state"`
	Reporter     User     `json:"reporter"`
	Message      *Message `json:"message,omitempty"`
	Reason       Reason   `json:"reason,omitempty"`
	Category     string   `json:"category,omitempty"`
	WantsDetails bool     `json:"wantsDetails"`
	WantsBlock   bool     `json:"wantsBlock"`
	Cancelled    bool     `json:"cancelled"`
}

// NewSession starts a report for the given reporter.
func NewSession(reporter User) *Session {
	return &Session{
		State:    StateStart,
		Reporter: reporter,
	}
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	clone := *s
	if s.Message != nil {
		msg := *s.Message
		clone.Message = &msg
	}

	return &clone
}

// IsComplete reports whether the conversation has ended, either by submission or cancellation.
func (s *Session) IsComplete() bool {
	return s.State == StateComplete
}

// Submitted reports whether the session ended with a report for moderators.
func (s *Session) Submitted() bool {
	return s.State == StateComplete && !s.Cancelled
}

// Handle consumes one message from the reporter and returns the replies to send back, in order.
func (s *Session) Handle(ctx context.Context, resolver Resolver, content string) []string {
	if s.State != StateComplete && utils.IsKeyword(content, constants.CancelKeyword) {
		s.State = StateComplete
		s.Cancelled = true

		return []string{"Report cancelled."}
	}

	switch s.State {
	case StateStart:
		s.State = StateAwaitingLink
		return []string{introText()}
	case StateAwaitingLink:
		return s.handleLink(ctx, resolver, content)
	case StateAwaitingReason:
		return s.handleReason(content)
	case StateAwaitingCategory:
		return s.handleCategory(content)
	case StateAwaitingDetails:
		return s.handleDetails(content)
	case StateAwaitingBlock:
		return s.handleBlock(content)
	case StateComplete:
		return []string{"Your report has been submitted. Thank you for helping us keep our community safe!"}
	}

	return nil
}

func (s *Session) handleLink(ctx context.Context, resolver Resolver, content string) []string {
	guildID, channelID, messageID, ok := parseMessageLink(content)
	if !ok {
		return []string{"I'm sorry, I couldn't read that link. Please try again or say `cancel` to cancel."}
	}

	if err := resolver.ResolveGuild(ctx, guildID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []string{
				"I cannot accept reports of messages from guilds that I'm not in. " +
					"Please have the guild owner add me to the guild and try again.",
			}
		}

		return []string{lookupFailedText()}
	}

	if err := resolver.ResolveChannel(ctx, guildID, channelID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []string{"It seems this channel was deleted or never existed. Please try again or say `cancel` to cancel."}
		}

		return []string{lookupFailedText()}
	}

	msg, err := resolver.FetchMessage(ctx, guildID, channelID, messageID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []string{"It seems this message was deleted or never existed. Please try again or say `cancel` to cancel."}
		}

		return []string{lookupFailedText()}
	}

	s.Message = msg
	s.State = StateAwaitingReason

	return []string{
		"I found this message:",
		fmt.Sprintf("```%s: %s```", msg.Author.Username, quote(msg.Content)),
		"Please select a reason for reporting this message:",
		ReasonList(),
	}
}

func (s *Session) handleReason(content string) []string {
	reason, ok := ParseReason(content)
	if !ok {
		return []string{
			"I'm sorry, I don't recognize that reason. Please choose one of the following:",
			ReasonList(),
		}
	}

	s.Reason = reason
	s.State = StateAwaitingCategory

	return []string{
		fmt.Sprintf("You have selected `%s`.\nPlease select a category for your report:\n%s",
			reason.DisplayName(), s.categoryList()),
	}
}

func (s *Session) handleCategory(content string) []string {
	choice, err := strconv.Atoi(strings.TrimSpace(content))
	if err != nil {
		return []string{s.unknownCategoryText()}
	}

	category, ok := s.Reason.Category(choice)
	if !ok {
		return []string{s.unknownCategoryText()}
	}

	s.Category = category
	s.State = StateAwaitingDetails

	return []string{
		fmt.Sprintf("You have selected `%s`: `%s`.\n", s.Reason.DisplayName(), s.Category) +
			"Would you like to provide any additional details or screenshots to help us review this report? (`yes` or `no`)",
	}
}

func (s *Session) handleDetails(content string) []string {
	answer, ok := parseYesNo(content)
	if !ok {
		return []string{yesNoText()}
	}

	s.WantsDetails = answer
	s.State = StateAwaitingBlock

	if answer {
		return []string{
			"Thank you! A human moderator will be reaching out to you shortly through direct message for additional details.",
			blockPromptText(),
		}
	}

	return []string{blockPromptText()}
}

func (s *Session) handleBlock(content string) []string {
	answer, ok := parseYesNo(content)
	if !ok {
		return []string{yesNoText()}
	}

	s.WantsBlock = answer
	s.State = StateComplete

	closing := "Our moderation team will review the message and take necessary action, " +
		"which may include warning, suspension, or account removal."

	if answer {
		return []string{
			"Thanks for your report. This account will be blocked from contacting you further.",
			closing,
		}
	}

	return []string{"Thanks for your report. " + closing}
}

// categoryList renders the numbered category choices for the stored reason.
func (s *Session) categoryList() string {
	var b strings.Builder
	for i, category := range s.Reason.Categories() {
		fmt.Fprintf(&b, "`%d`: %s\n", i+1, category)
	}

	b.WriteString("Please respond with the number of the category you want to choose.")

	return b.String()
}

func (s *Session) unknownCategoryText() string {
	return "I'm sorry, I don't recognize that category. Please choose one of the following:\n" + s.categoryList()
}

// parseMessageLink extracts the three ids from a message link.
func parseMessageLink(content string) (guildID, channelID, messageID snowflake.ID, ok bool) {
	match := messageLinkPattern.FindStringSubmatch(content)
	if match == nil {
		return 0, 0, 0, false
	}

	ids := make([]snowflake.ID, 3)
	for i := range ids {
		id, err := snowflake.Parse(match[i+1])
		if err != nil {
			return 0, 0, 0, false
		}

		ids[i] = id
	}

	return ids[0], ids[1], ids[2], true
}

func parseYesNo(content string) (bool, bool) {
	switch utils.NormalizeKeyword(content) {
	case constants.YesKeyword:
		return true, true
	case constants.NoKeyword:
		return false, true
	default:
		return false, false
	}
}

func quote(content string) string {
	return utils.EscapeCodeBlock(utils.Truncate(content, constants.MaxQuotedContentLength))
}

func introText() string {
	return "Thank you for starting the reporting process. " +
		"Say `help` at any time for more information.\n\n" +
		"Please copy paste the link to the message you want to report.\n" +
		"You can obtain this link by right-clicking the message and clicking `Copy Message Link`."
}

func lookupFailedText() string {
	return "I couldn't look up that message right now. Please try again or say `cancel` to cancel."
}

func yesNoText() string {
	return "I'm sorry, I don't recognize that response. Please respond with `yes` or `no`."
}

func blockPromptText() string {
	return "Would you like to block this user from contacting you further? (`yes` or `no`)"
}
