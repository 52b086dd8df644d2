package review

// EffectKind tags what an Effect asks the gateway to do.
type EffectKind int

const (
	// EffectAnnounce posts Text to the moderator channel.
	EffectAnnounce EffectKind = iota
	// EffectChannelNotice posts Text to the channel of the reported message.
	EffectChannelNotice
	// EffectDirectMessage sends Text to the reported user.
	EffectDirectMessage
	// EffectReply replies to the reported message with Text.
	EffectReply
	// EffectDeleteMessage deletes the reported message.
	EffectDeleteMessage
	// EffectBan bans the reported user from the guild with Text as the audit reason.
	EffectBan
	// EffectPrompt posts Text to the moderator channel as the next tracking message.
	EffectPrompt
)

// String returns the effect name for logging.
func (k EffectKind) String() string {
	switch k {
	case EffectAnnounce:
		return "announce"
	case EffectChannelNotice:
		return "channel_notice"
	case EffectDirectMessage:
		return "direct_message"
	case EffectReply:
		return "reply"
	case EffectDeleteMessage:
		return "delete_message"
	case EffectBan:
		return "ban"
	case EffectPrompt:
		return "prompt"
	default:
		return "unknown"
	}
}

// Effect is one outbound side effect of a review transition.
type Effect struct {
	Kind EffectKind
	Text string
}

// Outcome is the result of applying a moderator reaction to a stage.
type Outcome struct {
	Action   Action
	Effects  []Effect
	Next     Stage
	Finished bool
}

// Prompt returns the text of the next-stage prompt effect, if the outcome has one.
func (o Outcome) Prompt() (string, bool) {
	for _, effect := range o.Effects {
		if effect.Kind == EffectPrompt {
			return effect.Text, true
		}
	}

	return "", false
}

func announce(text string) Effect      { return Effect{Kind: EffectAnnounce, Text: text} }
func channelNotice(text string) Effect { return Effect{Kind: EffectChannelNotice, Text: text} }
func directMessage(text string) Effect { return Effect{Kind: EffectDirectMessage, Text: text} }
func reply(text string) Effect         { return Effect{Kind: EffectReply, Text: text} }
func prompt(text string) Effect        { return Effect{Kind: EffectPrompt, Text: text} }
