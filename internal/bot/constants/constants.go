package constants

const (
	// Keywords.
	ReportKeyword = "report"
	CancelKeyword = "cancel"
	HelpKeyword   = "help"
	YesKeyword    = "yes"
	NoKeyword     = "no"

	// Review emoji. These must match what Discord sends byte for byte.
	EmojiBan        = "\U0001F528"       // 🔨
	EmojiWarn       = "\u26a0\ufe0f"     // ⚠️
	EmojiIgnore     = "\u274c"           // ❌
	EmojiUnsure     = "\u2753"           // ❓
	EmojiDelete     = "\U0001F5D1\ufe0f" // 🗑️
	EmojiDisclaimer = "\u203c\ufe0f"     // ‼️

	// Channel naming.
	ModChannelFormat     = "group-%s-mod"
	MonitorChannelFormat = "group-%s"

	// MessageLinkFormat builds a jump link to a message.
	MessageLinkFormat = "https://discord.com/channels/%d/%d/%d"

	// MaxMessageLength is Discord's hard limit on message content.
	MaxMessageLength = 2000

	// MaxQuotedContentLength caps quoted user content inside bot messages.
	MaxQuotedContentLength = 1500

	// MaxSummaryContentLength caps the reported content in a moderator summary,
	// leaving room for the rest of the summary within MaxMessageLength.
	MaxSummaryContentLength = 1000

	// HelpText is returned for the help keyword in direct messages.
	HelpText = "Use the `report` command to begin the reporting process.\n" +
		"Use the `cancel` command to cancel the report process.\n"
)
