package gemini

// ReplyPromptFormat wraps an incoming chat message with the asker's name so
// the persona can address them directly. Args: user name, message text.
const ReplyPromptFormat = "%s asks: %s"

// PostPromptFormat requests a short social post in persona voice.
// Args: topic.
const PostPromptFormat = "Write a single short post (under 280 characters) for the community feed about: %s. " +
	"No hashtag spam, at most one hashtag. Stay in character."
