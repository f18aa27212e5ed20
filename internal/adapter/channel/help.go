package channel

// GreetingText is the reply to /start.
func GreetingText() string {
	return `Hi! I find original sources for claims and news snippets.

Send me a piece of text (or forward a post) and I will search the web,
rank the most relevant pages, and reply with the top matches and a
confidence estimate for each.

Type /help for details.`
}

// HelpText is the reply to /help.
func HelpText() string {
	return `How to use this bot:

1. Send any text you want to verify: a claim, a quote, a news snippet.
2. I search the web for pages covering the same story.
3. I rank them by relevance and reply with the top matches, each with
   a confidence level and a short explanation.

Tips:
- Longer, more specific text gives better matches.
- Forwarded posts work too: I read the caption when there is no text.
- Results are ranked high / medium / low confidence.

Commands:
/start - show the welcome message
/help - show this help`
}
