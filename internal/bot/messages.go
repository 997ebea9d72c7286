package bot

import (
	"fmt"
	"html"
	"net/url"
)

const (
	LaunchAppLabel = "🚀 Launch App"
	JoinLabel      = "🎁 Join MemeIndex"

	NudgeText = "Ready to explore MemeIndex? Hit the button below! 🎯"

	InvitationTitle       = "Share MemeIndex Invitation"
	InvitationDescription = "Share this invitation with your friends to earn rewards!"
	InvitationText        = "🌟 <b>Hidden door to the MemeIndex Treasury found...</b>\n\n" +
		"Let's open it together!\n\n" +
		"💰 Join now and receive:\n" +
		"• 2 FREE votes for joining\n" +
		"• Access to exclusive meme token listings\n" +
		"• Early voting privileges"

	ErrorTitle             = "Error"
	MissingCodeDescription = "No referral code provided"
	MissingCodeText        = "No referral code was supplied. Type your referral code after the bot's username to share an invitation."
	FailedDescription      = "Failed to generate invitation message"
	FailedText             = "Sorry, there was an error generating the invitation message."

	// ReferralParam is the mini-app query parameter carrying the code.
	ReferralParam = "ref"
)

// WelcomeText is the greeting sent on /start and to new group members.
func WelcomeText(firstName string, referred bool) string {
	name := html.EscapeString(firstName)
	if referred {
		return fmt.Sprintf("Welcome %s! 👋\n\nYou've been invited to join MemeIndex! Click the Launch button below to start your journey and claim your referral bonus! 🎁", name)
	}
	return fmt.Sprintf("Welcome %s! 👋\n\nI'm your gateway to the MemeIndex Mini App. Click the button below to start exploring the world of meme tokens! 🌟", name)
}

// AppURL returns the mini-app link, carrying code as the ref parameter when
// present. Existing query parameters of base are kept.
func AppURL(base, code string) string {
	if code == "" {
		return base
	}

	u, err := url.Parse(base)
	if err != nil {
		return base + "?" + ReferralParam + "=" + url.QueryEscape(code)
	}
	q := u.Query()
	q.Set(ReferralParam, code)
	u.RawQuery = q.Encode()
	return u.String()
}

// InviteURL is the t.me deep link that starts the bot with code.
func InviteURL(botUsername, code string) string {
	return "https://t.me/" + botUsername + "?start=" + url.QueryEscape(code)
}
