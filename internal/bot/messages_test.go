package bot

import (
	"strings"
	"testing"
)

func TestAppURL(t *testing.T) {
	tests := []struct {
		base, code, want string
	}{
		{"https://app.memeindex.io", "", "https://app.memeindex.io"},
		{"https://app.memeindex.io", "abc123", "https://app.memeindex.io?ref=abc123"},
		{"https://app.memeindex.io/launch?theme=dark", "abc123", "https://app.memeindex.io/launch?ref=abc123&theme=dark"},
		{"https://app.memeindex.io", "a b&c", "https://app.memeindex.io?ref=a+b%26c"},
	}

	for _, tt := range tests {
		if got := AppURL(tt.base, tt.code); got != tt.want {
			t.Errorf("AppURL(%q, %q) = %q, want %q", tt.base, tt.code, got, tt.want)
		}
	}
}

func TestAppURLDeterministic(t *testing.T) {
	first := AppURL("https://app.memeindex.io/?x=1&y=2", "zz9")
	for i := 0; i < 10; i++ {
		if got := AppURL("https://app.memeindex.io/?x=1&y=2", "zz9"); got != first {
			t.Fatalf("AppURL changed between calls: %q != %q", got, first)
		}
	}
}

func TestInviteURL(t *testing.T) {
	if got, want := InviteURL("MemeBot", "abc123"), "https://t.me/MemeBot?start=abc123"; got != want {
		t.Errorf("InviteURL = %q, want %q", got, want)
	}
}

func TestWelcomeText(t *testing.T) {
	referred := WelcomeText("Ana", true)
	plain := WelcomeText("Ana", false)

	if !strings.HasPrefix(referred, "Welcome Ana! 👋") || !strings.HasPrefix(plain, "Welcome Ana! 👋") {
		t.Fatalf("greeting missing: %q / %q", referred, plain)
	}
	if !strings.Contains(referred, "claim your referral bonus") {
		t.Errorf("referral copy missing: %q", referred)
	}
	if strings.Contains(plain, "referral") {
		t.Errorf("non-referral copy mentions referral: %q", plain)
	}
	if got := WelcomeText("<b>x</b>", false); !strings.HasPrefix(got, "Welcome &lt;b&gt;x&lt;/b&gt;!") {
		t.Errorf("first name not escaped: %q", got)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text     string
		wantName string
		wantArgs int
		wantOK   bool
	}{
		{"/start", "start", 0, true},
		{"/start abc123", "start", 1, true},
		{"/START@MemeBot abc123 extra", "start", 2, true},
		{"/help", "help", 0, true},
		{"hello /start", "", 0, false},
		{"", "", 0, false},
	}

	for _, tt := range tests {
		name, args, ok := parseCommand(tt.text)
		if name != tt.wantName || len(args) != tt.wantArgs || ok != tt.wantOK {
			t.Errorf("parseCommand(%q) = %q, %v, %v", tt.text, name, args, ok)
		}
	}
}

func TestStartParameter(t *testing.T) {
	tests := map[string]string{
		"abc123":    "abc123",
		"abc-def_1": "abc-def_1",
		"abc.def":   "abc",
		"abc<b>":    "abc",
		"?ref=x":    "",
		"код":       "",
	}
	for arg, want := range tests {
		if got := startParameter(arg); got != want {
			t.Errorf("startParameter(%q) = %q, want %q", arg, got, want)
		}
	}
}
