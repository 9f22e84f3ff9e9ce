package policy

import (
	"regexp"
	"strings"
)

// DefaultSeparatorLines is the number of "." lines under the credit line.
const DefaultSeparatorLines = 4

var attributionPattern = regexp.MustCompile(`Model.*@([A-Za-z0-9_.]+)`)

// ExtractAttribution finds a "Model ... @handle" credit in caption text.
func ExtractAttribution(text string) (string, bool) {
	match := attributionPattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// CaptionBuilder lays out the caption of a re-post.
type CaptionBuilder struct {
	SeparatorLines int
}

// Build assembles the caption: a credit line for the managed account,
// separator lines, the optional model attribution and the hashtag block.
func (b CaptionBuilder) Build(accountLabel string, hashtags []string, attribution string) string {
	separators := b.SeparatorLines
	if separators <= 0 {
		separators = DefaultSeparatorLines
	}

	var sb strings.Builder
	if accountLabel != "" {
		sb.WriteString("Follow @" + accountLabel + "\n")
	}
	sb.WriteString(strings.Repeat(".\n", separators))
	if attribution != "" {
		sb.WriteString("👤 Model: ★ @" + attribution + " ☆\n")
		sb.WriteString(strings.Repeat(".\n", 3))
	}
	if len(hashtags) > 0 {
		sb.WriteString("#" + strings.Join(hashtags, " #"))
	}
	return sb.String()
}

// BuildCaption builds a caption with the default layout.
func BuildCaption(accountLabel string, hashtags []string, attribution string) string {
	return CaptionBuilder{}.Build(accountLabel, hashtags, attribution)
}
