package slack

import (
	"fmt"
	"strings"

	"github.com/ametelkin/pr-notify/internal/domain"
)

const (
	titleIcon = ":bell:"

	// Descriptions longer than this are cut at the first space at or past
	// the offset. The offset counts bytes, matching the upstream rule.
	descriptionOffset = 50

	ellipsis = "..."

	dateLayout = "02 Jan 2006 15:04"
)

// Message is the chat.postMessage payload: a destination channel and an
// ordered block sequence.
type Message struct {
	Channel string  `json:"channel"`
	Blocks  []Block `json:"blocks"`
}

// Block is one tagged element of the message layout. Type is "section",
// "context" or "divider"; Text is set on sections, Elements on context
// blocks, neither on dividers.
type Block struct {
	Type     string `json:"type"`
	Text     *Text  `json:"text,omitempty"`
	Elements []Text `json:"elements,omitempty"`
}

// Text is a mrkdwn text object.
type Text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func section(text string) Block {
	return Block{Type: "section", Text: &Text{Type: "mrkdwn", Text: text}}
}

func contextBlock(text string) Block {
	return Block{Type: "context", Elements: []Text{{Type: "mrkdwn", Text: text}}}
}

func divider() Block {
	return Block{Type: "divider"}
}

// Build renders one event into the message posted to the chat channel.
// It is a pure transformation; the channel id passes through unvalidated.
func Build(channelID string, event domain.Event) Message {
	pr := event.PullRequest

	blocks := []Block{
		section(fmt.Sprintf("%s: *<%s|%s>*", title(event), pr.SelfLink, pr.Title)),
	}

	if event.Action == domain.ActionComment && event.Comment != nil {
		blocks = append(blocks, section(fmt.Sprintf("_%s_", event.Comment.Text)))
	}

	if pr.Description != "" {
		blocks = append(blocks, section(truncateDescription(pr.Description)))
	}

	blocks = append(blocks, contextBlock(contextLine(pr)), divider())

	return Message{Channel: channelID, Blocks: blocks}
}

func title(event domain.Event) string {
	switch event.Action {
	case domain.ActionComment:
		var author string
		if event.Comment != nil {
			author = event.Comment.Author.Name
		}
		return fmt.Sprintf("%s @%s added new comment", titleIcon, author)
	case domain.ActionCreated:
		return fmt.Sprintf("%s @%s assigned a new pull request", titleIcon, event.PullRequest.Author.Name)
	case domain.ActionApproved:
		return titleIcon + " Your pull request approved"
	default:
		return fmt.Sprintf("something happened: %s", event.Action)
	}
}

// truncateDescription cuts the text at the first space at or past the
// offset, keeping the space, and appends an ellipsis. Text with no such
// space is kept whole so a single long token is never lost.
func truncateDescription(desc string) string {
	if len(desc) <= descriptionOffset {
		return desc
	}
	idx := strings.IndexByte(desc[descriptionOffset:], ' ')
	if idx < 0 {
		return desc
	}
	return desc[:descriptionOffset+idx+1] + ellipsis
}

func contextLine(pr domain.PullRequest) string {
	line := fmt.Sprintf("%s | <%s|%s> | <%s|%s> → %s",
		pr.CreatedDate.Format(dateLayout),
		pr.Author.Link, pr.Author.Name,
		pr.FromRepository.Link, pr.FromRepository.Name,
		pr.ToBranchLabel,
	)
	if pr.CommentCount > 0 {
		line += fmt.Sprintf(" | 💬 %d comment(s)", pr.CommentCount)
	}
	return line
}
