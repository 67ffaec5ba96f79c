package slack

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ametelkin/pr-notify/internal/domain"
)

func testEvent(action domain.Action) domain.Event {
	return domain.Event{
		Action: action,
		PullRequest: domain.PullRequest{
			ID:          "42",
			Title:       "Add retries to uploader",
			Description: "Retries transient failures",
			Author:      domain.Actor{Name: "alice", Link: "https://git.local/users/alice"},
			CreatedDate: time.Date(2025, 3, 7, 14, 30, 0, 0, time.UTC),
			FromRepository: domain.Repository{
				Name: "uploader",
				Link: "https://git.local/projects/up/repos/uploader",
			},
			ToBranchLabel: "master",
			SelfLink:      "https://git.local/projects/up/repos/uploader/pull-requests/42",
			CommentCount:  2,
		},
	}
}

func TestBuild_CreatedMessage(t *testing.T) {
	msg := Build("C123", testEvent(domain.ActionCreated))

	require.Equal(t, "C123", msg.Channel)
	require.Len(t, msg.Blocks, 4)

	require.Equal(t, "section", msg.Blocks[0].Type)
	require.Equal(t,
		":bell: @alice assigned a new pull request: *<https://git.local/projects/up/repos/uploader/pull-requests/42|Add retries to uploader>*",
		msg.Blocks[0].Text.Text)

	require.Equal(t, "section", msg.Blocks[1].Type)
	require.Equal(t, "Retries transient failures", msg.Blocks[1].Text.Text)

	require.Equal(t, "context", msg.Blocks[2].Type)
	require.Equal(t, "divider", msg.Blocks[3].Type)
}

func TestBuild_CommentMessage(t *testing.T) {
	event := testEvent(domain.ActionComment)
	event.Comment = &domain.Comment{
		Author: domain.Actor{Name: "bob", Link: "https://git.local/users/bob"},
		Text:   "please add a test",
	}

	msg := Build("C123", event)

	require.Len(t, msg.Blocks, 5)
	require.True(t, strings.HasPrefix(msg.Blocks[0].Text.Text, ":bell: @bob added new comment: "))
	require.Equal(t, "_please add a test_", msg.Blocks[1].Text.Text)
}

func TestBuild_CommentBlockOnlyForCommentAction(t *testing.T) {
	event := testEvent(domain.ActionApproved)
	event.Comment = &domain.Comment{Author: domain.Actor{Name: "bob"}, Text: "lgtm"}

	msg := Build("C123", event)

	require.Len(t, msg.Blocks, 4)
	for _, b := range msg.Blocks {
		if b.Text != nil {
			require.NotContains(t, b.Text.Text, "lgtm")
		}
	}
}

func TestBuild_ApprovedTitle(t *testing.T) {
	msg := Build("C123", testEvent(domain.ActionApproved))

	require.True(t, strings.HasPrefix(msg.Blocks[0].Text.Text, ":bell: Your pull request approved: "))
}

func TestBuild_UnknownActionTitle(t *testing.T) {
	msg := Build("C123", testEvent(domain.Action("pr:deleted")))

	require.True(t, strings.HasPrefix(msg.Blocks[0].Text.Text, "something happened: pr:deleted: "))
}

func TestBuild_EmptyDescriptionSkipped(t *testing.T) {
	event := testEvent(domain.ActionCreated)
	event.PullRequest.Description = ""

	msg := Build("C123", event)

	require.Len(t, msg.Blocks, 3)
	require.Equal(t, "context", msg.Blocks[1].Type)
}

func TestBuild_LongDescriptionTruncated(t *testing.T) {
	event := testEvent(domain.ActionCreated)
	event.PullRequest.Description = strings.Repeat("a", 60) + " " + strings.Repeat("b", 59)

	msg := Build("C123", event)

	require.Equal(t, strings.Repeat("a", 60)+" ...", msg.Blocks[1].Text.Text)
}

func TestBuild_ContextLine(t *testing.T) {
	msg := Build("C123", testEvent(domain.ActionCreated))

	ctx := msg.Blocks[2]
	require.Len(t, ctx.Elements, 1)
	require.Equal(t,
		"07 Mar 2025 14:30 | <https://git.local/users/alice|alice> | <https://git.local/projects/up/repos/uploader|uploader> → master | 💬 2 comment(s)",
		ctx.Elements[0].Text)
}

func TestBuild_ContextLineWithoutComments(t *testing.T) {
	event := testEvent(domain.ActionCreated)
	event.PullRequest.CommentCount = 0

	msg := Build("C123", event)

	require.NotContains(t, msg.Blocks[2].Elements[0].Text, "💬")
}

func TestBuild_DividerAlwaysLast(t *testing.T) {
	actions := []domain.Action{
		domain.ActionComment,
		domain.ActionCreated,
		domain.ActionApproved,
		domain.Action("pr:deleted"),
	}

	for _, action := range actions {
		msg := Build("C123", testEvent(action))
		require.Equal(t, "divider", msg.Blocks[len(msg.Blocks)-1].Type)
	}
}

func TestTruncateDescription(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want string
	}{
		{
			name: "short stays verbatim",
			desc: "fits well under the limit",
			want: "fits well under the limit",
		},
		{
			name: "exactly fifty bytes stays verbatim",
			desc: strings.Repeat("a", 50),
			want: strings.Repeat("a", 50),
		},
		{
			name: "cut at first space past the offset",
			desc: strings.Repeat("a", 60) + " " + strings.Repeat("b", 59),
			want: strings.Repeat("a", 60) + " ...",
		},
		{
			name: "space exactly at the offset",
			desc: strings.Repeat("x", 50) + " tail words here",
			want: strings.Repeat("x", 50) + " ...",
		},
		{
			name: "no space past the offset keeps everything",
			desc: strings.Repeat("c", 120),
			want: strings.Repeat("c", 120),
		},
		{
			name: "spaces only before the offset keep everything",
			desc: "a few words early " + strings.Repeat("d", 100),
			want: "a few words early " + strings.Repeat("d", 100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, truncateDescription(tt.desc))
		})
	}
}
