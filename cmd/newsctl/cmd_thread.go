package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/dto"
	"hoainiem-portal/internal/service"
)

var likeParent int64

var commentsCmd = &cobra.Command{
	Use:   "comments [post-id]",
	Short: "Print the comment thread of a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runComments,
}

var commentCmd = &cobra.Command{
	Use:   "comment [post-id] [text]",
	Short: "Add a top-level comment to a post",
	Long: `Adds a comment to a post. Words after the post id are joined with spaces.

Example:
  newsctl comment 42 Bài viết rất hay`,
	Args: cobra.MinimumNArgs(2),
	RunE: runComment,
}

var replyCmd = &cobra.Command{
	Use:   "reply [post-id] [comment-id] [text]",
	Short: "Reply to a top-level comment",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runReply,
}

var likeCmd = &cobra.Command{
	Use:   "like [post-id] [comment-id]",
	Short: "Like or unlike a comment",
	Long: `Toggles the like of a comment. For a reply pass the id of its top-level
comment with --parent.

Example:
  newsctl like 42 7 --parent 5`,
	Args: cobra.ExactArgs(2),
	RunE: runLike,
}

func parseID(name, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, value)
	}
	return id, nil
}

// threadFor returns the loaded thread of the post named by args[0]
func threadFor(cmd *cobra.Command, args []string) (*service.ThreadViewModel, error) {
	postID, err := parseID("post id", args[0])
	if err != nil {
		return nil, err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	vm := portal.ThreadService.ForPost(postID)
	if _, err := vm.Load(ctx); err != nil {
		return nil, describeError(err)
	}
	return vm, nil
}

func printThread(cmd *cobra.Command, thread domain.Thread) error {
	return printResult(cmd, dto.NewThreadResponse(thread))
}

func runComments(cmd *cobra.Command, args []string) error {
	vm, err := threadFor(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	thread, _ := vm.Snapshot(ctx)
	return printThread(cmd, thread)
}

func runComment(cmd *cobra.Command, args []string) error {
	vm, err := threadFor(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	thread, err := vm.AddComment(ctx, strings.Join(args[1:], " "))
	if err != nil {
		return describeError(err)
	}
	return printThread(cmd, thread)
}

func runReply(cmd *cobra.Command, args []string) error {
	commentID, err := parseID("comment id", args[1])
	if err != nil {
		return err
	}
	text := strings.Join(args[2:], " ")
	if domain.IsBlank(text) {
		return errors.New("reply text is empty")
	}

	vm, err := threadFor(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	thread, err := vm.ToggleReplyInput(ctx, commentID)
	if err != nil {
		return describeError(err)
	}
	if entry, ok := thread.Find(commentID); ok && !entry.ReplyBoxOpen {
		// it was open already
		if _, err := vm.ToggleReplyInput(ctx, commentID); err != nil {
			return describeError(err)
		}
	}
	if _, err := vm.SetReplyDraft(ctx, commentID, text); err != nil {
		return describeError(err)
	}
	thread, err = vm.SubmitReply(ctx, commentID)
	if err != nil {
		return describeError(err)
	}
	return printThread(cmd, thread)
}

func runLike(cmd *cobra.Command, args []string) error {
	commentID, err := parseID("comment id", args[1])
	if err != nil {
		return err
	}
	vm, err := threadFor(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	thread, err := vm.ToggleLike(ctx, commentID, likeParent > 0, likeParent)
	if err != nil {
		return describeError(err)
	}
	return printThread(cmd, thread)
}

func init() {
	likeCmd.Flags().Int64Var(&likeParent, "parent", 0, "Top-level comment id when liking a reply")
}
