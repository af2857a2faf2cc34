package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/service"
)

var (
	categoryPage  int
	metadataTopic string
	readFollow    int
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Print the navigation menu tree",
	Args:  cobra.NoArgs,
	RunE:  runMenu,
}

var sidebarCmd = &cobra.Command{
	Use:   "sidebar",
	Short: "Print the sidebar categories",
	Args:  cobra.NoArgs,
	RunE:  runSidebar,
}

var categoryCmd = &cobra.Command{
	Use:   "category [slug]",
	Short: "List the posts of a category",
	Long: `Lists one page of a category.

Example:
  newsctl category the-thao --page 2`,
	Args: cobra.ExactArgs(1),
	RunE: runCategory,
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "List the latest posts",
	Args:  cobra.NoArgs,
	RunE:  runLatest,
}

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Print the site metadata",
	Args:  cobra.NoArgs,
	RunE:  runMetadata,
}

// readCmd opens an article feed
var readCmd = &cobra.Command{
	Use:   "read [slug]",
	Short: "Read an article and, with --follow, the related articles after it",
	Long: `Loads the article of slug. With --follow N up to N related articles are
loaded after it, in the order the platform lists them.

Example:
  newsctl read gia-vang-hom-nay --follow 3`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

// readResult is the outcome of a read
type readResult struct {
	Page     int                  `json:"page"`
	HasMore  bool                 `json:"hasMore"`
	Articles []domain.PostDetail  `json:"articles"`
	Related  []domain.RelatedPost `json:"related"`
}

func runMenu(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	menu, err := portal.CategoryService.Menu(ctx)
	if err != nil {
		return describeError(err)
	}
	return printResult(cmd, menu)
}

func runSidebar(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	sidebar, err := portal.CategoryService.Sidebar(ctx)
	if err != nil {
		return describeError(err)
	}
	return printResult(cmd, sidebar)
}

func runCategory(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	page, err := portal.FeedService.CategoryPage(ctx, args[0], categoryPage)
	if err != nil {
		return describeError(err)
	}
	return printResult(cmd, page)
}

func runLatest(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	posts, err := portal.FeedService.Latest(ctx)
	if err != nil {
		return describeError(err)
	}
	return printResult(cmd, posts)
}

func runMetadata(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	meta, err := portal.MetadataService.Site(ctx, metadataTopic)
	if err != nil {
		return describeError(err)
	}
	return printResult(cmd, meta)
}

func runRead(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	feed, err := portal.FeedService.Open(ctx, args[0])
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			return errors.New("article not found: " + args[0])
		}
		return describeError(err)
	}
	defer portal.FeedService.Close(feed.ID)

	for i := 0; i < readFollow; i++ {
		if _, err := feed.LoadNext(ctx); err != nil {
			if errors.Is(err, service.ErrFeedExhausted) {
				break
			}
			if errors.Is(err, service.ErrArticleNotFound) {
				logger.Warn("Related article unavailable, stopping", zap.Int("position", i+1))
				break
			}
			return describeError(err)
		}
	}

	state := feed.State()
	return printResult(cmd, readResult{
		Page:     state.Page,
		HasMore:  state.HasMore,
		Articles: state.Articles,
		Related:  state.Related,
	})
}

func init() {
	categoryCmd.Flags().IntVarP(&categoryPage, "page", "p", 1, "Page number")
	metadataCmd.Flags().StringVar(&metadataTopic, "topic", "", "Topic whose metadata to fetch (default: home)")
	readCmd.Flags().IntVarP(&readFollow, "follow", "f", 0, "Number of related articles to load after the first")
}
