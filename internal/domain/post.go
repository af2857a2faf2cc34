package domain

// RelatedPost is an entry of the related list of an article; EncodedTitle is
// the slug used to fetch the next article of the feed.
type RelatedPost struct {
	NewsID       int64  `json:"news_id"`
	Title        string `json:"title"`
	EncodedTitle string `json:"encode_titl"`
	Image        string `json:"image"`
	CategoryName string `json:"category_name"`
	PostDate     string `json:"post_date"`
}

// PostDetail is the payload of /post-detail/{slug}
type PostDetail struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	ShortTitle   string        `json:"short_title"`
	EncodedTitle string        `json:"encode_titl"`
	Description  string        `json:"description"`
	Image        string        `json:"image"`
	CategoryName string        `json:"category_name"`
	Tags         string        `json:"tags"`
	ReleaseDate  string        `json:"release_date"`
	Author       string        `json:"author_name"`
	RelatedPosts []RelatedPost `json:"relatedPost"`
}

// PostSummary is a post as listed on category and latest pages
type PostSummary struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	EncodedTitle string `json:"encode_titl"`
	ShortTitle   string `json:"short_title"`
	Image        string `json:"image"`
	CategoryName string `json:"category_name"`
	PostDate     string `json:"post_date"`
}

// CategoryPage is one page of a category listing
type CategoryPage struct {
	Slug        string        `json:"slug"`
	CurrentPage int           `json:"current_page"`
	LastPage    int           `json:"last_page"`
	Total       int           `json:"total"`
	Posts       []PostSummary `json:"data"`
}

// HasMore reports whether a later page exists
func (p CategoryPage) HasMore() bool {
	return p.CurrentPage < p.LastPage
}

// NewsDraft is the current state of the user's post as returned by /news/detail/{userId}
type NewsDraft struct {
	Category    string `json:"category"`
	ReleaseDate string `json:"release_date"`
	Title       string `json:"title"`
	ShortTitle  string `json:"short_title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Tags        string `json:"tags"`
}
