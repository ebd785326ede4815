package pages

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/newsdesk/web/internal/backend"
	"codeberg.org/newsdesk/web/internal/errors"
)

func homePage(c *gin.Context, req *Request) {
	items, ok := decodeNews(c, req.Data, "news")
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "news_list", newsListPage{
		Frame:   frame(c, "Home", req.State, req.Deps),
		Heading: "Latest news",
		Items:   items,
	})
}

func categoryPage(c *gin.Context, req *Request) {
	items, ok := decodeNews(c, req.Data, "category")
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "news_list", newsListPage{
		Frame:   frame(c, "Category", req.State, req.Deps),
		Heading: "Category",
		Items:   items,
	})
}

func newsDetailPage(c *gin.Context, req *Request) {
	if err := req.Data.Err(); err != nil {
		errors.Page(c, "failed to load news", err)
		return
	}

	// the backend serves either the article or a one-element list
	var item backend.NewsItem
	if err := req.Data.Decode(&item); err != nil {
		var list []backend.NewsItem
		if listErr := req.Data.Decode(&list); listErr != nil || len(list) == 0 {
			errors.Page(c, "failed to read news", err)
			return
		}
		item = list[0]
	}

	c.HTML(http.StatusOK, "news", newsPage{
		Frame:   frame(c, item.Title, req.State, req.Deps),
		Item:    item,
		Details: req.Deps.Renderer.Markdown(item.Details),
	})
}

// statically rendered terms page
func termsPage(c *gin.Context, req *Request) {
	c.HTML(http.StatusOK, "terms", frame(c, "Terms and conditions", req.State, req.Deps))
}

func decodeNews(c *gin.Context, resp *backend.Response, name string) ([]backend.NewsItem, bool) {
	if err := resp.Err(); err != nil {
		errors.Page(c, "failed to load "+name, err)
		return nil, false
	}

	var items []backend.NewsItem
	if err := resp.Decode(&items); err != nil {
		errors.Page(c, "failed to read "+name, err)
		return nil, false
	}

	return items, true
}
