package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// queryBool treats "1" and "true" as true and everything else as false
func queryBool(c *gin.Context, key string) bool {
	v := strings.TrimSpace(c.Query(key))
	return v == "1" || strings.EqualFold(v, "true")
}

// queryList accepts both key=a&key=b and key=a,b
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func queryInt(c *gin.Context, key string) (int, bool) {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0, false
	}
	return v, true
}

// paramID parses the :id path parameter, answering 404 when it is not a uuid
func paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}

// pageFromQuery reads page and limit, falling back to defaultSize
func pageFromQuery(c *gin.Context, defaultSize int) service.Page {
	page := service.Page{Number: 1, Size: defaultSize}
	if n, ok := queryInt(c, "page"); ok {
		page.Number = n
	}
	if n, ok := queryInt(c, "limit"); ok {
		page.Size = n
	}
	return page.Normalize()
}

// paginate wraps results in the page envelope with absolute next/previous links
func paginate[T any](c *gin.Context, page service.Page, count int64, results []T) types.Paginated[T] {
	if results == nil {
		results = []T{}
	}
	out := types.Paginated[T]{Count: count, Results: results}
	if int64(page.Offset()+page.Limit()) < count {
		out.Next = pageURL(c, page.Number+1)
	}
	if page.Number > 1 {
		out.Previous = pageURL(c, page.Number-1)
	}
	return out
}

func pageURL(c *gin.Context, number int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := c.Request.URL.Query()
	if number <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}

	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	s := u.String()
	return &s
}
