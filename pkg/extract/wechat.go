// Package extract pulls the readable content out of WeChat public-account
// articles and renders it as Markdown. Parsing is selector based and tuned
// to the mp.weixin.qq.com page layout; fetching is injectable so the parser
// can run against saved HTML.
package extract

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// Article is the extracted result.
type Article struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	PublishTime string `json:"publish_time"`
	Content     string `json:"content"` // full Markdown document
}

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var blankLines = regexp.MustCompile(`\n{3,}`)

// Extractor fetches and parses articles. Fetch may be replaced in tests.
type Extractor struct {
	Fetch func(url string) (io.ReadCloser, error)
}

func New() *Extractor {
	client := &http.Client{Timeout: 30 * time.Second}
	return &Extractor{
		Fetch: func(url string) (io.ReadCloser, error) {
			req, err := http.NewRequest(http.MethodGet, url, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("User-Agent", browserUA)
			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode != http.StatusOK {
				resp.Body.Close()
				return nil, fmt.Errorf("fetch article: unexpected status %d", resp.StatusCode)
			}
			return resp.Body, nil
		},
	}
}

// IsWeChatURL reports whether url points at a WeChat article.
func IsWeChatURL(url string) bool {
	return strings.HasPrefix(url, "https://mp.weixin.qq.com/") ||
		strings.HasPrefix(url, "http://mp.weixin.qq.com/")
}

// WeChatArticle fetches url and extracts its content.
func (e *Extractor) WeChatArticle(url string) (*Article, error) {
	if !IsWeChatURL(url) {
		return nil, fmt.Errorf("only mp.weixin.qq.com article links are supported")
	}
	body, err := e.Fetch(url)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return ParseWeChat(body, url)
}

// ParseWeChat extracts an article from raw page HTML.
func ParseWeChat(r io.Reader, sourceURL string) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := firstText(doc, "h2.rich_media_title", "h1.rich_media_title")
	if title == "" {
		title = "Untitled"
	}
	author := firstText(doc, "a#js_name", "span.profile_nickname")
	if author == "" {
		author = "Unknown"
	}
	publishTime := firstText(doc, "em#publish_time", "span.publish_time")

	content := doc.Find("div#js_content")
	if content.Length() == 0 {
		content = doc.Find("div.rich_media_content")
	}
	if content.Length() == 0 {
		return nil, fmt.Errorf("article content not found")
	}

	// WeChat lazy-loads images: the real source sits in data-src
	content.Find("img").Each(func(_ int, img *goquery.Selection) {
		if dataSrc, exists := img.Attr("data-src"); exists {
			img.SetAttr("src", dataSrc)
		}
		for _, attr := range img.Nodes[0].Attr {
			if strings.HasPrefix(attr.Key, "data-") {
				img.RemoveAttr(attr.Key)
			}
		}
	})

	html, err := goquery.OuterHtml(content)
	if err != nil {
		return nil, fmt.Errorf("render content: %w", err)
	}
	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return nil, fmt.Errorf("convert to markdown: %w", err)
	}
	markdown = strings.TrimSpace(blankLines.ReplaceAllString(markdown, "\n\n"))

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "> Author: %s\n", author)
	if publishTime != "" {
		fmt.Fprintf(&b, "> Published: %s\n", publishTime)
	}
	fmt.Fprintf(&b, "> Source: %s\n\n---\n\n", sourceURL)
	b.WriteString(markdown)

	return &Article{
		Title:       title,
		Author:      author,
		PublishTime: publishTime,
		Content:     b.String(),
	}, nil
}

func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if s := strings.TrimSpace(doc.Find(sel).First().Text()); s != "" {
			return s
		}
	}
	return ""
}
