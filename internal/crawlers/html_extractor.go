package crawlers

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// 基于 golang.org/x/net/html 的DOM提取, 供 static 驱动使用
// 语义与浏览器端脚本保持一致: 锚点文字取 textContent, 行标签取最后一个th的可见文字

// ExtractLinks 按文档顺序返回所有锚点, 没有锚点时返回 *ExtractionError
func ExtractLinks(doc *html.Node, base *url.URL) ([]models.Link, error) {
	anchors := findAll(doc, atom.A)
	if len(anchors) == 0 {
		return nil, &models.ExtractionError{URL: base.String(), Target: "a", Reason: "页面没有锚点"}
	}

	links := make([]models.Link, 0, len(anchors))
	for _, a := range anchors {
		links = append(links, anchorLink(a, base))
	}
	return links, nil
}

// ExtractPlaceRows 提取class包含tableClass的第一个元素中的数据行(跳过第一行)
func ExtractPlaceRows(doc *html.Node, base *url.URL, tableClass string) ([]models.PlaceRow, error) {
	pageURL := base.String()

	table := findFirst(doc, func(n *html.Node) bool { return hasClass(n, tableClass) })
	if table == nil {
		return nil, &models.ExtractionError{URL: pageURL, Target: "table." + tableClass, Reason: "表格不存在"}
	}

	trs := findAll(table, atom.Tr)
	rows := make([]models.PlaceRow, 0, len(trs))
	for i := 1; i < len(trs); i++ {
		ths := findAll(trs[i], atom.Th)
		if len(ths) == 0 {
			return nil, &models.ExtractionError{URL: pageURL, Target: "th", Reason: fmt.Sprintf("第%d行没有th", i)}
		}

		tds := findAll(trs[i], atom.Td)
		links := make([]models.Link, 0, len(tds))
		for _, td := range tds {
			a := findFirst(td, isElement(atom.A))
			if a == nil {
				return nil, &models.ExtractionError{URL: pageURL, Target: "td a", Reason: fmt.Sprintf("第%d行存在没有锚点的td", i)}
			}
			links = append(links, anchorLink(a, base))
		}

		rows = append(rows, models.PlaceRow{
			Text:  innerText(ths[len(ths)-1]),
			Links: links,
		})
	}
	return rows, nil
}

// ExtractViewerSource 读取id为viewerID的元素的src, 返回绝对地址
func ExtractViewerSource(doc *html.Node, base *url.URL, viewerID string) (string, error) {
	pageURL := base.String()

	el := findFirst(doc, func(n *html.Node) bool {
		id, ok := attr(n, "id")
		return n.Type == html.ElementNode && ok && id == viewerID
	})
	if el == nil {
		return "", &models.ExtractionError{URL: pageURL, Target: "#" + viewerID, Reason: "查看器元素不存在"}
	}

	src, _ := attr(el, "src")
	if src == "" {
		return "", &models.ExtractionError{URL: pageURL, Target: "#" + viewerID, Reason: "src属性为空"}
	}
	return resolveURL(base, src), nil
}

func anchorLink(a *html.Node, base *url.URL) models.Link {
	link := ""
	if href, ok := attr(a, "href"); ok {
		link = resolveURL(base, href)
	}
	return models.Link{Text: textContent(a), Link: link}
}

func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

func isElement(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	}
}

// findFirst 深度优先查找第一个满足条件的后代(不含自身)
func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// findAll 按文档顺序返回所有指定标签的后代
func findAll(root *html.Node, a atom.Atom) []*html.Node {
	var result []*html.Node
	match := isElement(a)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if match(c) {
				result = append(result, c)
			}
			walk(c)
		}
	}
	walk(root)
	return result
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	value, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(value) {
		if c == class {
			return true
		}
	}
	return false
}

// textContent 拼接所有后代文本节点, 不做trim
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// innerText 近似浏览器的innerText: 合并连续空白并去掉首尾空白
func innerText(n *html.Node) string {
	return strings.Join(strings.Fields(textContent(n)), " ")
}
