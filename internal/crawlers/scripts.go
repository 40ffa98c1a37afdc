package crawlers

import (
	"encoding/json"
	"fmt"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
)

// 在浏览器中执行的提取脚本
// 结果统一以 JSON.stringify 后的字符串返回, rod 与 chromedp 共用同一套解码
const (
	// linksScript 返回 [{text, link}], text 为 a.text (textContent), link 为 a.href (已解析的绝对地址)
	linksScript = `() => JSON.stringify(
	Array.from(document.getElementsByTagName("a")).map((a) => ({ text: a.text, link: a.href }))
)`

	// placesScript 参数为表格class
	placesScript = `(tableClass) => {
	const table = document.getElementsByClassName(tableClass)[0];
	if (!table) {
		return JSON.stringify({ ok: false, target: "table." + tableClass, reason: "表格不存在" });
	}
	const trs = table.getElementsByTagName("tr");
	const rows = [];
	for (let i = 1; i < trs.length; i++) {
		const ths = trs[i].getElementsByTagName("th");
		if (ths.length === 0) {
			return JSON.stringify({ ok: false, target: "th", reason: "第" + i + "行没有th" });
		}
		const links = [];
		for (const td of trs[i].getElementsByTagName("td")) {
			const a = td.getElementsByTagName("a")[0];
			if (!a) {
				return JSON.stringify({ ok: false, target: "td a", reason: "第" + i + "行存在没有锚点的td" });
			}
			links.push({ text: a.text, link: a.href });
		}
		rows.push({ text: ths[ths.length - 1].innerText, links: links });
	}
	return JSON.stringify({ ok: true, rows: rows });
}`

	// viewerScript 参数为查看器元素id
	viewerScript = `(id) => {
	const el = document.getElementById(id);
	if (!el) {
		return JSON.stringify({ found: false, src: "" });
	}
	return JSON.stringify({ found: true, src: el.src || el.getAttribute("src") || "" });
}`
)

type placesResult struct {
	OK     bool              `json:"ok"`
	Target string            `json:"target"`
	Reason string            `json:"reason"`
	Rows   []models.PlaceRow `json:"rows"`
}

type viewerResult struct {
	Found bool   `json:"found"`
	Src   string `json:"src"`
}

// decodeLinks 解码 linksScript 的结果
func decodeLinks(pageURL, raw string) ([]models.Link, error) {
	var links []models.Link
	if err := json.Unmarshal([]byte(raw), &links); err != nil {
		return nil, fmt.Errorf("解析锚点列表失败: %w", err)
	}
	if len(links) == 0 {
		return nil, &models.ExtractionError{URL: pageURL, Target: "a", Reason: "页面没有锚点"}
	}
	return links, nil
}

// decodePlaceRows 解码 placesScript 的结果
func decodePlaceRows(pageURL, raw string) ([]models.PlaceRow, error) {
	var res placesResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, fmt.Errorf("解析地名一览失败: %w", err)
	}
	if !res.OK {
		return nil, &models.ExtractionError{URL: pageURL, Target: res.Target, Reason: res.Reason}
	}
	if res.Rows == nil {
		res.Rows = []models.PlaceRow{}
	}
	return res.Rows, nil
}

// decodeViewerSource 解码 viewerScript 的结果
func decodeViewerSource(pageURL, viewerID, raw string) (string, error) {
	var res viewerResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return "", fmt.Errorf("解析查看器地址失败: %w", err)
	}
	if !res.Found {
		return "", &models.ExtractionError{URL: pageURL, Target: "#" + viewerID, Reason: "查看器元素不存在"}
	}
	if res.Src == "" {
		return "", &models.ExtractionError{URL: pageURL, Target: "#" + viewerID, Reason: "src属性为空"}
	}
	return res.Src, nil
}
