package utils

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
)

// MaxHeaderValueLength HTTP头部值最大长度 (8KB)
const MaxHeaderValueLength = 8192

// SupportedEncodings 下载器能够解码的Content-Encoding
var SupportedEncodings = []string{"identity", "gzip", "x-gzip", "deflate", "br"}

// forbiddenHeaders 禁止配置的头部及原因 (键为小写)
var forbiddenHeaders = map[string]string{
	"host":              "由HTTP客户端根据URL设置",
	"content-length":    "由HTTP客户端管理",
	"transfer-encoding": "由HTTP客户端管理",
	"connection":        "由HTTP客户端管理",
	"range":             "只会下载PDF的一部分",
	"if-range":          "只会下载PDF的一部分",
}

var (
	headerNameRegex  = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	headerValueRegex = regexp.MustCompile(`^[\x20-\x7E\t]*$`)
)

// HeaderValidator 校验下载与static驱动使用的请求头部
type HeaderValidator struct {
	encodings map[string]bool
}

// NewHeaderValidator 创建验证器
func NewHeaderValidator() *HeaderValidator {
	encodings := make(map[string]bool, len(SupportedEncodings))
	for _, e := range SupportedEncodings {
		encodings[e] = true
	}
	return &HeaderValidator{encodings: encodings}
}

// ValidateName 名称只允许字母、数字和连字符
func (hv *HeaderValidator) ValidateName(name string) error {
	if name == "" {
		return &models.ValidationError{Field: "name", HeaderName: name, Reason: "头部名称不能为空"}
	}
	if !headerNameRegex.MatchString(name) {
		return &models.ValidationError{
			Field:      "name",
			HeaderName: name,
			Reason:     "头部名称包含非法字符 (仅允许字母、数字和连字符)",
			Suggestion: "如 'User-Agent', 'Referer'",
		}
	}
	return nil
}

// ValidateValue 值只允许可打印ASCII, 长度不超过 MaxHeaderValueLength
func (hv *HeaderValidator) ValidateValue(name, value string) error {
	if len(value) > MaxHeaderValueLength {
		return &models.ValidationError{
			Field:      "value",
			HeaderName: name,
			Reason:     fmt.Sprintf("头部值过长: %d 字节 (最大 %d)", len(value), MaxHeaderValueLength),
		}
	}
	if !headerValueRegex.MatchString(value) {
		return &models.ValidationError{
			Field:      "value",
			HeaderName: name,
			Reason:     "头部值包含非法字符 (仅允许可打印ASCII字符)",
			Suggestion: "日文等非ASCII内容需先进行百分号编码",
		}
	}
	return nil
}

// ValidateAcceptEncoding 只允许下载器能解码的编码, 否则压缩后的内容会原样写进PDF
// q=0 的项表示拒绝该编码, 不检查
func (hv *HeaderValidator) ValidateAcceptEncoding(value string) error {
	for _, item := range strings.Split(value, ",") {
		coding, params, _ := strings.Cut(item, ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding == "" || isZeroQuality(params) {
			continue
		}
		if !hv.encodings[coding] {
			return &models.ValidationError{
				Field:      "value",
				HeaderName: "Accept-Encoding",
				Reason:     fmt.Sprintf("不支持的编码: %s", coding),
				Suggestion: "可用: " + strings.Join(SupportedEncodings, ", "),
			}
		}
	}
	return nil
}

func isZeroQuality(params string) bool {
	for _, p := range strings.Split(params, ";") {
		key, val, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "q") {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return err == nil && q == 0
	}
	return false
}

// ValidateHeader 依次检查禁止头部、名称、值
func (hv *HeaderValidator) ValidateHeader(name, value string) error {
	if reason, ok := forbiddenHeaders[strings.ToLower(name)]; ok {
		return &models.ValidationError{
			Field:      "name",
			HeaderName: name,
			Reason:     "不允许自定义: " + reason,
			Suggestion: fmt.Sprintf("移除 '%s' 头部配置", name),
		}
	}
	if err := hv.ValidateName(name); err != nil {
		return err
	}
	if err := hv.ValidateValue(name, value); err != nil {
		return err
	}
	if strings.EqualFold(name, "Accept-Encoding") {
		return hv.ValidateAcceptEncoding(value)
	}
	return nil
}

// IsForbidden 检查头部是否被禁止
func (hv *HeaderValidator) IsForbidden(name string) bool {
	_, ok := forbiddenHeaders[strings.ToLower(name)]
	return ok
}

// Validate 按名称顺序校验, 返回第一个错误
func (hv *HeaderValidator) Validate(headers http.Header) error {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, value := range headers[name] {
			if err := hv.ValidateHeader(name, value); err != nil {
				return err
			}
		}
	}
	return nil
}
