package core

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
	"github.com/RecoveryAshes/RosenkaFetch/internal/utils"
	"github.com/andybalholm/brotli"
)

// Transfer 一次下载的结果
type Transfer struct {
	StatusCode int
	Size       int64
	Path       string // 已创建的文件, 未创建时为空
}

// Downloader 以流式GET把响应体写入文件
// 默认不校验状态码, 非2xx的响应体同样写入; 不重试
type Downloader struct {
	client           *http.Client
	headers          models.HeaderProvider
	timeout          time.Duration
	failOnHTTPStatus bool
}

// NewDownloader 创建下载器, headers可以为nil
func NewDownloader(cfg models.FetchConfig, headers models.HeaderProvider) *Downloader {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Downloader{
		client:           &http.Client{Transport: transport},
		headers:          headers,
		timeout:          time.Duration(cfg.DownloadTimeout) * time.Second,
		failOnHTTPStatus: cfg.FailOnHTTPStatus,
	}
}

// Download 下载sourceURL到destination
// 网络层失败返回 *models.DownloadError, 本地文件错误返回普通错误; 中途失败时已写入的部分保留在磁盘上
func (d *Downloader) Download(ctx context.Context, sourceURL, destination string) (Transfer, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return Transfer{}, &models.DownloadError{URL: sourceURL, Cause: err}
	}
	if d.headers != nil {
		headers, err := d.headers.GetHeaders()
		if err != nil {
			return Transfer{}, fmt.Errorf("获取HTTP头部失败: %w", err)
		}
		for name, values := range headers {
			req.Header[name] = values
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return Transfer{}, &models.DownloadError{URL: sourceURL, Cause: err}
	}
	defer resp.Body.Close()

	transfer := Transfer{StatusCode: resp.StatusCode}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if d.failOnHTTPStatus {
			return transfer, &models.DownloadError{URL: sourceURL, StatusCode: resp.StatusCode}
		}
		utils.Warnf("HTTP %d, 响应体照常写入: %s", resp.StatusCode, sourceURL)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return transfer, &models.DownloadError{URL: sourceURL, Cause: err}
	}
	defer body.Close()

	if dir := filepath.Dir(destination); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return transfer, fmt.Errorf("创建输出目录失败: %w", err)
		}
	}

	file, err := os.Create(destination)
	if err != nil {
		return transfer, fmt.Errorf("创建文件失败: %w", err)
	}
	transfer.Path = destination

	src := &readTracker{r: body}
	n, copyErr := io.Copy(file, src)
	transfer.Size = n
	closeErr := file.Close()

	if src.err != nil {
		return transfer, &models.DownloadError{URL: sourceURL, Cause: src.err}
	}
	if copyErr != nil {
		return transfer, fmt.Errorf("写入文件失败: %w", copyErr)
	}
	if closeErr != nil {
		return transfer, fmt.Errorf("写入文件失败: %w", closeErr)
	}

	utils.Debugf("已下载 %s → %s (%d 字节)", sourceURL, destination, n)
	return transfer, nil
}

// readTracker 记录读取响应体时的错误, 用于区分网络错误与写文件错误
type readTracker struct {
	r   io.Reader
	err error
}

func (t *readTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}

// decodeBody 按Content-Encoding解码响应体
// 手动设置Accept-Encoding后net/http不再自动解压, 这里处理 utils.SupportedEncodings
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))

	switch encoding {
	case "", "identity":
		return io.NopCloser(resp.Body), nil
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	case "gzip", "x-gzip":
		return gzip.NewReader(resp.Body)
	case "deflate":
		return zlib.NewReader(resp.Body)
	default:
		utils.Warnf("未知的Content-Encoding: %s, 按原样写入", encoding)
		return io.NopCloser(resp.Body), nil
	}
}
