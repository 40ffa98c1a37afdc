package main

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
	"github.com/go-rod/rod/lib/launcher"
)

func main() {
	fmt.Println("==============================================")
	fmt.Println("  RosenkaFetch 环境验证")
	fmt.Println("==============================================")
	fmt.Println()

	allOK := true

	goVersion := runtime.Version()
	fmt.Printf("✅ Go版本: %s\n", goVersion)
	if !strings.HasPrefix(goVersion, "go1.23") && !strings.HasPrefix(goVersion, "go1.24") {
		fmt.Println("⚠️  警告: 建议使用Go 1.23+版本")
	}

	fmt.Printf("✅ 操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	// rod 与 chromedp 都需要本地Chrome/Chromium
	if bin, found := launcher.LookPath(); found {
		fmt.Printf("✅ 浏览器: %s\n", bin)
	} else {
		fmt.Println("⚠️  未找到Chrome/Chromium - rod驱动会在首次运行时自动下载, chromedp驱动不可用")
		fmt.Println("   也可以使用 --driver static (不需要浏览器)")
	}

	fmt.Println()
	fmt.Println("检查站点连通性...")
	client := &http.Client{Timeout: 10 * time.Second}
	if resp, err := client.Get(models.DefaultTopURL); err != nil {
		fmt.Printf("❌ 无法访问 %s: %v\n", models.DefaultTopURL, err)
		allOK = false
	} else {
		resp.Body.Close()
		fmt.Printf("✅ %s (HTTP %d)\n", models.DefaultTopURL, resp.StatusCode)
	}

	fmt.Println()
	fmt.Println("检查项目结构...")
	requiredDirs := []string{
		"cmd/rosenka",
		"internal/core",
		"internal/crawlers",
		"internal/utils",
		"internal/models",
		"configs",
	}

	for _, dir := range requiredDirs {
		if _, err := os.Stat(dir); err == nil {
			fmt.Printf("✅ %s/\n", dir)
		} else {
			fmt.Printf("❌ %s/ 不存在\n", dir)
			allOK = false
		}
	}

	fmt.Println()
	fmt.Println("==============================================")
	if allOK {
		fmt.Println("✅ 环境验证通过!")
		fmt.Println()
		fmt.Println("下一步:")
		fmt.Println("  1. go build -o rosenka ./cmd/rosenka")
		fmt.Println("  2. ./rosenka -i \"東京都千代田区千代田１−１\"")
		os.Exit(0)
	} else {
		fmt.Println("❌ 环境验证失败,请解决上述问题。")
		os.Exit(1)
	}
}
