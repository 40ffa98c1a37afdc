package main

import (
	"fmt"
	"os"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
)

// ValidateFlags 验证命令行标志, 未指定的值(零值)不检查
func ValidateFlags(driver string, tabs int, batchDelay int, inputFile string) error {
	if driver != "" {
		switch driver {
		case models.DriverRod, models.DriverChromedp, models.DriverStatic:
		default:
			return fmt.Errorf("无效的浏览器驱动: %s (有效值: rod, chromedp, static)", driver)
		}
	}

	if tabs < 0 || tabs > 64 {
		return fmt.Errorf("标签页上限必须在0-64之间,当前值: %d", tabs)
	}

	if batchDelay < 0 || batchDelay > 3600 {
		return fmt.Errorf("批量延迟必须在0-3600秒之间,当前值: %d", batchDelay)
	}

	if inputFile != "" {
		if err := ValidateInputFile(inputFile); err != nil {
			return err
		}
	}

	return nil
}

// ValidateInputFile 验证地址文件存在且不是目录
func ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("无法读取地址文件: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("地址文件路径是目录: %s", path)
	}
	return nil
}
