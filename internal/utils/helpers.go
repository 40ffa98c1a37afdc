package utils

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadInputsFromFile 从文件中读取地址列表(每行一个)
// 空行和以#开头的注释行会被跳过, 地址本身不做trim以外的处理
func ReadInputsFromFile(filepath string) ([]string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("打开地址文件失败: %w", err)
	}
	defer file.Close()

	inputs := make([]string, 0)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		inputs = append(inputs, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取地址文件失败: %w", err)
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("地址文件中没有有效的地址")
	}

	Infof("从文件加载了 %d 个地址", len(inputs))
	return inputs, nil
}
