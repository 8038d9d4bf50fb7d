package util

import "strings"

// MakeAbsoluteURL 将站内相对路径补全为绝对地址，已经是绝对地址的原样返回
func MakeAbsoluteURL(baseURL, path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "http") {
		return path
	}
	return baseURL + path
}
